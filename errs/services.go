package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-party service errors. Remote media failures are captured per item in
// batch operations and are never escalated past the batch boundary; these
// sentinels exist for the few paths that surface them directly.
var (
	ErrRemoteService         = errors.New("remote service failed")
	ErrUnresolvableReference = errors.New("could not derive public_id")
	ErrConfigMissing         = errors.New("configuration missing")
)

func NewRemoteServiceError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrRemoteService,
		Details:    fmt.Sprintf("%s request failed", service),
		Cause:      cause,
	}
}

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Configuration error for %s", configName),
		Cause:      cause,
	}
}

func IsRemoteServiceError(err error) bool {
	return errors.Is(err, ErrRemoteService)
}
