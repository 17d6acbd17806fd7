package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/cockroach-creatives/studio-backend/config"
	"github.com/cockroach-creatives/studio-backend/errs"
)

const defaultCookieName = "admin_token"

// AdminClaims is the JWT payload carried by the admin session cookie.
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// adminTokens signs and verifies the admin session cookie.
type adminTokens struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

func newAdminTokens(cfg map[string]string) (*adminTokens, error) {
	secret := config.GetString(cfg, "ADMIN_JWT_SECRET", "")
	if secret == "" {
		return nil, errs.NewConfigError("ADMIN_JWT_SECRET", nil)
	}

	maxAge := config.GetInt(cfg, "ADMIN_COOKIE_MAX_AGE", 86400)
	// ADMIN_COOKIE_SECURE overrides the environment-based default, e.g. for
	// staging deployments served over HTTPS with GO_ENV unset.
	secure := config.GetBool(cfg, "ADMIN_COOKIE_SECURE",
		config.GetString(cfg, "GO_ENV", "development") == "production")

	return &adminTokens{
		secret:     []byte(secret),
		cookieName: config.GetString(cfg, "ADMIN_COOKIE_NAME", defaultCookieName),
		ttl:        time.Duration(maxAge) * time.Second,
		secure:     secure,
	}, nil
}

func (t *adminTokens) sign(email string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *adminTokens) verify(token string) (string, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Email == "" {
		return "", fmt.Errorf("invalid admin token")
	}
	return claims.Email, nil
}

func (t *adminTokens) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     t.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	tokens    *adminTokens

	adminEmail    string
	passwordHash  string
	passwordPlain string
}

func newAuthHandler(tokens *adminTokens, cfg map[string]string) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		tokens:        tokens,
		adminEmail:    config.GetString(cfg, "ADMIN_EMAIL", ""),
		passwordHash:  config.GetString(cfg, "ADMIN_PASSWORD_HASH", ""),
		passwordPlain: config.GetString(cfg, "ADMIN_PASSWORD", ""),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// credentialsMatch compares the submitted credentials against the configured
// admin account. A bcrypt hash takes precedence over a plain password.
func (h authHandler) credentialsMatch(email, password string) bool {
	if h.adminEmail == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(h.adminEmail)) == 1

	var passwordOK bool
	switch {
	case h.passwordHash != "":
		passwordOK = bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(password)) == nil
	case h.passwordPlain != "":
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(h.passwordPlain)) == 1
	}

	return emailOK && passwordOK
}

// login verifies the admin credentials and sets the session cookie
// @Summary Admin login
// @Router /api/admin/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.Email == "" || req.Password == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("email and password are required"))
			return
		}

		if !h.credentialsMatch(req.Email, req.Password) {
			h.logger.Warn().Str("email", req.Email).Msg("Rejected admin login")
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid credentials"))
			return
		}

		token, err := h.tokens.sign(req.Email)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalError("failed to issue session token"))
			return
		}

		http.SetCookie(w, h.tokens.sessionCookie(token, int(h.tokens.ttl.Seconds())))
		h.responder.WriteJSON(w, map[string]any{
			"ok":    true,
			"email": req.Email,
		})
	}
}

// logout clears the admin session cookie
// @Summary Admin logout
// @Router /api/admin/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, h.tokens.sessionCookie("", -1))
		h.responder.WriteJSON(w, map[string]any{"ok": true})
	}
}

// me reports whether the caller holds a valid admin session. It never errors:
// the frontend polls it to decide whether to show the admin panel.
// @Summary Current admin session
// @Router /api/admin/me [get]
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.tokens.cookieName)
		if err != nil || cookie.Value == "" {
			h.responder.WriteJSON(w, map[string]any{"authenticated": false})
			return
		}

		email, err := h.tokens.verify(cookie.Value)
		if err != nil {
			h.responder.WriteJSON(w, map[string]any{"authenticated": false})
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"authenticated": true,
			"email":         email,
		})
	}
}
