package api

import (
	"github.com/cockroach-creatives/studio-backend/config"
	"github.com/cockroach-creatives/studio-backend/database"
	"github.com/cockroach-creatives/studio-backend/media"
	"github.com/cockroach-creatives/studio-backend/services"
)

// initializeHandlers wires the repositories, media client and services into
// the route handlers. It fails fast on missing Cloudinary or admin JWT
// configuration; notification channels are optional.
func initializeHandlers(db database.Database, cfg map[string]string) (*routeHandlers, *adminTokens, error) {
	mediaClient, err := media.NewClientFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := newAdminTokens(cfg)
	if err != nil {
		return nil, nil, err
	}

	imageSync := services.NewImageSync(db.ProjectRepo(), mediaClient)

	mailer, err := services.NewMailerFromConfig(cfg)
	if err != nil {
		// Email notifications are optional; enquiries still get stored.
		mailer = nil
	}
	texter, err := services.NewTexterFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	notifier := services.NewEnquiryNotifier(mailer, texter, cfg)

	defaultFolder := config.GetString(cfg, "CLOUDINARY_FOLDER", "cockroach-images")

	return &routeHandlers{
		projectHandler: newProjectHandler(db.ProjectRepo(), imageSync),
		mediaHandler:   newMediaHandler(mediaClient, imageSync, defaultFolder),
		enquiryHandler: newEnquiryHandler(db.EnquiryRepo(), notifier),
		authHandler:    newAuthHandler(tokens, cfg),
	}, tokens, nil
}
