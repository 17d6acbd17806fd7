package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public site endpoints and the cookie-authenticated
// admin endpoints under /api.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/api", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		// Public endpoints
		r.Post("/contact", handlers.enquiryHandler.submitEnquiry())
		r.Get("/public/projects", handlers.projectHandler.getPublicProjects())
		r.Get("/public/projects/{projectID}", handlers.projectHandler.getPublicProject())

		// Admin session endpoints
		r.Post("/admin/login", handlers.authHandler.login())
		r.Post("/admin/logout", handlers.authHandler.logout())
		r.Get("/admin/me", handlers.authHandler.me())

		// Authenticated admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			// Project endpoints
			r.Get("/projects", handlers.projectHandler.getAllProjects())
			r.Post("/projects", handlers.projectHandler.createProject())
			r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
			r.Post("/projects/{projectID}/images", handlers.projectHandler.attachImages())
			r.Post("/projects/{projectID}/detachImages", handlers.projectHandler.detachImages())

			// Hosted image endpoints
			r.Post("/images/upload", handlers.mediaHandler.uploadImages())
			r.Get("/images", handlers.mediaHandler.listImages())
			r.Delete("/images", handlers.mediaHandler.deleteImage())

			// Enquiry endpoints
			r.Get("/enquiries", handlers.enquiryHandler.listEnquiries())
			r.Delete("/enquiries/{enquiryID}", handlers.enquiryHandler.deleteEnquiry())
		})
	})
}
