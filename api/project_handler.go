package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/cockroach-creatives/studio-backend/database"
	"github.com/cockroach-creatives/studio-backend/errs"
	"github.com/cockroach-creatives/studio-backend/models"
	"github.com/cockroach-creatives/studio-backend/services"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	imageSync   *services.ImageSync
}

func newProjectHandler(projectRepo *database.ProjectRepo, imageSync *services.ImageSync) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		imageSync:   imageSync,
	}
}

// ProjectCollection represents a page of projects
type ProjectCollection struct {
	Projects []*models.Project `json:"projects"`
	Total    int64             `json:"total"`
	Page     int               `json:"page,omitempty"`
	Limit    int               `json:"limit,omitempty"`
}

func parseProjectID(r *http.Request) (uuid.UUID, error) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		return uuid.Nil, errs.NewBadRequestError("missing projectID")
	}
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid projectID")
	}
	return projectID, nil
}

// getAllProjects retrieves every project for the admin panel
// @Summary Get all projects
// @Router /api/projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    int64(len(projects)),
		})
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Router /api/projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project
// @Summary Create project
// @Router /api/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var project models.Project
		if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode project request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if project.Title == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("title"))
			return
		}
		if project.Category == "" {
			project.Category = models.CategoryOther
		}
		if !models.IsValidCategory(project.Category) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("category", "unknown category"))
			return
		}
		project.CoverImage = project.EffectiveCover()
		project.EnsureArrays()
		project.ID = uuid.Nil

		if err := h.projectRepo.Add(&project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, project)
	}
}

// updateProjectRequest carries the fields of a project update. Pointer fields
// distinguish "omitted" from "set to the zero value"; omitted fields keep the
// stored value.
type updateProjectRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Link          *string   `json:"link"`
	Category      *string   `json:"category"`
	SubCategory   *string   `json:"subCategory"`
	Tags          *[]string `json:"tags"`
	Images        *[]string `json:"images"`
	CoverImage    *string   `json:"coverImage"`
	CloudinaryIDs *[]string `json:"cloudinaryIds"`
	Featured      *bool     `json:"featured"`
	Order         *int      `json:"order"`
}

// applyProjectUpdate merges the supplied fields onto project and re-validates
// the merged record.
func applyProjectUpdate(project *models.Project, req updateProjectRequest) error {
	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Link != nil {
		project.Link = *req.Link
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.SubCategory != nil {
		project.SubCategory = *req.SubCategory
	}
	if req.Tags != nil {
		project.Tags = datatypes.NewJSONSlice(*req.Tags)
	}
	if req.Images != nil {
		project.Images = datatypes.NewJSONSlice(*req.Images)
	}
	if req.CoverImage != nil {
		project.CoverImage = *req.CoverImage
	}
	if req.CloudinaryIDs != nil {
		project.CloudinaryIDs = datatypes.NewJSONSlice(*req.CloudinaryIDs)
	}
	if req.Featured != nil {
		project.Featured = *req.Featured
	}
	if req.Order != nil {
		project.Order = *req.Order
	}

	if project.Title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	if project.Category == "" {
		project.Category = models.CategoryOther
	}
	if !models.IsValidCategory(project.Category) {
		return errs.NewInvalidFieldError("category", "unknown category")
	}
	project.CoverImage = project.EffectiveCover()
	project.EnsureArrays()
	return nil
}

// updateProject updates an existing project. Only the fields present in the
// request body change; everything else keeps its stored value.
// @Summary Update project
// @Router /api/projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if existing == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

		var req updateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode project request body")
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		if err := applyProjectUpdate(existing, req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Update(existing); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}

		h.responder.WriteJSON(w, existing)
	}
}

// deleteProject removes a project record. Media objects referenced by the
// project stay in Cloudinary; detaching with remote delete is a separate,
// explicit operation.
// @Summary Delete project
// @Router /api/projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

		if err := h.projectRepo.Delete(projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "project deleted successfully",
		})
	}
}

type attachImagesRequest struct {
	Images    []string `json:"images"`
	PublicIDs []string `json:"public_ids"`
}

// attachImages merges uploaded image URLs (and their public IDs) into a project
// @Summary Attach images
// @Router /api/projects/{projectID}/images [post]
func (h projectHandler) attachImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req attachImagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		project, err := h.imageSync.AttachImages(projectID, req.Images, req.PublicIDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

type detachImagesRequest struct {
	Images               []string `json:"images"`
	DeleteFromCloudinary *bool    `json:"deleteFromCloudinary"`
}

// detachImages removes image URLs from a project and, unless told otherwise,
// deletes the media objects behind them
// @Summary Detach images
// @Router /api/projects/{projectID}/detachImages [post]
func (h projectHandler) detachImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req detachImagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		deleteRemote := true
		if req.DeleteFromCloudinary != nil {
			deleteRemote = *req.DeleteFromCloudinary
		}

		result, err := h.imageSync.DetachImages(r.Context(), projectID, req.Images, deleteRemote)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, result)
	}
}

// getPublicProjects lists projects for the public site with filtering and
// pagination
// @Summary List public projects
// @Router /api/public/projects [get]
func (h projectHandler) getPublicProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter := database.PublicFilter{
			Query:       query.Get("q"),
			Category:    query.Get("category"),
			SubCategory: query.Get("subCategory"),
		}
		if page, err := strconv.Atoi(query.Get("page")); err == nil {
			filter.Page = page
		}
		if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
			filter.Limit = limit
		}
		filter.Normalize()

		projects, total, err := h.projectRepo.FindPublic(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    total,
			Page:     filter.Page,
			Limit:    filter.Limit,
		})
	}
}

// getPublicProject retrieves a single project for the public site
// @Summary Get public project
// @Router /api/public/projects/{projectID} [get]
func (h projectHandler) getPublicProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := parseProjectID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}
