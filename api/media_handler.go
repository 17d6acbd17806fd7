package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cockroach-creatives/studio-backend/errs"
	"github.com/cockroach-creatives/studio-backend/media"
	"github.com/cockroach-creatives/studio-backend/services"
)

// Uploads are images only; a whole batch stays well under this.
const maxUploadBytes = 32 << 20

type mediaHandler struct {
	responder     Responder
	logger        zerolog.Logger
	media         *media.Client
	imageSync     *services.ImageSync
	defaultFolder string
}

func newMediaHandler(client *media.Client, imageSync *services.ImageSync, defaultFolder string) mediaHandler {
	logger := log.With().Str("handlerName", "mediaHandler").Logger()

	return mediaHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		media:         client,
		imageSync:     imageSync,
		defaultFolder: defaultFolder,
	}
}

// uploadImages uploads one or more image files to Cloudinary. The multipart
// field is "files"; an optional "folder" field overrides the default folder.
// The batch fails as a whole on the first upload error.
// @Summary Upload images
// @Router /api/images/upload [post]
func (h mediaHandler) uploadImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed multipart form"))
			return
		}

		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("files"))
			return
		}

		folder := r.FormValue("folder")
		if folder == "" {
			folder = h.defaultFolder
		}

		results := make([]*media.UploadResult, 0, len(files))
		for _, header := range files {
			file, err := header.Open()
			if err != nil {
				h.responder.WriteError(w, errs.NewBadRequestError("could not read uploaded file"))
				return
			}

			result, err := h.media.Upload(r.Context(), file, header.Filename, folder)
			file.Close()
			if err != nil {
				h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Upload failed")
				h.responder.WriteError(w, errs.NewRemoteServiceError("cloudinary", err))
				return
			}
			results = append(results, result)
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, map[string]any{
			"uploaded": results,
			"folder":   folder,
		})
	}
}

// listImages pages through hosted images under a folder prefix
// @Summary List hosted images
// @Router /api/images [get]
func (h mediaHandler) listImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		folder := query.Get("folder")
		if folder == "" {
			folder = h.defaultFolder
		}

		maxResults := 0
		if raw := query.Get("max_results"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("max_results", "must be an integer"))
				return
			}
			maxResults = parsed
		}

		page, err := h.media.List(r.Context(), folder, query.Get("next_cursor"), maxResults)
		if err != nil {
			h.responder.WriteError(w, errs.NewRemoteServiceError("cloudinary", err))
			return
		}

		h.responder.WriteJSON(w, page)
	}
}

type deleteImageRequest struct {
	PublicID string `json:"public_id"`
}

// deleteImage deletes a hosted image by public ID or delivery URL, then sweeps
// dangling references to it out of every project.
// @Summary Delete hosted image
// @Router /api/images [delete]
func (h mediaHandler) deleteImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}
		if req.PublicID == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("public_id"))
			return
		}

		publicID := services.NormalizePublicID(req.PublicID)
		if publicID == "" {
			h.responder.WriteError(w, errs.NewInvalidFieldError("public_id", errs.ErrUnresolvableReference.Error()))
			return
		}

		outcome, err := h.media.Destroy(r.Context(), publicID)
		if err != nil {
			h.responder.WriteError(w, errs.NewRemoteServiceError("cloudinary", err))
			return
		}
		if !services.DestroySucceeded(outcome) {
			h.responder.WriteError(w, errs.NewBadRequestError("delete failed: "+outcome))
			return
		}

		h.imageSync.SweepReferences(publicID)

		h.responder.WriteJSON(w, map[string]any{
			"ok":     true,
			"result": outcome,
		})
	}
}
