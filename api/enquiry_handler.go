package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cockroach-creatives/studio-backend/database"
	"github.com/cockroach-creatives/studio-backend/errs"
	"github.com/cockroach-creatives/studio-backend/models"
	"github.com/cockroach-creatives/studio-backend/services"
)

type enquiryHandler struct {
	responder   Responder
	logger      zerolog.Logger
	enquiryRepo *database.EnquiryRepo
	notifier    *services.EnquiryNotifier
}

func newEnquiryHandler(enquiryRepo *database.EnquiryRepo, notifier *services.EnquiryNotifier) enquiryHandler {
	logger := log.With().Str("handlerName", "enquiryHandler").Logger()

	return enquiryHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		enquiryRepo: enquiryRepo,
		notifier:    notifier,
	}
}

// EnquiryCollection represents a page of enquiries
type EnquiryCollection struct {
	Items []*models.Enquiry `json:"items"`
	Total int64             `json:"total"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// submitEnquiry stores a contact form submission and notifies the team
// @Summary Submit contact enquiry
// @Router /api/contact [post]
func (h enquiryHandler) submitEnquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("malformed request body"))
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Message = strings.TrimSpace(req.Message)

		if req.Name == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			h.responder.WriteError(w, errs.NewInvalidFieldError("email", "a valid email address is required"))
			return
		}
		if req.Message == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("message"))
			return
		}

		enquiry := models.Enquiry{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   strings.TrimSpace(req.Phone),
			Message: req.Message,
		}

		if err := h.enquiryRepo.Add(&enquiry); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "enquiry", err))
			return
		}

		// Notifications run off the request path; the visitor gets an ack as
		// soon as the enquiry is stored.
		go h.notifier.NotifyNewEnquiry(&enquiry)

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, map[string]any{
			"ok": true,
			"id": enquiry.ID,
		})
	}
}

// listEnquiries pages through stored enquiries, newest first
// @Summary List enquiries
// @Router /api/enquiries [get]
func (h enquiryHandler) listEnquiries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		page, _ := strconv.Atoi(query.Get("page"))
		limit, _ := strconv.Atoi(query.Get("limit"))

		enquiries, total, err := h.enquiryRepo.FindPage(page, limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "enquiries", err))
			return
		}

		h.responder.WriteJSON(w, EnquiryCollection{
			Items: enquiries,
			Total: total,
		})
	}
}

// deleteEnquiry removes a stored enquiry
// @Summary Delete enquiry
// @Router /api/enquiries/{enquiryID} [delete]
func (h enquiryHandler) deleteEnquiry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enquiryIDStr := chi.URLParam(r, "enquiryID")
		enquiryID, err := uuid.Parse(enquiryIDStr)
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid enquiryID"))
			return
		}

		deleted, err := h.enquiryRepo.Delete(enquiryID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "enquiry", err))
			return
		}
		if deleted == 0 {
			h.responder.WriteError(w, errs.NewNotFoundError("enquiry not found"))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "enquiry deleted successfully",
		})
	}
}
