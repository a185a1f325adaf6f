package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/feedback-hub/internal/apperr"
	"github.com/hongminglow/feedback-hub/internal/auth"
	"github.com/hongminglow/feedback-hub/internal/feedback"
	"github.com/hongminglow/feedback-hub/internal/http/respond"
	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/models/dto"
)

// FeedbackService is the subset of feedback.Service used by the handler.
type FeedbackService interface {
	Create(ctx context.Context, in feedback.CreateInput) (models.Feedback, error)
	List(ctx context.Context) ([]models.Feedback, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Feedback, error)
	Update(ctx context.Context, id string, requesterID int64, patch models.FeedbackPatch) (models.Feedback, error)
	Delete(ctx context.Context, id string, requesterID int64) error
}

// FeedbackHandler serves the /feedback resource.
type FeedbackHandler struct {
	service      FeedbackService
	authenticate func(http.Handler) http.Handler
	logger       *slog.Logger
	validator    *validator.Validate
}

// NewFeedbackHandler constructs the handler. authenticate guards every route
// except the public listing.
func NewFeedbackHandler(service FeedbackService, authenticate func(http.Handler) http.Handler, logger *slog.Logger) *FeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackHandler{service: service, authenticate: authenticate, logger: logger, validator: newValidator()}
}

// MountRoutes attaches feedback routes under the caller's prefix.
func (h *FeedbackHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/", h.handleCreate)
		r.Get("/my", h.handleListMine)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *FeedbackHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req dto.CreateFeedbackRequest
	if err := decodeAndValidate(w, r, h.validator, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	created, err := h.service.Create(r.Context(), feedback.CreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Rating:  req.Rating,
		UserID:  identity.UserID,
	})
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *FeedbackHandler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

func (h *FeedbackHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	items, err := h.service.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

func (h *FeedbackHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req dto.UpdateFeedbackRequest
	if err := decodeAndValidate(w, r, h.validator, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), identity.UserID, req.Patch())
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (h *FeedbackHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), identity.UserID); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Feedback deleted successfully"})
}

func (h *FeedbackHandler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, apperr.Authentication("authentication required"))
		return auth.Identity{}, false
	}
	return identity, true
}
