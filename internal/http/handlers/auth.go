package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/feedback-hub/internal/http/respond"
	"github.com/hongminglow/feedback-hub/internal/models/dto"
)

// AuthService is the subset of auth.Service used by the handler.
type AuthService interface {
	Register(ctx context.Context, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler owns the register/login endpoints.
type AuthHandler struct {
	service   AuthService
	logger    *slog.Logger
	validator *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{service: service, logger: logger, validator: newValidator()}
}

// MountRoutes attaches auth routes under the caller's prefix.
func (h *AuthHandler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeAndValidate(w, r, h.validator, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	userID, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.RegisterResponse{Message: "User created successfully", UserID: userID})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeAndValidate(w, r, h.validator, &req); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: token})
}
