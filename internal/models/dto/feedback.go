package dto

import (
	"strings"

	"github.com/hongminglow/feedback-hub/internal/models"
)

// CreateFeedbackRequest is the body of POST /feedback.
type CreateFeedbackRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=5"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// Normalize trims the text fields so length rules apply to visible content.
func (r *CreateFeedbackRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Message = strings.TrimSpace(r.Message)
}

// UpdateFeedbackRequest is the partial body of PUT /feedback/{id}.
type UpdateFeedbackRequest struct {
	Name    *string `json:"name" validate:"omitnil,min=2"`
	Email   *string `json:"email" validate:"omitnil,email"`
	Message *string `json:"message" validate:"omitnil,min=5"`
	Rating  *int    `json:"rating" validate:"omitnil,min=1,max=5"`
}

func (r *UpdateFeedbackRequest) Normalize() {
	trimmed := r.Patch().Trimmed()
	r.Name, r.Email, r.Message = trimmed.Name, trimmed.Email, trimmed.Message
}

// Patch converts the request into a model patch.
func (r UpdateFeedbackRequest) Patch() models.FeedbackPatch {
	return models.FeedbackPatch{
		Name:    r.Name,
		Email:   r.Email,
		Message: r.Message,
		Rating:  r.Rating,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}
