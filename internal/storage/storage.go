package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/feedback-hub/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations needed by the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// FeedbackStore persists feedback. List methods return newest first.
// UpdateFeedback and DeleteFeedback return ErrNotFound when no row matches.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, fb models.Feedback) (models.Feedback, error)
	FindFeedback(ctx context.Context, id string) (models.Feedback, error)
	ListFeedback(ctx context.Context) ([]models.Feedback, error)
	ListFeedbackByUser(ctx context.Context, userID int64) ([]models.Feedback, error)
	UpdateFeedback(ctx context.Context, id string, patch models.FeedbackPatch) (models.Feedback, error)
	DeleteFeedback(ctx context.Context, id string) error
}

// Store is the full persistence surface wired in main.
type Store interface {
	UserStore
	FeedbackStore
	Ping(ctx context.Context) error
	Close()
}
