// Package feedback holds the business rules for creating, listing and
// mutating feedback, including the ownership check on update and delete.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hongminglow/feedback-hub/internal/apperr"
	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/notify"
	"github.com/hongminglow/feedback-hub/internal/storage"
)

// Authorizer decides whether requesterID may mutate fb.
type Authorizer func(requesterID int64, fb models.Feedback) bool

// OwnerOnly allows mutation only by the user who created the feedback.
func OwnerOnly(requesterID int64, fb models.Feedback) bool {
	return fb.UserID == requesterID
}

// NotificationObserver is told the outcome of every notification attempt.
type NotificationObserver interface {
	ObserveNotification(err error)
}

// DefaultNotificationTimeout bounds a single notification attempt.
const DefaultNotificationTimeout = time.Minute

// Option customises a Service.
type Option func(*Service)

// WithAuthorizer replaces the default OwnerOnly predicate.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Service) {
		if a != nil {
			s.authorize = a
		}
	}
}

// WithNotificationObserver records notifier outcomes, typically into metrics.
func WithNotificationObserver(o NotificationObserver) Option {
	return func(s *Service) { s.observer = o }
}

// WithNotificationTimeout overrides DefaultNotificationTimeout.
func WithNotificationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// Service implements feedback use cases on top of a FeedbackStore.
type Service struct {
	store     storage.FeedbackStore
	notifier  notify.Notifier
	logger    *slog.Logger
	authorize Authorizer
	observer  NotificationObserver

	notifyTimeout time.Duration
	inflight      sync.WaitGroup
}

// NewService wires the store and notifier. A nil notifier disables notifications.
func NewService(store storage.FeedbackStore, notifier notify.Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:     store,
		notifier:  notifier,
		logger:    logger,
		authorize: OwnerOnly,

		notifyTimeout: DefaultNotificationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is the validated payload of a new feedback.
type CreateInput struct {
	Name    string
	Email   string
	Message string
	Rating  int
	UserID  int64
}

// Create persists a feedback and dispatches the thank-you notification
// without waiting for it.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Feedback, error) {
	fields := models.FeedbackPatch{Name: &in.Name, Email: &in.Email, Message: &in.Message, Rating: &in.Rating}.Trimmed()
	if err := checkFields(fields); err != nil {
		return models.Feedback{}, err
	}
	if in.UserID <= 0 {
		return models.Feedback{}, apperr.Authentication("authentication required")
	}

	created, err := s.store.CreateFeedback(ctx, models.Feedback{
		Name:    *fields.Name,
		Email:   *fields.Email,
		Message: *fields.Message,
		Rating:  in.Rating,
		UserID:  in.UserID,
	})
	if err != nil {
		return models.Feedback{}, apperr.Internal(fmt.Errorf("create feedback: %w", err))
	}

	s.notify(ctx, created)
	return created, nil
}

func (s *Service) notify(ctx context.Context, fb models.Feedback) {
	if s.notifier == nil {
		return
	}
	// The request context is cancelled once the response is written.
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		err := s.notifier.FeedbackReceived(detached, fb)
		if s.observer != nil {
			s.observer.ObserveNotification(err)
		}
		if err != nil {
			s.logger.ErrorContext(detached, "feedback notification failed",
				slog.String("feedback_id", fb.ID),
				slog.Any("error", err))
		}
	}()
}

// Wait blocks until every dispatched notification has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if notifications
// are still running when ctx is done.
func (s *Service) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns all feedback, newest first.
func (s *Service) List(ctx context.Context) ([]models.Feedback, error) {
	items, err := s.store.ListFeedback(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list feedback: %w", err))
	}
	return items, nil
}

// ListByUser returns the feedback owned by userID, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.Feedback, error) {
	items, err := s.store.ListFeedbackByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list feedback for user %d: %w", userID, err))
	}
	return items, nil
}

// Update applies patch to the feedback id on behalf of requesterID.
func (s *Service) Update(ctx context.Context, id string, requesterID int64, patch models.FeedbackPatch) (models.Feedback, error) {
	patch = patch.Trimmed()
	if err := checkFields(patch); err != nil {
		return models.Feedback{}, err
	}

	current, err := s.authorized(ctx, id, requesterID)
	if err != nil {
		return models.Feedback{}, err
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.store.UpdateFeedback(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Feedback{}, errNotFound()
		}
		return models.Feedback{}, apperr.Internal(fmt.Errorf("update feedback %s: %w", id, err))
	}
	return updated, nil
}

// Delete removes the feedback id on behalf of requesterID.
func (s *Service) Delete(ctx context.Context, id string, requesterID int64) error {
	if _, err := s.authorized(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.store.DeleteFeedback(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errNotFound()
		}
		return apperr.Internal(fmt.Errorf("delete feedback %s: %w", id, err))
	}
	return nil
}

// authorized looks the feedback up and applies the authorization predicate.
// Not-found is reported before ownership.
func (s *Service) authorized(ctx context.Context, id string, requesterID int64) (models.Feedback, error) {
	fb, err := s.store.FindFeedback(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Feedback{}, errNotFound()
		}
		return models.Feedback{}, apperr.Internal(fmt.Errorf("find feedback %s: %w", id, err))
	}
	if !s.authorize(requesterID, fb) {
		return models.Feedback{}, apperr.Unauthorized("action not allowed")
	}
	return fb, nil
}

func errNotFound() error {
	return apperr.NotFound("feedback not found")
}

// checkFields applies the length and rating bounds to every field set in p.
func checkFields(p models.FeedbackPatch) error {
	details := make(map[string]string)
	if p.Name != nil && utf8.RuneCountInString(*p.Name) < models.MinNameLength {
		details["name"] = fmt.Sprintf("must be at least %d characters", models.MinNameLength)
	}
	if p.Message != nil && utf8.RuneCountInString(*p.Message) < models.MinMessageLength {
		details["message"] = fmt.Sprintf("must be at least %d characters", models.MinMessageLength)
	}
	if p.Rating != nil && (*p.Rating < models.MinRating || *p.Rating > models.MaxRating) {
		details["rating"] = fmt.Sprintf("must be between %d and %d", models.MinRating, models.MaxRating)
	}
	if len(details) > 0 {
		return apperr.Validation("invalid feedback", details)
	}
	return nil
}
