package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/storage"
)

const feedbackColumns = `id, name, email, message, rating, user_id, created_at`

type feedbackRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Message   string `db:"message"`
	Rating    int    `db:"rating"`
	UserID    int64  `db:"user_id"`
	CreatedAt int64  `db:"created_at"`
}

func (r feedbackRow) model() models.Feedback {
	return models.Feedback{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Message:   r.Message,
		Rating:    r.Rating,
		UserID:    r.UserID,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}

// CreateFeedback inserts fb with a freshly generated id.
func (s *Store) CreateFeedback(ctx context.Context, fb models.Feedback) (models.Feedback, error) {
	fb.ID = uuid.NewString()
	fb.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (`+feedbackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.Name, fb.Email, fb.Message, fb.Rating, fb.UserID, fb.CreatedAt.UnixNano())
	if err != nil {
		return models.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}

// FindFeedback fetches a single feedback by id.
func (s *Store) FindFeedback(ctx context.Context, id string) (models.Feedback, error) {
	var row feedbackRow
	err := s.db.GetContext(ctx, &row, `SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Feedback{}, storage.ErrNotFound
		}
		return models.Feedback{}, fmt.Errorf("find feedback: %w", err)
	}
	return row.model(), nil
}

// ListFeedback returns every feedback, newest first.
func (s *Store) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	var rows []feedbackRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+feedbackColumns+` FROM feedback ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return toModels(rows), nil
}

// ListFeedbackByUser returns the feedback owned by userID, newest first.
func (s *Store) ListFeedbackByUser(ctx context.Context, userID int64) ([]models.Feedback, error) {
	var rows []feedbackRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+feedbackColumns+` FROM feedback WHERE user_id = ? ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback by user: %w", err)
	}
	return toModels(rows), nil
}

// UpdateFeedback applies the non-nil patch fields. user_id is never written.
func (s *Store) UpdateFeedback(ctx context.Context, id string, patch models.FeedbackPatch) (models.Feedback, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE feedback SET
			name = COALESCE(?, name),
			email = COALESCE(?, email),
			message = COALESCE(?, message),
			rating = COALESCE(?, rating)
		WHERE id = ?`,
		patch.Name, patch.Email, patch.Message, patch.Rating, id)
	if err != nil {
		return models.Feedback{}, fmt.Errorf("update feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Feedback{}, storage.ErrNotFound
	}
	return s.FindFeedback(ctx, id)
}

// DeleteFeedback removes a feedback row.
func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete feedback rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func toModels(rows []feedbackRow) []models.Feedback {
	out := make([]models.Feedback, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out
}
