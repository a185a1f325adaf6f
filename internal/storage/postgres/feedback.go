package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/storage"
)

const feedbackColumns = `id, name, email, message, rating, user_id, created_at`

// CreateFeedback inserts fb with a freshly generated id and returns the stored row.
func (s *Store) CreateFeedback(ctx context.Context, fb models.Feedback) (models.Feedback, error) {
	const query = `
		INSERT INTO feedback (id, name, email, message, rating, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + feedbackColumns + `;
	`
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), fb.Name, fb.Email, fb.Message, fb.Rating, fb.UserID)
	created, err := scanFeedback(row)
	if err != nil {
		return models.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return created, nil
}

// FindFeedback fetches a single feedback by id.
func (s *Store) FindFeedback(ctx context.Context, id string) (models.Feedback, error) {
	if err := uuid.Validate(id); err != nil {
		return models.Feedback{}, storage.ErrNotFound
	}
	const query = `SELECT ` + feedbackColumns + ` FROM feedback WHERE id = $1;`
	return scanFeedback(s.pool.QueryRow(ctx, query, id))
}

// ListFeedback returns every feedback, newest first.
func (s *Store) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	const query = `SELECT ` + feedbackColumns + ` FROM feedback ORDER BY created_at DESC, seq DESC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return collectFeedback(rows)
}

// ListFeedbackByUser returns the feedback owned by userID, newest first.
func (s *Store) ListFeedbackByUser(ctx context.Context, userID int64) ([]models.Feedback, error) {
	const query = `
		SELECT ` + feedbackColumns + `
		FROM feedback
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC;
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback by user: %w", err)
	}
	return collectFeedback(rows)
}

// UpdateFeedback applies the non-nil patch fields. user_id is never written.
func (s *Store) UpdateFeedback(ctx context.Context, id string, patch models.FeedbackPatch) (models.Feedback, error) {
	if err := uuid.Validate(id); err != nil {
		return models.Feedback{}, storage.ErrNotFound
	}
	const query = `
		UPDATE feedback SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			message = COALESCE($4, message),
			rating = COALESCE($5, rating)
		WHERE id = $1
		RETURNING ` + feedbackColumns + `;
	`
	row := s.pool.QueryRow(ctx, query, id, patch.Name, patch.Email, patch.Message, patch.Rating)
	updated, err := scanFeedback(row)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Feedback{}, err
		}
		return models.Feedback{}, fmt.Errorf("update feedback: %w", err)
	}
	return updated, nil
}

// DeleteFeedback removes a feedback row.
func (s *Store) DeleteFeedback(ctx context.Context, id string) error {
	if err := uuid.Validate(id); err != nil {
		return storage.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM feedback WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanFeedback(row pgx.Row) (models.Feedback, error) {
	var fb models.Feedback
	if err := row.Scan(&fb.ID, &fb.Name, &fb.Email, &fb.Message, &fb.Rating, &fb.UserID, &fb.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Feedback{}, storage.ErrNotFound
		}
		return models.Feedback{}, err
	}
	return fb, nil
}

func collectFeedback(rows pgx.Rows) ([]models.Feedback, error) {
	defer rows.Close()
	out := make([]models.Feedback, 0)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}
