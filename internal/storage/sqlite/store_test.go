package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func mustUser(t *testing.T, s *Store, email string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	return u
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustUser(t, s, "ana@example.com")
	assert.NotZero(t, first.ID)

	_, err := s.CreateUser(ctx, models.User{Email: "ana@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := s.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)
}

func TestFindByEmailMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFeedbackListingNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	ana := mustUser(t, s, "ana@example.com")
	bob := mustUser(t, s, "bob@example.com")
	for i, owner := range []int64{ana.ID, bob.ID, ana.ID} {
		_, err := s.CreateFeedback(ctx, models.Feedback{
			Name: "Someone", Email: "x@example.com", Message: "message body", Rating: i + 1, UserID: owner,
		})
		require.NoError(t, err)
	}

	all, err := s.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{all[0].Rating, all[1].Rating, all[2].Rating})
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}

	mine, err := s.ListFeedbackByUser(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, 3, mine[0].Rating)
	assert.Equal(t, 1, mine[1].Rating)
}

func TestFeedbackListEmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)
	all, err := s.ListFeedback(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestUpdateFeedbackPartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "ana@example.com")
	created, err := s.CreateFeedback(ctx, models.Feedback{
		Name: "Ana", Email: "ana@example.com", Message: "first version", Rating: 2, UserID: owner.ID,
	})
	require.NoError(t, err)

	rating := 4
	updated, err := s.UpdateFeedback(ctx, created.ID, models.FeedbackPatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "first version", updated.Message)
	assert.Equal(t, owner.ID, updated.UserID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rating := 3

	_, err := s.UpdateFeedback(ctx, "missing", models.FeedbackPatch{Rating: &rating})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteFeedback(ctx, "missing"), storage.ErrNotFound)
	_, err = s.FindFeedback(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteFeedbackTwice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "ana@example.com")
	created, err := s.CreateFeedback(ctx, models.Feedback{
		Name: "Ana", Email: "ana@example.com", Message: "to be removed", Rating: 5, UserID: owner.ID,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFeedback(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteFeedback(ctx, created.ID), storage.ErrNotFound)
}
