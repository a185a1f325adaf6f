package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/storage"
)

// TestStoreIntegration exercises users and feedback against a live Postgres.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORAGE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORAGE_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()

	email := fmt.Sprintf("storetest_%d@example.com", time.Now().UnixNano())
	user, err := store.CreateUser(ctx, models.User{Email: email, PasswordHash: "hash"})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, models.User{Email: email, PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	first, err := store.CreateFeedback(ctx, models.Feedback{Name: "Ana", Email: email, Message: "first one", Rating: 2, UserID: user.ID})
	require.NoError(t, err)
	second, err := store.CreateFeedback(ctx, models.Feedback{Name: "Ana", Email: email, Message: "second one", Rating: 5, UserID: user.ID})
	require.NoError(t, err)

	mine, err := store.ListFeedbackByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	rating := 4
	updated, err := store.UpdateFeedback(ctx, first.ID, models.FeedbackPatch{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, "first one", updated.Message)

	require.NoError(t, store.DeleteFeedback(ctx, first.ID))
	assert.ErrorIs(t, store.DeleteFeedback(ctx, first.ID), storage.ErrNotFound)
	_, err = store.FindFeedback(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.DeleteFeedback(ctx, second.ID))
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
