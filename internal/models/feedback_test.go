package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedbackPatchApplyOnlyTouchesProvidedFields(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := Feedback{ID: "f1", Name: "Ana", Email: "ana@example.com", Message: "great stuff", Rating: 2, UserID: 7, CreatedAt: created}

	rating := 4
	got := FeedbackPatch{Rating: &rating}.Apply(orig)

	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Email, got.Email)
	assert.Equal(t, orig.Message, got.Message)
	assert.Equal(t, orig.UserID, got.UserID)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, 2, orig.Rating, "input must not be mutated")
}

func TestFeedbackPatchEmpty(t *testing.T) {
	assert.True(t, FeedbackPatch{}.Empty())
	msg := "hello there"
	assert.False(t, FeedbackPatch{Message: &msg}.Empty())
}
