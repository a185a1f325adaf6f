package models

import (
	"strings"
	"time"
)

// Field bounds accepted for feedback. Lengths count runes after trimming.
const (
	MinRating        = 1
	MaxRating        = 5
	MinNameLength    = 2
	MinMessageLength = 5
)

// Feedback is a rated message left by an authenticated user.
type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedbackPatch lists the mutable fields of a Feedback. Nil fields are left unchanged.
type FeedbackPatch struct {
	Name    *string
	Email   *string
	Message *string
	Rating  *int
}

// Empty reports whether the patch changes nothing.
func (p FeedbackPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Message == nil && p.Rating == nil
}

// Trimmed returns a copy with surrounding whitespace removed from every text field.
func (p FeedbackPatch) Trimmed() FeedbackPatch {
	p.Name = trimmedPtr(p.Name)
	p.Email = trimmedPtr(p.Email)
	p.Message = trimmedPtr(p.Message)
	return p
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// Apply returns a copy of f with the patch applied. ID, UserID and CreatedAt are never touched.
func (p FeedbackPatch) Apply(f Feedback) Feedback {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Message != nil {
		f.Message = *p.Message
	}
	if p.Rating != nil {
		f.Rating = *p.Rating
	}
	return f
}
