// Package notify delivers the thank-you email sent after feedback is created.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hongminglow/feedback-hub/internal/models"
)

// Notifier is told about every persisted feedback.
type Notifier interface {
	FeedbackReceived(ctx context.Context, fb models.Feedback) error
}

// Message is a plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ThankYou builds the message sent to the author of fb.
func ThankYou(fb models.Feedback) Message {
	return Message{
		To:      fb.Email,
		Subject: "Thank you for your feedback!",
		Body:    fmt.Sprintf("Thank you for your opinion, %s!", fb.Name),
	}
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MailNotifier sends the thank-you email directly through a Sender.
type MailNotifier struct {
	sender Sender
}

func NewMailNotifier(sender Sender) *MailNotifier {
	return &MailNotifier{sender: sender}
}

func (n *MailNotifier) FeedbackReceived(ctx context.Context, fb models.Feedback) error {
	return n.sender.Send(ctx, ThankYou(fb))
}

// LogNotifier only records that an email would have been sent.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) FeedbackReceived(ctx context.Context, fb models.Feedback) error {
	msg := ThankYou(fb)
	n.logger.InfoContext(ctx, "thank-you email skipped (log notifier)",
		slog.String("feedback_id", fb.ID),
		slog.String("subject", msg.Subject))
	return nil
}
