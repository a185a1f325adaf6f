package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/hongminglow/feedback-hub/internal/models"
)

const (
	// QueueDefault is the queue mail tasks are enqueued on.
	QueueDefault = "default"
	// TaskTypeSendEmail is the asynq task type for thank-you emails.
	TaskTypeSendEmail = "mail:send"
	maxRetry          = 5
)

// NewSendEmailTask constructs an asynq task carrying msg.
func NewSendEmailTask(msg Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(maxRetry), asynq.Queue(QueueDefault)), nil
}

// Enqueuer is the subset of *asynq.Client used by QueueNotifier.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier hands the email to the worker process through Redis.
type QueueNotifier struct {
	client Enqueuer
}

func NewQueueNotifier(client Enqueuer) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) FeedbackReceived(ctx context.Context, fb models.Feedback) error {
	task, err := NewSendEmailTask(ThankYou(fb))
	if err != nil {
		return fmt.Errorf("build mail task: %w", err)
	}
	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue mail task: %w", err)
	}
	return nil
}

// SendEmailHandler processes TaskTypeSendEmail tasks on the worker.
type SendEmailHandler struct {
	sender Sender
	logger *slog.Logger
}

func NewSendEmailHandler(sender Sender, logger *slog.Logger) *SendEmailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendEmailHandler{sender: sender, logger: logger}
}

// ProcessTask implements asynq.Handler. Undecodable payloads are not retried.
func (h *SendEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var msg Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("decode mail task: %w", errors.Join(err, asynq.SkipRetry))
	}
	if msg.To == "" {
		return fmt.Errorf("mail task without recipient: %w", asynq.SkipRetry)
	}
	if err := h.sender.Send(ctx, msg); err != nil {
		h.logger.WarnContext(ctx, "send email failed", slog.Any("error", err))
		return err
	}
	h.logger.InfoContext(ctx, "email sent", slog.String("subject", msg.Subject))
	return nil
}
