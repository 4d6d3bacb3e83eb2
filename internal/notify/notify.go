// Package notify queues user notifications and turns them into emails.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"audti-backend-go/internal/core"
	"audti-backend-go/internal/models"
	"audti-backend-go/pkg/mailer"
	"audti-backend-go/pkg/messagequeue"
)

// QueueNotifier publishes notifications as JSON to a queue.
type QueueNotifier struct {
	queue     messagequeue.MessageQueue
	queueName string
}

var _ core.Notifier = (*QueueNotifier)(nil)

// NewQueueNotifier creates a notifier publishing to queueName.
func NewQueueNotifier(queue messagequeue.MessageQueue, queueName string) *QueueNotifier {
	return &QueueNotifier{queue: queue, queueName: queueName}
}

func (n *QueueNotifier) Notify(ctx context.Context, msg models.Notification) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return n.queue.Publish(ctx, n.queueName, body)
}

// Worker consumes notifications and sends the matching email.
type Worker struct {
	queue     messagequeue.MessageQueue
	queueName string
	sender    mailer.Sender
	logger    *zap.Logger
}

// NewWorker creates a notification worker.
func NewWorker(queue messagequeue.MessageQueue, queueName string, sender mailer.Sender, logger *zap.Logger) *Worker {
	return &Worker{queue: queue, queueName: queueName, sender: sender, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Notification worker started", zap.String("queue", w.queueName))
	err := w.queue.Consume(ctx, w.queueName, w.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle processes one queued notification. Malformed messages are dropped.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		w.logger.Error("Dropping malformed notification", zap.Error(err))
		return nil
	}
	msg, err := Render(n)
	if err != nil {
		w.logger.Error("Dropping notification", zap.String("kind", n.Kind), zap.Error(err))
		return nil
	}
	if err := w.sender.Send(ctx, msg); err != nil {
		w.logger.Warn("Failed to send notification email", zap.String("kind", n.Kind), zap.String("to", n.To), zap.Error(err))
		return err
	}
	w.logger.Info("Notification email sent", zap.String("kind", n.Kind), zap.String("to", n.To))
	return nil
}

// ErrUnknownKind is returned by Render for an unsupported notification kind.
var ErrUnknownKind = errors.New("unknown notification kind")

// Render builds the email for a notification.
func Render(n models.Notification) (mailer.Message, error) {
	if n.To == "" {
		return mailer.Message{}, errors.New("notification has no recipient")
	}
	name := n.Name
	if name == "" {
		name = n.To
	}
	switch n.Kind {
	case models.NotificationWelcome:
		body := fmt.Sprintf("<p>Olá %s,</p><p>Sua conta no Audti foi criada com o e-mail %s.</p>", name, n.To)
		if n.Password != "" {
			body += fmt.Sprintf("<p>Senha inicial: <b>%s</b></p><p>Altere a senha no primeiro acesso.</p>", n.Password)
		}
		return mailer.Message{To: n.To, Subject: "Bem-vindo ao Audti", Body: body}, nil
	case models.NotificationPasswordReset:
		body := fmt.Sprintf("<p>Olá %s,</p><p>Sua senha foi redefinida por um administrador.</p><p>Nova senha: <b>%s</b></p>", name, n.Password)
		return mailer.Message{To: n.To, Subject: "Sua senha do Audti foi redefinida", Body: body}, nil
	default:
		return mailer.Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}
}

// ActivityLogger consumes activity events and writes them to the log.
type ActivityLogger struct {
	queue     messagequeue.MessageQueue
	queueName string
	logger    *zap.Logger
}

// NewActivityLogger creates a consumer for the activity queue.
func NewActivityLogger(queue messagequeue.MessageQueue, queueName string, logger *zap.Logger) *ActivityLogger {
	return &ActivityLogger{queue: queue, queueName: queueName, logger: logger}
}

// Run blocks until ctx is cancelled.
func (a *ActivityLogger) Run(ctx context.Context) error {
	err := a.queue.Consume(ctx, a.queueName, func(_ context.Context, body []byte) error {
		var entry models.ActivityLog
		if err := json.Unmarshal(body, &entry); err != nil {
			a.logger.Error("Dropping malformed activity event", zap.Error(err))
			return nil
		}
		a.logger.Info("Activity",
			zap.String("id", entry.ID),
			zap.String("action", entry.Action),
			zap.String("actor", entry.ActorID),
			zap.String("actorName", entry.ActorName),
			zap.Any("details", entry.Details),
			zap.Time("at", entry.CreatedAt))
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
