package core

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
)

// DefaultActivityLimit is the number of entries List returns when no limit is given.
const DefaultActivityLimit = 100

// Publisher sends a message to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

type activityService struct {
	activity     db.ActivityLogRepository
	publisher    Publisher
	queue        string
	defaultLimit int
	logger       *zap.Logger
	now          func() time.Time
}

// ActivityOptions configures NewActivityService. A nil Publisher disables event publishing.
type ActivityOptions struct {
	Publisher    Publisher
	Queue        string
	DefaultLimit int
}

// NewActivityService creates a new ActivityService instance.
func NewActivityService(repos db.Repositories, opts ActivityOptions, logger *zap.Logger) ActivityService {
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &activityService{
		activity:     repos.Activity,
		publisher:    opts.Publisher,
		queue:        opts.Queue,
		defaultLimit: limit,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *activityService) Record(ctx context.Context, session *models.Session, action string, details map[string]interface{}) (*models.ActivityLog, error) {
	if !session.Authenticated() {
		return nil, ErrUnauthenticated
	}
	entry := &models.ActivityLog{
		ID:        newID(),
		ActorID:   session.ActorID(),
		ActorName: session.ActorName(),
		Action:    action,
		Details:   details,
		CreatedAt: s.now(),
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.publish(ctx, entry)
	return entry, nil
}

func (s *activityService) Append(ctx context.Context, session *models.Session, action string, details map[string]interface{}) error {
	_, err := s.Record(ctx, session, action, details)
	if errors.Is(err, ErrUnauthenticated) {
		return err
	}
	if err != nil {
		s.logger.Warn("Failed to write activity log entry",
			zap.String("action", action),
			zap.String("actor", session.ActorID()),
			zap.Error(err))
	}
	return nil
}

func (s *activityService) List(ctx context.Context, session *models.Session, limit int) ([]models.ActivityLog, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	entries, err := s.activity.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ActivityLog{}
	}
	return entries, nil
}

func (s *activityService) publish(ctx context.Context, entry *models.ActivityLog) {
	if s.publisher == nil || s.queue == "" {
		return
	}
	body, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("Failed to encode activity event", zap.String("id", entry.ID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.queue, body); err != nil {
		s.logger.Warn("Failed to publish activity event", zap.String("id", entry.ID), zap.Error(err))
	}
}
