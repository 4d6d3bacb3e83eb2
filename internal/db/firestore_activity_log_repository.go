package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"audti-backend-go/internal/models"
)

type firestoreActivityLogRepository struct {
	client *firestore.Client
}

// NewFirestoreActivityLogRepository creates an ActivityLogRepository backed by Firestore.
func NewFirestoreActivityLogRepository(client *firestore.Client) ActivityLogRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ActivityLogRepository.")
	}
	return &firestoreActivityLogRepository{client: client}
}

func (r *firestoreActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if _, err := r.client.Collection(activityLogCollection).Doc(entry.ID).Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create activity log entry: %w", translateError(err))
	}
	return nil
}

func (r *firestoreActivityLogRepository) List(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := r.client.Collection(activityLogCollection).OrderBy("createdAt", firestore.Desc).Limit(limit)
	entries, err := decodeAll(query.Documents(ctx), func(e *models.ActivityLog, id string) { e.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	return entries, nil
}
