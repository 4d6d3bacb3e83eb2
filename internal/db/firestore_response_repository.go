package db

import (
	"context"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"

	"audti-backend-go/internal/models"
)

type firestoreResponseRepository struct {
	client *firestore.Client
}

// NewFirestoreResponseRepository creates a ResponseRepository backed by Firestore.
// Response documents are keyed by audit and checklist item so writes are upserts.
func NewFirestoreResponseRepository(client *firestore.Client) ResponseRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ResponseRepository.")
	}
	return &firestoreResponseRepository{client: client}
}

func responseDocID(auditID, checklistID string) string {
	return auditID + "_" + checklistID
}

func (r *firestoreResponseRepository) ListByAudit(ctx context.Context, scope Scope, auditID string) ([]models.Response, error) {
	snap, err := r.client.Collection(auditsCollection).Doc(auditID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses of audit '%s': %w", auditID, translateError(err))
	}
	if _, err := decodeScopedAudit(snap, scope); err != nil {
		return nil, fmt.Errorf("failed to list responses of audit '%s': %w", auditID, err)
	}

	query := r.client.Collection(responsesCollection).Where("auditId", "==", auditID)
	responses, err := decodeAll(query.Documents(ctx), func(resp *models.Response, id string) { resp.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list responses of audit '%s': %w", auditID, err)
	}
	sort.SliceStable(responses, func(i, j int) bool {
		return responses[i].CreatedAt.Before(responses[j].CreatedAt)
	})
	return responses, nil
}

func (r *firestoreResponseRepository) UpsertMany(ctx context.Context, scope Scope, auditID string, responses []models.Response) error {
	if len(responses) == 0 {
		return nil
	}
	auditRef := r.client.Collection(auditsCollection).Doc(auditID)
	refs := make([]*firestore.DocumentRef, len(responses))
	for i, resp := range responses {
		refs[i] = r.client.Collection(responsesCollection).Doc(responseDocID(auditID, resp.ChecklistID))
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(auditRef)
		if err != nil {
			return translateError(err)
		}
		if _, err := decodeScopedAudit(snap, scope); err != nil {
			return err
		}
		existing, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		for i, resp := range responses {
			resp.AuditID = auditID
			if existing[i].Exists() {
				var prev models.Response
				if err := existing[i].DataTo(&prev); err == nil {
					resp.CreatedAt = prev.CreatedAt
				}
			}
			if err := tx.Set(refs[i], &resp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d responses of audit '%s': %w", len(responses), auditID, translateError(err))
	}
	return nil
}
