package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"

	"audti-backend-go/internal/filter"
	"audti-backend-go/internal/models"
)

// maxArrayContainsAny is the Firestore limit on values in an array-contains-any filter.
const maxArrayContainsAny = 30

type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates an AuditRepository backed by Firestore.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

func setAuditID(a *models.Audit, id string) { a.ID = id }

func (r *firestoreAuditRepository) Create(ctx context.Context, scope Scope, audit *models.Audit) error {
	if audit.ID == "" {
		return errors.New("audit ID cannot be empty for Create operation")
	}
	if !scope.Allows(audit.OwnerID) {
		return fmt.Errorf("audit owner '%s' differs from the acting user: %w", audit.OwnerID, ErrPolicyViolation)
	}
	if _, err := r.client.Collection(auditsCollection).Doc(audit.ID).Create(ctx, audit); err != nil {
		return fmt.Errorf("failed to create audit '%s': %w", audit.ID, translateError(err))
	}
	return nil
}

func (r *firestoreAuditRepository) GetByID(ctx context.Context, scope Scope, auditID string) (*models.Audit, error) {
	snap, err := r.client.Collection(auditsCollection).Doc(auditID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit '%s': %w", auditID, translateError(err))
	}
	return decodeScopedAudit(snap, scope)
}

func decodeScopedAudit(snap *firestore.DocumentSnapshot, scope Scope) (*models.Audit, error) {
	if !snap.Exists() {
		return nil, fmt.Errorf("audit '%s' not found: %w", snap.Ref.ID, ErrNotFound)
	}
	var audit models.Audit
	if err := snap.DataTo(&audit); err != nil {
		return nil, fmt.Errorf("failed to decode audit '%s': %w", snap.Ref.ID, err)
	}
	audit.ID = snap.Ref.ID
	if !scope.Allows(audit.OwnerID) {
		return nil, fmt.Errorf("audit '%s' not found: %w", audit.ID, ErrNotFound)
	}
	return &audit, nil
}

func (r *firestoreAuditRepository) Update(ctx context.Context, scope Scope, audit *models.Audit) error {
	ref := r.client.Collection(auditsCollection).Doc(audit.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translateError(err)
		}
		current, err := decodeScopedAudit(snap, scope)
		if err != nil {
			return err
		}
		// owner and creation time are immutable
		updated := *audit
		updated.OwnerID = current.OwnerID
		updated.CreatedAt = current.CreatedAt
		return tx.Set(ref, &updated)
	})
	if err != nil {
		return fmt.Errorf("failed to update audit '%s': %w", audit.ID, translateError(err))
	}
	return nil
}

func (r *firestoreAuditRepository) Delete(ctx context.Context, scope Scope, auditID string) error {
	ref := r.client.Collection(auditsCollection).Doc(auditID)
	responses := r.client.Collection(responsesCollection).Where("auditId", "==", auditID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translateError(err)
		}
		if _, err := decodeScopedAudit(snap, scope); err != nil {
			return err
		}
		docs, err := tx.Documents(responses).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return fmt.Errorf("failed to delete audit '%s': %w", auditID, translateError(err))
	}
	return nil
}

// List pushes the owner, unit and category filters down to Firestore and
// evaluates search, date range, ordering and pagination in memory, which
// avoids a composite index per filter combination.
func (r *firestoreAuditRepository) List(ctx context.Context, scope Scope, q filter.Query) (filter.Result, error) {
	q = q.Normalize()
	query := r.scoped(scope)
	if q.Unit != "" {
		query = query.Where("unit", "==", q.Unit)
	}
	if n := len(q.Categories); n > 0 && n <= maxArrayContainsAny {
		query = query.Where("categories", "array-contains-any", q.Categories)
	}
	audits, err := decodeAll(query.Documents(ctx), setAuditID)
	if err != nil {
		return filter.Empty(q), fmt.Errorf("failed to list audits: %w", err)
	}
	return filter.Apply(audits, q), nil
}

func (r *firestoreAuditRepository) ListAll(ctx context.Context, scope Scope) ([]models.Audit, error) {
	audits, err := decodeAll(r.scoped(scope).Documents(ctx), setAuditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	q := filter.New()
	sort.SliceStable(audits, func(i, j int) bool { return q.Less(audits[i], audits[j]) })
	return audits, nil
}

func (r *firestoreAuditRepository) DistinctCategories(ctx context.Context, scope Scope) ([]string, error) {
	audits, err := decodeAll(r.scoped(scope).Select("categories").Documents(ctx), setAuditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit categories: %w", err)
	}
	var values []string
	for _, a := range audits {
		values = append(values, a.Categories...)
	}
	return distinctSorted(values), nil
}

func (r *firestoreAuditRepository) DistinctUnits(ctx context.Context, scope Scope) ([]string, error) {
	audits, err := decodeAll(r.scoped(scope).Select("unit").Documents(ctx), setAuditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit units: %w", err)
	}
	values := make([]string, 0, len(audits))
	for _, a := range audits {
		values = append(values, a.Unit)
	}
	return distinctSorted(values), nil
}

func (r *firestoreAuditRepository) scoped(scope Scope) firestore.Query {
	query := r.client.Collection(auditsCollection).Query
	if !scope.Admin {
		query = query.Where("ownerId", "==", scope.ActorID)
	}
	return query
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
