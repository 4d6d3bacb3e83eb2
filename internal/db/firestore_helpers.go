package db

import (
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Collection names of the document store.
const (
	auditsCollection      = "audits"
	checklistCollection   = "checklistItems"
	responsesCollection   = "auditResponses"
	usersCollection       = "users"
	activityLogCollection = "activityLogs"
)

// decodeAll drains iter into values of T, setting each document id through setID.
func decodeAll[T any](iter *firestore.DocumentIterator, setID func(*T, string)) ([]T, error) {
	defer iter.Stop()
	out := []T{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translateError(err)
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("failed to decode document '%s': %w", doc.Ref.ID, err)
		}
		setID(&v, doc.Ref.ID)
		out = append(out, v)
	}
	return out, nil
}

// NewFirestoreRepositories wires every repository to the same Firestore client.
func NewFirestoreRepositories(client *firestore.Client) Repositories {
	return Repositories{
		Audits:     NewFirestoreAuditRepository(client),
		Checklists: NewFirestoreChecklistRepository(client),
		Responses:  NewFirestoreResponseRepository(client),
		Users:      NewFirestoreUserRepository(client),
		Activity:   NewFirestoreActivityLogRepository(client),
	}
}
