package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
)

// NewFirestoreClient opens the Firestore client of an initialized Firebase app.
func NewFirestoreClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	if app == nil {
		return nil, fmt.Errorf("NewFirestoreClient: firebase app cannot be nil")
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		log.Printf("Error getting Firestore client: %v", err)
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	log.Println("Firestore client initialized successfully.")
	return client, nil
}
