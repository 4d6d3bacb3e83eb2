package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"audti-backend-go/internal/models"
)

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserRepository.")
	}
	return &firestoreUserRepository{client: client}
}

func setUserID(u *models.User, id string) { u.ID = id }

func (r *firestoreUserRepository) List(ctx context.Context) ([]models.User, error) {
	users, err := decodeAll(r.client.Collection(usersCollection).OrderBy("name", firestore.Asc).Documents(ctx), setUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a profile by its document ID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, translateError(err))
	}
	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}

// GetByAuthUID retrieves the profile linked to an identity provider UID.
func (r *firestoreUserRepository) GetByAuthUID(ctx context.Context, authUID string) (*models.User, error) {
	query := r.client.Collection(usersCollection).Where("authUid", "==", authUID).Limit(1)
	users, err := decodeAll(query.Documents(ctx), setUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by auth UID '%s': %w", authUID, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user with auth UID '%s' not found: %w", authUID, ErrNotFound)
	}
	return &users[0], nil
}

func (r *firestoreUserRepository) HasAny(ctx context.Context) (bool, error) {
	iter := r.client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for users: %w", translateError(err))
	}
	return true, nil
}

// Create adds a new profile document. user.ID is used as the document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	if _, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, translateError(err))
	}
	return nil
}

// Update overwrites the mutable profile fields; the document must exist.
func (r *firestoreUserRepository) Update(ctx context.Context, user *models.User) error {
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: user.Name},
		{Path: "email", Value: user.Email},
		{Path: "role", Value: string(user.Role)},
		{Path: "active", Value: user.Active},
		{Path: "updatedAt", Value: user.UpdatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to update user with ID '%s': %w", user.ID, translateError(err))
	}
	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.client.Collection(usersCollection).Doc(userID).Delete(ctx, firestore.Exists); err != nil {
		return fmt.Errorf("failed to delete user with ID '%s': %w", userID, translateError(err))
	}
	return nil
}
