package firebase

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"audti-backend-go/internal/core"
	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
)

// ErrInvalidToken is returned when an ID token cannot be verified.
var ErrInvalidToken = errors.New("invalid or expired authentication token")

// authClient is the subset of *auth.Client used here.
type authClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// IdentityProvider adapts Firebase Authentication to core.IdentityProvider
// and verifies the ID tokens presented to the API.
type IdentityProvider struct {
	client authClient
}

var _ core.IdentityProvider = (*IdentityProvider)(nil)

// NewIdentityProvider creates an IdentityProvider from an initialized app.
func NewIdentityProvider(ctx context.Context, app *firebase.App) (*IdentityProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}
	return &IdentityProvider{client: client}, nil
}

// VerifyToken checks an ID token and returns the session it identifies.
// The profile is not resolved here.
func (p *IdentityProvider) VerifyToken(ctx context.Context, idToken string) (*models.Session, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	session := &models.Session{AuthUID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		session.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		session.DisplayName = name
	}
	return session, nil
}

func (p *IdentityProvider) CreateIdentity(ctx context.Context, email, password, displayName string, disabled bool) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		Disabled(disabled)
	record, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return "", translateAuthError(err)
	}
	return record.UID, nil
}

func (p *IdentityProvider) UpdateIdentity(ctx context.Context, uid string, update core.IdentityUpdate) error {
	params := &auth.UserToUpdate{}
	if update.Email != nil {
		params = params.Email(*update.Email)
	}
	if update.Password != nil {
		params = params.Password(*update.Password)
	}
	if update.DisplayName != nil {
		params = params.DisplayName(*update.DisplayName)
	}
	if update.Disabled != nil {
		params = params.Disabled(*update.Disabled)
	}
	if _, err := p.client.UpdateUser(ctx, uid, params); err != nil {
		return translateAuthError(err)
	}
	return nil
}

// DeleteIdentity removes the identity. An identity that no longer exists counts as removed.
func (p *IdentityProvider) DeleteIdentity(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil && !auth.IsUserNotFound(err) {
		return translateAuthError(err)
	}
	return nil
}

func translateAuthError(err error) error {
	switch {
	case auth.IsUserNotFound(err):
		return fmt.Errorf("identity not found: %w", db.ErrNotFound)
	case auth.IsEmailAlreadyExists(err):
		return fmt.Errorf("email is already registered: %w", db.ErrAlreadyExists)
	default:
		return err
	}
}
