package firebase

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audti-backend-go/internal/core"
)

type fakeAuthClient struct {
	token     *auth.Token
	verifyErr error
	created   *auth.UserToCreate
	updated   *auth.UserToUpdate
	deleted   string
	deleteErr error
}

func (f *fakeAuthClient) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return f.token, f.verifyErr
}

func (f *fakeAuthClient) CreateUser(_ context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	f.created = user
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "uid-new"}}, nil
}

func (f *fakeAuthClient) UpdateUser(_ context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error) {
	f.updated = user
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid}}, nil
}

func (f *fakeAuthClient) DeleteUser(_ context.Context, uid string) error {
	f.deleted = uid
	return f.deleteErr
}

func TestVerifyToken(t *testing.T) {
	fake := &fakeAuthClient{token: &auth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"email": "ana@example.com", "name": "Ana"},
	}}
	p := &IdentityProvider{client: fake}

	session, err := p.VerifyToken(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", session.AuthUID)
	assert.Equal(t, "ana@example.com", session.Email)
	assert.Equal(t, "Ana", session.DisplayName)
	assert.Nil(t, session.Profile)

	fake.verifyErr = errors.New("expired")
	_, err = p.VerifyToken(context.Background(), "token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateIdentity(t *testing.T) {
	fake := &fakeAuthClient{}
	p := &IdentityProvider{client: fake}

	uid, err := p.CreateIdentity(context.Background(), "ana@example.com", "secret1", "Ana", true)
	require.NoError(t, err)
	assert.Equal(t, "uid-new", uid)
	assert.NotNil(t, fake.created)
}

func TestUpdateAndDeleteIdentity(t *testing.T) {
	fake := &fakeAuthClient{}
	p := &IdentityProvider{client: fake}

	disabled := true
	require.NoError(t, p.UpdateIdentity(context.Background(), "uid-1", core.IdentityUpdate{Disabled: &disabled}))
	assert.NotNil(t, fake.updated)

	require.NoError(t, p.DeleteIdentity(context.Background(), "uid-1"))
	assert.Equal(t, "uid-1", fake.deleted)

	fake.deleteErr = errors.New("backend unavailable")
	assert.Error(t, p.DeleteIdentity(context.Background(), "uid-1"))
}
