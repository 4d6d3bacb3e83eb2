package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
	"audti-backend-go/pkg/cache"
	"audti-backend-go/pkg/messagequeue"
)

type fakeIdentity struct {
	mu        sync.Mutex
	next      int
	uid       string
	createErr error
	updateErr error
	deleteErr error
	created   []string
	updates   []IdentityUpdate
	deleted   []string
}

func (f *fakeIdentity) CreateIdentity(_ context.Context, email, password, displayName string, disabled bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	uid := f.uid
	if uid == "" {
		f.next++
		uid = fmt.Sprintf("uid-%d", f.next)
	}
	f.created = append(f.created, uid)
	return uid, nil
}

func (f *fakeIdentity) UpdateIdentity(_ context.Context, uid string, update IdentityUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeIdentity) DeleteIdentity(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, uid)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

type failingActivityRepo struct{}

func (failingActivityRepo) Create(context.Context, *models.ActivityLog) error {
	return errors.New("activity store unavailable")
}

func (failingActivityRepo) List(context.Context, int) ([]models.ActivityLog, error) {
	return nil, errors.New("activity store unavailable")
}

type failingResponseRepo struct{ db.ResponseRepository }

func (failingResponseRepo) UpsertMany(context.Context, db.Scope, string, []models.Response) error {
	return errors.New("response store unavailable")
}

type testEnv struct {
	repos      db.Repositories
	cache      *cache.MemoryCache
	queue      *messagequeue.MemoryQueue
	identity   *fakeIdentity
	notifier   *fakeNotifier
	activity   ActivityService
	audits     AuditService
	checklists ChecklistService
	responses  ResponseService
	users      UserService
	reports    ReportService
}

func newTestRepos(t *testing.T) db.Repositories {
	t.Helper()
	gdb, err := db.OpenGorm("sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db.NewGormRepositories(gdb)
}

func newTestEnvWith(t *testing.T, repos db.Repositories) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	env := &testEnv{
		repos:    repos,
		cache:    cache.NewMemoryCache(time.Minute, nil),
		queue:    messagequeue.NewMemoryQueue(64),
		identity: &fakeIdentity{},
		notifier: &fakeNotifier{},
	}
	env.activity = NewActivityService(repos, ActivityOptions{Publisher: env.queue, Queue: "activity"}, logger)
	env.audits = NewAuditService(repos, env.cache, logger)
	env.checklists = NewChecklistService(repos, env.activity, env.cache, logger)
	env.responses = NewResponseService(repos, env.cache, logger)
	env.users = NewUserService(repos, env.identity, env.activity, env.notifier, env.cache, logger)
	env.reports = NewReportService(repos, logger)
	return env
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, newTestRepos(t))
}

// addUser stores a profile and returns a session acting as it.
func (e *testEnv) addUser(t *testing.T, id string, role models.Role) *models.Session {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:        id,
		AuthUID:   "auth-" + id,
		Name:      "User " + id,
		Email:     id + "@example.com",
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.repos.Users.Create(context.Background(), user))
	return &models.Session{AuthUID: user.AuthUID, Email: user.Email, DisplayName: user.Name, Profile: user}
}

func (e *testEnv) seedItems(t *testing.T, admin *models.Session, category string, weights ...int) []models.ChecklistItem {
	t.Helper()
	reqs := make([]models.CreateChecklistItemRequest, len(weights))
	for i := range weights {
		w := weights[i]
		reqs[i] = models.CreateChecklistItemRequest{
			Category:    category,
			Description: fmt.Sprintf("%s item %d", category, i+1),
			Weight:      &w,
			Order:       i + 1,
		}
	}
	items, err := e.checklists.CreateMany(context.Background(), admin, reqs)
	require.NoError(t, err)
	return items
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
