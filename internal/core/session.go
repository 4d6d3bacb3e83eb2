package core

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
	"audti-backend-go/pkg/cache"
)

// Cache families. A mutation invalidates every family it touches.
const (
	FamilyAudits     = "audits"
	FamilyChecklists = "checklists"
	FamilyResponses  = "responses"
	FamilyUsers      = "users"
)

// authenticated checks that the session carries a verified identity of an
// active user. Users without a profile yet count as active.
func authenticated(session *models.Session) error {
	if !session.Authenticated() {
		return ErrUnauthenticated
	}
	if session.Profile != nil && !session.Profile.Active {
		return ErrForbidden
	}
	return nil
}

func requireAdmin(session *models.Session) error {
	if err := authenticated(session); err != nil {
		return err
	}
	if !session.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func scopeOf(session *models.Session) db.Scope {
	return db.Scope{ActorID: session.ActorID(), Admin: session.IsAdmin()}
}

// newID returns a time-ordered identifier, so ids double as insertion order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func cacheKey(parts ...string) string {
	return strconv.FormatUint(xxhash.Sum64String(strings.Join(parts, "\x1f")), 16)
}

func invalidate(ctx context.Context, c cache.Cache, logger *zap.Logger, families ...string) {
	if c == nil {
		return
	}
	for _, family := range families {
		if err := c.Invalidate(ctx, family); err != nil {
			logger.Warn("Failed to invalidate cache family", zap.String("family", family), zap.Error(err))
		}
	}
}

func cached[T any](ctx context.Context, c cache.Cache, logger *zap.Logger, family, key string, load func() (T, error)) (T, error) {
	if c != nil {
		var hit T
		ok, err := cache.GetJSON(ctx, c, family, key, &hit)
		if err != nil {
			logger.Warn("Cache read failed", zap.String("family", family), zap.Error(err))
		} else if ok {
			return hit, nil
		}
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	if c != nil {
		if err := cache.SetJSON(ctx, c, family, key, value); err != nil {
			logger.Warn("Cache write failed", zap.String("family", family), zap.Error(err))
		}
	}
	return value, nil
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// MinPasswordLength is the shortest password the identity provider accepts.
const MinPasswordLength = 6

func generatePassword(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
