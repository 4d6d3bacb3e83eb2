package core

import (
	"context"

	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
	"audti-backend-go/pkg/cache"
)

type responseService struct {
	responses db.ResponseRepository
	cache     cache.Cache
	logger    *zap.Logger
}

// NewResponseService creates a new ResponseService instance.
func NewResponseService(repos db.Repositories, c cache.Cache, logger *zap.Logger) ResponseService {
	return &responseService{responses: repos.Responses, cache: c, logger: logger}
}

func (s *responseService) ListByAudit(ctx context.Context, session *models.Session, auditID string) ([]models.Response, error) {
	if err := authenticated(session); err != nil {
		return nil, err
	}
	scope := scopeOf(session)
	key := cacheKey(scope.ActorID, boolKey(scope.Admin), auditID)
	return cached(ctx, s.cache, s.logger, FamilyResponses, key, func() ([]models.Response, error) {
		responses, err := s.responses.ListByAudit(ctx, scope, auditID)
		if responses == nil && err == nil {
			responses = []models.Response{}
		}
		return responses, err
	})
}

func boolKey(b bool) string {
	if b {
		return "admin"
	}
	return "owner"
}
