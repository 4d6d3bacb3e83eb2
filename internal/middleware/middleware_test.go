package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
)

type stubVerifier struct{ err error }

func (v stubVerifier) VerifyToken(_ context.Context, token string) (*models.Session, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &models.Session{AuthUID: "uid-" + token, Email: token + "@example.com"}, nil
}

type stubProfiles map[string]*models.User

func (p stubProfiles) ProfileByAuthUID(_ context.Context, authUID string) (*models.User, error) {
	if u, ok := p[authUID]; ok {
		return u, nil
	}
	if authUID == "uid-broken" {
		return nil, errors.New("connection reset")
	}
	return nil, fmt.Errorf("profile: %w", db.ErrNotFound)
}

func newAuthRouter(v TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	profiles := stubProfiles{"uid-ana": {ID: "u1", Name: "Ana", Role: models.RoleAdministrator, Active: true}}
	r := gin.New()
	r.Use(NewAuthMiddleware(v, profiles, zap.NewNop()).VerifyToken())
	r.GET("/me", func(c *gin.Context) {
		s := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"actor": s.ActorID(), "admin": s.IsAdmin()})
	})
	return r
}

func TestVerifyToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier TokenVerifier
		status   int
		body     string
	}{
		{"missing header", "", stubVerifier{}, http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", "Basic abc", stubVerifier{}, http.StatusUnauthorized, "Bearer {token}"},
		{"invalid token", "Bearer ana", stubVerifier{err: errors.New("expired")}, http.StatusUnauthorized, "Invalid or expired"},
		{"profile resolved", "bearer ana", stubVerifier{}, http.StatusOK, `"actor":"u1"`},
		{"no profile yet", "Bearer bob", stubVerifier{}, http.StatusOK, `"actor":"uid-bob"`},
		{"profile lookup fails", "Bearer broken", stubVerifier{}, http.StatusInternalServerError, "Failed to load user profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newAuthRouter(tt.verifier).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

type recordingObserver struct{ routes []string }

func (o *recordingObserver) ObserveRequest(method, route, status string, _ float64) {
	o.routes = append(o.routes, method+" "+route+" "+status)
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/audits/:auditId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/audits/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, []string{"GET /audits/:auditId 204", "GET unmatched 404"}, obs.routes)
}
