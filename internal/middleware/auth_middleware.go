package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
)

// SessionKey is the gin context key holding the *models.Session of the request.
const SessionKey = "session"

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies a bearer token and returns the identity it carries.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.Session, error)
}

// ProfileLoader resolves the profile linked to an identity.
type ProfileLoader interface {
	ProfileByAuthUID(ctx context.Context, authUID string) (*models.User, error)
}

// AuthMiddleware authenticates requests and attaches the acting session.
type AuthMiddleware struct {
	verifier TokenVerifier
	profiles ProfileLoader
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, profiles ProfileLoader, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil || profiles == nil {
		panic("AuthMiddleware requires a token verifier and a profile loader")
	}
	return &AuthMiddleware{verifier: verifier, profiles: profiles, logger: logger}
}

// VerifyToken verifies the bearer token of the Authorization header and
// stores the session under SessionKey. The session's profile stays nil until
// the user has initialized one.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		session, err := m.verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Info("Rejected authentication token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		profile, err := m.profiles.ProfileByAuthUID(c.Request.Context(), session.AuthUID)
		switch {
		case err == nil:
			session.Profile = profile
		case errors.Is(err, db.ErrNotFound):
			// first login: POST /users/initialize creates the profile
		default:
			m.logger.Error("Failed to load user profile", zap.String("authUID", session.AuthUID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load user profile", Details: err.Error()})
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session attached by VerifyToken, or nil.
func SessionFrom(c *gin.Context) *models.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*models.Session)
	return session
}
