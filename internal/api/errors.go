package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"audti-backend-go/internal/core"
	"audti-backend-go/internal/criteria"
	"audti-backend-go/internal/db"
	"audti-backend-go/internal/templates"
)

// policyMisconfiguredMessage is shown instead of the raw store message when
// the authorization policy itself is broken.
const policyMisconfiguredMessage = "The data store's access policy is misconfigured. Ask an administrator to review the row-level policies."

// errorStatus maps service and store errors to an HTTP status and body.
func errorStatus(err error) (int, ErrorResponse) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: ve.Message, Field: ve.Field}
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Error: core.ErrUnauthenticated.Error()}
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: core.ErrForbidden.Error()}
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Resource not found", Details: err.Error()}
	case errors.Is(err, criteria.ErrTemplateLocked):
		return http.StatusConflict, ErrorResponse{Error: criteria.ErrTemplateLocked.Error()}
	case errors.Is(err, db.ErrAlreadyExists):
		return http.StatusConflict, ErrorResponse{Error: "Resource already exists", Details: err.Error()}
	case errors.Is(err, templates.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, ErrorResponse{Error: "Unsupported template format", Details: err.Error()}
	case errors.Is(err, templates.ErrInvalidTemplate):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid template file", Details: err.Error()}
	case errors.Is(err, db.ErrPolicyMisconfigured):
		return http.StatusInternalServerError, ErrorResponse{Error: policyMisconfiguredMessage, Details: err.Error()}
	case errors.Is(err, db.ErrPolicyViolation):
		return http.StatusForbidden, ErrorResponse{Error: "The data store's access policy rejected the operation", Details: err.Error()}
	case errors.Is(err, core.ErrPartialFailure):
		return http.StatusBadGateway, ErrorResponse{Error: core.ErrPartialFailure.Error(), Details: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred.", Details: err.Error()}
	}
}

// respondError writes the mapped error and records it for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := errorStatus(err)
	c.AbortWithStatusJSON(status, body)
}

// respondStoredError is respondError for writes that stored a resource before failing.
func respondStoredError(c *gin.Context, err error, id string) {
	_ = c.Error(err)
	status, body := errorStatus(err)
	body.ID = id
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string, err error) {
	body := ErrorResponse{Error: message}
	if err != nil {
		_ = c.Error(err)
		body.Details = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}
