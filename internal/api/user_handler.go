package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"audti-backend-go/internal/core"
	"audti-backend-go/internal/middleware"
	"audti-backend-go/internal/models"
)

// UserHandler handles the caller's own profile endpoints.
type UserHandler struct {
	userService core.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// InitializeUserProfile handles POST /users/initialize. It is called by the
// client after sign-in so a profile exists for the identity; 201 when it was
// created now, 200 when it already existed.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	user, created, err := h.userService.Initialize(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetCurrentUserProfile handles GET /users/me
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AdminHandler handles user management and the activity log.
type AdminHandler struct {
	userService     core.UserService
	activityService core.ActivityService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(us core.UserService, as core.ActivityService) *AdminHandler {
	return &AdminHandler{userService: us, activityService: as}
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /admin/users/:userId
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, password, err := h.userService.Create(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedUserResponse{User: user, Password: password})
}

// UpdateUser handles PUT /admin/users/:userId
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, err := h.userService.Update(c.Request.Context(), middleware.SessionFrom(c), c.Param("userId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ResetPassword handles POST /admin/users/:userId/reset-password. An empty
// body generates a password.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request payload", err)
			return
		}
	}
	password, err := h.userService.ResetPassword(c.Request.Context(), middleware.SessionFrom(c), c.Param("userId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PasswordResponse{Password: password})
}

// SetUserStatus handles PATCH /admin/users/:userId/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req models.SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	user, err := h.userService.SetActive(c.Request.Context(), middleware.SessionFrom(c), c.Param("userId"), *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/users/:userId
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), middleware.SessionFrom(c), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListActivityLogs handles GET /admin/activity-logs?limit=N
func (h *AdminHandler) ListActivityLogs(c *gin.Context) {
	limit, err := intParam(c, "limit", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.activityService.List(c.Request.Context(), middleware.SessionFrom(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
