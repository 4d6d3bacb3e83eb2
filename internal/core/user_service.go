package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"audti-backend-go/internal/db"
	"audti-backend-go/internal/models"
	"audti-backend-go/pkg/cache"
)

// GeneratedPasswordLength is the length of passwords generated for new users and resets.
const GeneratedPasswordLength = 12

type userService struct {
	users    db.UserRepository
	identity IdentityProvider
	activity ActivityService
	notifier Notifier
	cache    cache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService creates a new UserService instance. notifier may be nil.
func NewUserService(repos db.Repositories, identity IdentityProvider, activity ActivityService, notifier Notifier, c cache.Cache, logger *zap.Logger) UserService {
	return &userService{
		users:    repos.Users,
		identity: identity,
		activity: activity,
		notifier: notifier,
		cache:    c,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *userService) Initialize(ctx context.Context, session *models.Session) (*models.User, bool, error) {
	if !session.Authenticated() {
		return nil, false, ErrUnauthenticated
	}
	if session.Profile != nil {
		return session.Profile, false, nil
	}

	existing, err := s.users.GetByAuthUID(ctx, session.AuthUID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, err
	}

	anyUser, err := s.users.HasAny(ctx)
	if err != nil {
		return nil, false, err
	}
	role := models.RoleAuditor
	if !anyUser {
		role = models.RoleAdministrator
	}

	name := strings.TrimSpace(session.DisplayName)
	if name == "" {
		name = session.Email
	}
	now := s.now()
	user := &models.User{
		ID:        session.AuthUID,
		AuthUID:   session.AuthUID,
		Name:      name,
		Email:     session.Email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyUsers)
	s.logger.Info("User profile initialized", zap.String("userID", user.ID), zap.String("role", string(role)))
	return user, true, nil
}

func (s *userService) Me(ctx context.Context, session *models.Session) (*models.User, error) {
	if !session.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if session.Profile == nil {
		return nil, fmt.Errorf("profile for identity '%s' is not initialized: %w", session.AuthUID, db.ErrNotFound)
	}
	return session.Profile, nil
}

func (s *userService) ProfileByAuthUID(ctx context.Context, authUID string) (*models.User, error) {
	return cached(ctx, s.cache, s.logger, FamilyUsers, cacheKey("auth", authUID), func() (*models.User, error) {
		return s.users.GetByAuthUID(ctx, authUID)
	})
}

func (s *userService) List(ctx context.Context, session *models.Session) ([]models.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, session *models.Session, userID string) (*models.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *userService) Create(ctx context.Context, session *models.Session, req models.CreateUserRequest) (*models.User, string, error) {
	if err := requireAdmin(session); err != nil {
		return nil, "", err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, "", invalid("name", "is required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, "", err
	}
	role := req.Role
	if role == "" {
		role = models.RoleAuditor
	}
	if !role.Valid() {
		return nil, "", invalid("role", "must be %q or %q", models.RoleAdministrator, models.RoleAuditor)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	password, generated, err := choosePassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	uid, err := s.identity.CreateIdentity(ctx, email, password, name, !active)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create identity for '%s': %w", email, err)
	}

	now := s.now()
	user := &models.User{
		ID:        uid,
		AuthUID:   uid,
		Name:      name,
		Email:     email,
		Role:      role,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if delErr := s.identity.DeleteIdentity(ctx, uid); delErr != nil {
			s.logger.Error("Failed to remove identity after profile creation failed",
				zap.String("authUID", uid), zap.Error(delErr))
		}
		return nil, "", err
	}
	invalidate(ctx, s.cache, s.logger, FamilyUsers)

	_ = s.activity.Append(ctx, session, models.ActionUserCreate, map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
		"role":   string(user.Role),
		"active": user.Active,
	})
	notice := models.Notification{Kind: models.NotificationWelcome, To: user.Email, Name: user.Name}
	if generated {
		notice.Password = password
	}
	s.notify(ctx, notice)

	if !generated {
		password = ""
	}
	return user, password, nil
}

func (s *userService) Update(ctx context.Context, session *models.Session, userID string, req models.UpdateUserRequest) (*models.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	self := user.ID == session.ActorID()

	var update IdentityUpdate
	changed := map[string]interface{}{"userId": user.ID}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "is required")
		}
		if name != user.Name {
			user.Name = name
			update.DisplayName = &name
			changed["name"] = name
		}
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			user.Email = email
			update.Email = &email
			changed["email"] = email
		}
	}
	if req.Role != nil && *req.Role != user.Role {
		if !req.Role.Valid() {
			return nil, invalid("role", "must be %q or %q", models.RoleAdministrator, models.RoleAuditor)
		}
		if self {
			return nil, invalid("role", "administrators cannot change their own role")
		}
		user.Role = *req.Role
		changed["role"] = string(user.Role)
	}
	if req.Active != nil && *req.Active != user.Active {
		if self {
			return nil, invalid("active", "administrators cannot deactivate themselves")
		}
		user.Active = *req.Active
		disabled := !user.Active
		update.Disabled = &disabled
		changed["active"] = user.Active
	}
	if req.Password != nil {
		if len(*req.Password) < MinPasswordLength {
			return nil, invalid("password", "must have at least %d characters", MinPasswordLength)
		}
		update.Password = req.Password
		changed["passwordChanged"] = true
	}

	if update != (IdentityUpdate{}) {
		if err := s.identity.UpdateIdentity(ctx, user.AuthUID, update); err != nil {
			return nil, fmt.Errorf("failed to update identity of user '%s': %w", user.ID, err)
		}
	}
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyUsers)

	_ = s.activity.Append(ctx, session, models.ActionUserUpdate, changed)
	return user, nil
}

func (s *userService) ResetPassword(ctx context.Context, session *models.Session, userID string, req models.ResetPasswordRequest) (string, error) {
	if err := requireAdmin(session); err != nil {
		return "", err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	password, _, err := choosePassword(req.Password)
	if err != nil {
		return "", err
	}
	if err := s.identity.UpdateIdentity(ctx, user.AuthUID, IdentityUpdate{Password: &password}); err != nil {
		return "", fmt.Errorf("failed to reset password of user '%s': %w", user.ID, err)
	}

	_ = s.activity.Append(ctx, session, models.ActionPasswordReset, map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
	})
	s.notify(ctx, models.Notification{
		Kind:     models.NotificationPasswordReset,
		To:       user.Email,
		Name:     user.Name,
		Password: password,
	})
	return password, nil
}

func (s *userService) SetActive(ctx context.Context, session *models.Session, userID string, active bool) (*models.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ID == session.ActorID() && !active {
		return nil, invalid("active", "administrators cannot deactivate themselves")
	}
	if user.Active == active {
		return user, nil
	}

	disabled := !active
	if err := s.identity.UpdateIdentity(ctx, user.AuthUID, IdentityUpdate{Disabled: &disabled}); err != nil {
		return nil, fmt.Errorf("failed to change identity status of user '%s': %w", user.ID, err)
	}
	user.Active = active
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, FamilyUsers)

	action := models.ActionUserDeactivate
	if active {
		action = models.ActionUserActivate
	}
	_ = s.activity.Append(ctx, session, action, map[string]interface{}{"userId": user.ID, "email": user.Email})
	return user, nil
}

func (s *userService) Delete(ctx context.Context, session *models.Session, userID string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ID == session.ActorID() {
		return invalid("userId", "administrators cannot delete themselves")
	}

	// 1. activity entry; nothing has changed if it fails
	if _, err := s.activity.Record(ctx, session, models.ActionUserDelete, map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
	}); err != nil {
		return fmt.Errorf("failed to record deletion of user '%s': %w", user.ID, err)
	}

	// 2. profile
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, FamilyUsers)

	// 3. identity
	if err := s.identity.DeleteIdentity(ctx, user.AuthUID); err != nil {
		s.logger.Error("User profile deleted but identity removal failed",
			zap.String("userID", user.ID), zap.String("authUID", user.AuthUID), zap.Error(err))
		_ = s.activity.Append(ctx, session, models.ActionIdentityOrphaned, map[string]interface{}{
			"userId":  user.ID,
			"email":   user.Email,
			"authUid": user.AuthUID,
			"error":   err.Error(),
		})
		return fmt.Errorf("%w: profile of user '%s' was deleted but its identity was not: %v", ErrPartialFailure, user.ID, err)
	}
	return nil
}

func (s *userService) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("Failed to queue notification", zap.String("kind", n.Kind), zap.String("to", n.To), zap.Error(err))
	}
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", invalid("email", "is not a valid address")
	}
	return strings.ToLower(addr.Address), nil
}

// choosePassword validates the given password or generates one when it is empty.
func choosePassword(given string) (string, bool, error) {
	if given == "" {
		generated, err := generatePassword(GeneratedPasswordLength)
		if err != nil {
			return "", false, fmt.Errorf("failed to generate password: %w", err)
		}
		return generated, true, nil
	}
	if len(given) < MinPasswordLength {
		return "", false, invalid("password", "must have at least %d characters", MinPasswordLength)
	}
	return given, false, nil
}
