package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/transport/http/dto"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	log  *slog.Logger
	repo repository.UserRepository
	now  func() time.Time
}

func NewUserService(log *slog.Logger, repo repository.UserRepository) *UserService {
	return &UserService{
		log:  log,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest) (models.AdminUser, error) {
	const op = "service.UserService.Create"

	username := strings.ToLower(strings.TrimSpace(req.Username))

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("creating admin user")

	role := models.Role(req.Role)
	if !role.Valid() {
		return models.AdminUser{}, apperr.Validation(fmt.Sprintf("invalid role: %s", req.Role))
	}
	if username == "" {
		return models.AdminUser{}, apperr.Validation("username is required")
	}
	if len(req.Password) < 8 {
		return models.AdminUser{}, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return models.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	user := models.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")

			return models.AdminUser{}, apperr.Conflict("username already taken")
		}
		log.Error("failed to save user", sl.Err(err))

		return models.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin user created")

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.AdminUser, error) {
	const op = "service.UserService.List"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// Update changes role and active flag. The last active superadmin can be neither
// demoted nor disabled.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (models.AdminUser, error) {
	const op = "service.UserService.Update"

	user, err := s.get(ctx, id)
	if err != nil {
		return models.AdminUser{}, err
	}

	next := user
	if req.Role != nil {
		next.Role = models.Role(*req.Role)
		if !next.Role.Valid() {
			return models.AdminUser{}, apperr.Validation(fmt.Sprintf("invalid role: %s", *req.Role))
		}
	}
	if req.Active != nil {
		next.Active = *req.Active
	}

	losesSuperAdmin := user.Role == models.RoleSuperAdmin && user.Active &&
		(next.Role != models.RoleSuperAdmin || !next.Active)
	if losesSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return models.AdminUser{}, err
		}
	}

	next.UpdatedAt = s.now()

	if err := s.repo.UpdateUser(ctx, next); err != nil {
		return models.AdminUser{}, s.storeErr(op, err)
	}

	return next, nil
}

func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	const op = "service.UserService.ResetPassword"

	if len(password) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return s.storeErr(op, err)
	}

	s.log.Info("password reset", slog.String("op", op), slog.String("username", user.Username))

	return nil
}

// Delete removes an admin account. Nobody can delete their own account.
func (s *UserService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	const op = "service.UserService.Delete"

	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if strings.EqualFold(user.Username, actor) {
		return apperr.Validation("you cannot delete your own account")
	}

	if user.Role == models.RoleSuperAdmin && user.Active {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return s.storeErr(op, err)
	}

	s.log.Info("admin user deleted", slog.String("op", op), slog.String("username", user.Username), slog.String("by", actor))

	return nil
}

func (s *UserService) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.repo.CountByRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("service.UserService.ensureAnotherSuperAdmin: %w", err)
	}
	if n <= 1 {
		return apperr.Conflict("at least one active superadmin must remain")
	}

	return nil
}

func (s *UserService) get(ctx context.Context, id uuid.UUID) (models.AdminUser, error) {
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return models.AdminUser{}, s.storeErr("service.UserService.get", err)
	}

	return user, nil
}

func (s *UserService) storeErr(op string, err error) error {
	if errors.Is(err, storage.ErrUserNotFound) {
		return apperr.NotFound("user not found")
	}

	s.log.Error("user store failed", slog.String("op", op), sl.Err(err))

	return fmt.Errorf("%s: %w", op, err)
}
