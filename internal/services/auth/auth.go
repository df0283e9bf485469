package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/jwt"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	legacyUsername = "admin"
	legacyPassword = "admin123"
)

type UserProvider interface {
	UserByUsername(ctx context.Context, username string) (models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Config struct {
	Secret   string
	TokenTTL time.Duration
	// LegacyFallback accepts admin/admin123 when no "admin" account exists yet.
	LegacyFallback bool
}

type Auth struct {
	log         *slog.Logger
	usrProvider UserProvider
	cfg         Config
	now         func() time.Time
}

func New(log *slog.Logger, userProvider UserProvider, cfg Config) *Auth {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}

	return &Auth{
		log:         log,
		usrProvider: userProvider,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (a *Auth) Login(ctx context.Context, username, password string) (models.Session, error) {
	const op = "auth.Login"

	username = strings.ToLower(strings.TrimSpace(username))

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login user")

	if username == "" || password == "" {
		return models.Session{}, apperr.Validation("username and password are required")
	}

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Error("failed to get user", sl.Err(err))

			return models.Session{}, fmt.Errorf("%s: %w", op, err)
		}

		if a.cfg.LegacyFallback && username == legacyUsername && password == legacyPassword {
			log.Warn("legacy admin credentials used, create a real account")

			return a.session(username, models.RoleAdmin)
		}

		log.Info("user not found")

		return models.Session{}, apperr.Wrap(apperr.KindAuthentication, "invalid credentials", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return models.Session{}, apperr.Wrap(apperr.KindAuthentication, "invalid credentials", ErrInvalidCredentials)
	}

	if !user.Active {
		log.Info("inactive account")

		return models.Session{}, apperr.Authentication("account is disabled")
	}

	if err := a.usrProvider.UpdateLastLogin(ctx, user.ID, a.now()); err != nil {
		log.Warn("failed to record last login", sl.Err(err))
	}

	log.Info("user logged in successfully")

	return a.session(user.Username, user.Role)
}

func (a *Auth) session(username string, role models.Role) (models.Session, error) {
	const op = "auth.session"

	now := a.now()

	token, err := jwt.NewAdminToken(username, role, a.cfg.Secret, now, a.cfg.TokenTTL)
	if err != nil {
		a.log.Error("failed to generate token", slog.String("op", op), sl.Err(err))

		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Session{
		Token:     token,
		Username:  username,
		Role:      role,
		ExpiresAt: now.Add(a.cfg.TokenTTL),
	}, nil
}

// ParseToken validates an admin token and returns its claims.
func (a *Auth) ParseToken(token string) (*jwt.AdminClaims, error) {
	claims, err := jwt.ParseAdminToken(token, a.cfg.Secret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindAuthentication, "invalid or expired token", err)
	}

	return claims, nil
}
