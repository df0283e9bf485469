package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: builder(),
	}
}

var userColumns = []string{
	"id",
	"username",
	"password_hash",
	"role",
	"active",
	"last_login",
	"created_at",
	"updated_at",
}

func (r *UserRepo) SaveUser(ctx context.Context, user models.AdminUser) error {
	const op = "repository.user_repository.SaveUser"

	query, args, err := r.sb.Insert("admin_users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Username,
			string(user.PasswordHash),
			string(user.Role),
			user.Active,
			user.LastLogin,
			user.CreatedAt,
			user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *UserRepo) UserByUsername(ctx context.Context, username string) (models.AdminUser, error) {
	const op = "repository.user_repository.UserByUsername"

	user, err := r.getOne(ctx, sq.Eq{"username": username})
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *UserRepo) UserByID(ctx context.Context, id uuid.UUID) (models.AdminUser, error) {
	const op = "repository.user_repository.UserByID"

	user, err := r.getOne(ctx, sq.Eq{"id": id})
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *UserRepo) getOne(ctx context.Context, where sq.Sqlizer) (models.AdminUser, error) {
	query, args, err := r.sb.Select(userColumns...).
		From("admin_users").
		Where(where).
		ToSql()
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("can't build sql: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AdminUser{}, storage.ErrUserNotFound
		}
		return models.AdminUser{}, err
	}

	return user, nil
}

func (r *UserRepo) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	const op = "repository.user_repository.ListUsers"

	query, args, err := r.sb.Select(userColumns...).
		From("admin_users").
		OrderBy("username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []models.AdminUser
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *UserRepo) UpdateUser(ctx context.Context, user models.AdminUser) error {
	const op = "repository.user_repository.UpdateUser"

	query, args, err := r.sb.Update("admin_users").
		Set("password_hash", string(user.PasswordHash)).
		Set("role", string(user.Role)).
		Set("active", user.Active).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "repository.user_repository.UpdateLastLogin"

	query, args, err := r.sb.Update("admin_users").
		Set("last_login", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *UserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "repository.user_repository.DeleteUser"

	query, args, err := r.sb.Delete("admin_users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	const op = "repository.user_repository.CountByRole"

	query, args, err := r.sb.Select("COUNT(*)").
		From("admin_users").
		Where(sq.Eq{"role": string(role), "active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func scanUser(row pgx.Row) (models.AdminUser, error) {
	var (
		user models.AdminUser
		hash string
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&hash,
		&role,
		&user.Active,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return models.AdminUser{}, err
	}

	user.PasswordHash = []byte(hash)
	user.Role = models.Role(role)

	return user, nil
}
