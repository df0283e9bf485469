package repository

import (
	"context"
	"errors"
	"fmt"

	"photo_studio/internal/storage/postgresql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

type Repository struct {
	storage  *postgresql.Storage
	User     UserRepository
	Gallery  GalleryRepository
	Booking  BookingRepository
	Settings SettingsRepository
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	storage, err := postgresql.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	r := New(storage.Pool())
	r.storage = storage

	return r, nil
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		User:     NewUserRepository(db),
		Gallery:  NewGalleryRepo(db),
		Booking:  NewBookingRepo(db),
		Settings: NewSettingsRepo(db),
	}
}

func (r *Repository) Migrate(ctx context.Context) error {
	return r.storage.Migrate(ctx)
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.storage.HealthCheck(ctx)
}

func (r *Repository) Close() {
	if r.storage != nil {
		r.storage.Stop()
	}
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func pagination(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
