package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.db
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Storage) Stop() {
	s.db.Close()
}

// Migrate creates the schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgresql.Migrate"

	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Galleries, bookings and settings are JSONB documents; the scalar columns next to
// them mirror document fields that queries filter or sort on.
const Schema = `
CREATE TABLE IF NOT EXISTS galleries (
	id           UUID PRIMARY KEY,
	share_link   TEXT NOT NULL UNIQUE,
	status       TEXT NOT NULL,
	client_phone TEXT NOT NULL,
	client_name  TEXT NOT NULL,
	expires_at   TIMESTAMPTZ,
	version      BIGINT NOT NULL DEFAULT 1,
	doc          JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS galleries_status_idx ON galleries (status);
CREATE INDEX IF NOT EXISTS galleries_client_phone_idx ON galleries (client_phone);

CREATE TABLE IF NOT EXISTS booking_counters (
	year INT PRIMARY KEY,
	seq  INT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookings (
	id             UUID PRIMARY KEY,
	booking_number TEXT NOT NULL UNIQUE,
	status         TEXT NOT NULL,
	client_phone   TEXT NOT NULL,
	scheduled_date TIMESTAMPTZ NOT NULL,
	doc            JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status);
CREATE INDEX IF NOT EXISTS bookings_scheduled_date_idx ON bookings (scheduled_date);

CREATE TABLE IF NOT EXISTS admin_users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	active        BOOLEAN NOT NULL DEFAULT TRUE,
	last_login    TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
