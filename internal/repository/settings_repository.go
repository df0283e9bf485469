package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// the studio has a single settings document
const studioSettingsKey = "studio"

type SettingsRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewSettingsRepo(db *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{
		db: db,
		sb: builder(),
	}
}

func (r *SettingsRepo) GetSettings(ctx context.Context) (models.Settings, error) {
	const op = "repository.SettingsRepo.GetSettings"

	query, args, err := r.sb.Select("doc").
		From("settings").
		Where(sq.Eq{"key": studioSettingsKey}).
		ToSql()
	if err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}

	var doc []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Settings{}, fmt.Errorf("%s: %w", op, storage.ErrSettingsNotFound)
		}
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}

	var s models.Settings
	if err := json.Unmarshal(doc, &s); err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (r *SettingsRepo) SaveSettings(ctx context.Context, settings models.Settings) error {
	const op = "repository.SettingsRepo.SaveSettings"

	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Insert("settings").
		Columns("key", "doc", "updated_at").
		Values(studioSettingsKey, string(doc), settings.UpdatedAt).
		Suffix("ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
