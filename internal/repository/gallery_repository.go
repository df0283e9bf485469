package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/phone"
	"photo_studio/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type GalleryRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: builder(),
	}
}

func (r *GalleryRepo) CreateGallery(ctx context.Context, gallery *models.Gallery) error {
	const op = "repository.GalleryRepo.CreateGallery"

	doc, err := json.Marshal(gallery)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Insert("galleries").
		Columns(
			"id",
			"share_link",
			"status",
			"client_phone",
			"client_name",
			"expires_at",
			"version",
			"doc",
			"created_at",
			"updated_at",
		).
		Values(
			gallery.ID,
			gallery.ShareLink,
			string(gallery.Status),
			phone.Normalize(gallery.Client.Phone),
			gallery.Client.Name,
			gallery.ExpiresAt,
			1,
			string(doc),
			gallery.CreatedAt,
			gallery.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrGalleryExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	gallery.Version = 1

	return nil
}

func (r *GalleryRepo) GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryByID"

	g, err := r.getOne(ctx, sq.Eq{"id": id})
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (r *GalleryRepo) GetGalleryByShareLink(ctx context.Context, shareLink string) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryByShareLink"

	g, err := r.getOne(ctx, sq.Eq{"share_link": shareLink})
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return g, nil
}

func (r *GalleryRepo) getOne(ctx context.Context, where sq.Sqlizer) (models.Gallery, error) {
	query, args, err := r.sb.Select("version", "doc").
		From("galleries").
		Where(where).
		ToSql()
	if err != nil {
		return models.Gallery{}, err
	}

	g, err := scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Gallery{}, storage.ErrGalleryNotFound
		}
		return models.Gallery{}, err
	}

	return g, nil
}

func (r *GalleryRepo) GetGalleries(ctx context.Context, filter GalleryFilter) ([]models.Gallery, int, error) {
	const op = "repository.GalleryRepo.GetGalleries"

	page, perPage := pagination(filter.Page, filter.PerPage)

	where := sq.And{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, sq.Expr("status = ANY(?)", pq.Array(statuses)))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"client_name": like},
			sq.ILike{"client_phone": like},
			sq.Expr("doc->>'title' ILIKE ?", like),
		})
	}

	countQuery, countArgs, err := r.sb.Select("COUNT(*)").
		From("galleries").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Select("version", "doc").
		From("galleries").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	galleries := make([]models.Gallery, 0, perPage)
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		galleries = append(galleries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return galleries, total, nil
}

func (r *GalleryRepo) SaveGallery(ctx context.Context, gallery *models.Gallery) error {
	const op = "repository.GalleryRepo.SaveGallery"

	doc, err := json.Marshal(gallery)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Update("galleries").
		Set("share_link", gallery.ShareLink).
		Set("status", string(gallery.Status)).
		Set("client_phone", phone.Normalize(gallery.Client.Phone)).
		Set("client_name", gallery.Client.Name).
		Set("expires_at", gallery.ExpiresAt).
		Set("version", gallery.Version+1).
		Set("doc", string(doc)).
		Set("updated_at", gallery.UpdatedAt).
		Where(sq.Eq{"id": gallery.ID, "version": gallery.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrGalleryExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM galleries WHERE id = $1)`, gallery.ID).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return fmt.Errorf("%s: %w", op, storage.ErrVersionConflict)
	}

	gallery.Version++

	return nil
}

// IncrementViews bumps the view counter in place, so concurrent viewers never lose
// an increment. The version moves too, which makes pending read-modify-write saves retry.
func (r *GalleryRepo) IncrementViews(ctx context.Context, id uuid.UUID, at time.Time) (int, error) {
	const op = "repository.GalleryRepo.IncrementViews"

	const query = `
UPDATE galleries
SET doc = jsonb_set(
		jsonb_set(doc, '{statistics,views}', to_jsonb(COALESCE((doc->'statistics'->>'views')::int, 0) + 1)),
		'{statistics,last_viewed_at}', to_jsonb($2::text)
	),
	version = version + 1
WHERE id = $1
RETURNING (doc->'statistics'->>'views')::int`

	var views int
	err := r.db.QueryRow(ctx, query, id, at.UTC().Format(time.RFC3339Nano)).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

func (r *GalleryRepo) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	const op = "repository.GalleryRepo.DeleteGallery"

	query, args, err := r.sb.Delete("galleries").
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
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

func (r *GalleryRepo) GalleryClients(ctx context.Context) ([]models.Client, error) {
	const op = "repository.GalleryRepo.GalleryClients"

	query, args, err := r.sb.Select(
		"client_phone",
		"MAX(client_name)",
		"MAX(doc->'client'->>'email')",
		"COUNT(*)",
		"MAX(updated_at)",
	).
		From("galleries").
		GroupBy("client_phone").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var (
			c     models.Client
			email *string
			last  time.Time
		)
		if err := rows.Scan(&c.Phone, &c.Name, &email, &c.Galleries, &last); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if email != nil {
			c.Email = *email
		}
		c.LastActivity = &last
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func scanGallery(row pgx.Row) (models.Gallery, error) {
	var (
		version int64
		doc     []byte
	)
	if err := row.Scan(&version, &doc); err != nil {
		return models.Gallery{}, err
	}

	var g models.Gallery
	if err := json.Unmarshal(doc, &g); err != nil {
		return models.Gallery{}, fmt.Errorf("decode gallery document: %w", err)
	}
	g.Version = version

	return g, nil
}
