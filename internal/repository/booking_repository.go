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

type BookingRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewBookingRepo(db *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{
		db: db,
		sb: builder(),
	}
}

// NextBookingSeq hands out the next number of the year. The upsert holds the counter
// row lock, so two concurrent bookings never get the same sequence.
func (r *BookingRepo) NextBookingSeq(ctx context.Context, year int) (int, error) {
	const op = "repository.BookingRepo.NextBookingSeq"

	const query = `
INSERT INTO booking_counters (year, seq) VALUES ($1, 1)
ON CONFLICT (year) DO UPDATE SET seq = booking_counters.seq + 1
RETURNING seq`

	var seq int
	if err := r.db.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return seq, nil
}

func (r *BookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	const op = "repository.BookingRepo.CreateBooking"

	doc, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Insert("bookings").
		Columns(
			"id",
			"booking_number",
			"status",
			"client_phone",
			"scheduled_date",
			"doc",
			"created_at",
			"updated_at",
		).
		Values(
			booking.ID,
			booking.BookingNumber,
			string(booking.Status),
			phone.Normalize(booking.Client.Phone),
			booking.ScheduledDate,
			string(doc),
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrBookingExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *BookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	const op = "repository.BookingRepo.GetBookingByID"

	query, args, err := r.sb.Select("doc").
		From("bookings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Booking{}, fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
		}
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (r *BookingRepo) GetBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, int, error) {
	const op = "repository.BookingRepo.GetBookings"

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
			sq.ILike{"booking_number": like},
			sq.ILike{"client_phone": like},
			sq.Expr("doc->'client'->>'name' ILIKE ?", like),
		})
	}
	if filter.From != nil {
		where = append(where, sq.GtOrEq{"scheduled_date": *filter.From})
	}
	if filter.To != nil {
		where = append(where, sq.Lt{"scheduled_date": *filter.To})
	}

	countQuery, countArgs, err := r.sb.Select("COUNT(*)").
		From("bookings").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Select("doc").
		From("bookings").
		Where(where).
		OrderBy("scheduled_date DESC").
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

	bookings := make([]models.Booking, 0, perPage)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, total, nil
}

func (r *BookingRepo) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	const op = "repository.BookingRepo.UpdateBooking"

	doc, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Update("bookings").
		Set("status", string(booking.Status)).
		Set("client_phone", phone.Normalize(booking.Client.Phone)).
		Set("scheduled_date", booking.ScheduledDate).
		Set("doc", string(doc)).
		Set("updated_at", booking.UpdatedAt).
		Where(sq.Eq{"id": booking.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}

	return nil
}

func (r *BookingRepo) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	const op = "repository.BookingRepo.DeleteBooking"

	query, args, err := r.sb.Delete("bookings").
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
		return fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}

	return nil
}

func (r *BookingRepo) BookingClients(ctx context.Context) ([]models.Client, error) {
	const op = "repository.BookingRepo.BookingClients"

	query, args, err := r.sb.Select(
		"client_phone",
		"MAX(doc->'client'->>'name')",
		"MAX(doc->'client'->>'email')",
		"COUNT(*)",
		"COALESCE(SUM((doc->'pricing'->>'paid')::bigint), 0)",
		"MAX(updated_at)",
	).
		From("bookings").
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
			c           models.Client
			name, email *string
			last        time.Time
		)
		if err := rows.Scan(&c.Phone, &name, &email, &c.Bookings, &c.TotalSpent, &last); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if name != nil {
			c.Name = *name
		}
		if email != nil {
			c.Email = *email
		}
		c.LastActivity = &last
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func scanBooking(row pgx.Row) (models.Booking, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return models.Booking{}, err
	}

	var b models.Booking
	if err := json.Unmarshal(doc, &b); err != nil {
		return models.Booking{}, fmt.Errorf("decode booking document: %w", err)
	}

	return b, nil
}
