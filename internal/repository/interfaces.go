package repository

import (
	"context"
	"time"

	"photo_studio/internal/domain/models"

	"github.com/google/uuid"
)

type GalleryFilter struct {
	Statuses []models.GalleryStatus
	Search   string
	Page     int
	PerPage  int
}

type BookingFilter struct {
	Statuses []models.BookingStatus
	Search   string
	From     *time.Time
	To       *time.Time
	Page     int
	PerPage  int
}

type GalleryRepository interface {
	CreateGallery(ctx context.Context, gallery *models.Gallery) error
	GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error)
	GetGalleryByShareLink(ctx context.Context, shareLink string) (models.Gallery, error)
	GetGalleries(ctx context.Context, filter GalleryFilter) ([]models.Gallery, int, error)
	// SaveGallery replaces the stored document when its version still equals
	// gallery.Version and bumps the version on success.
	SaveGallery(ctx context.Context, gallery *models.Gallery) error
	IncrementViews(ctx context.Context, id uuid.UUID, at time.Time) (int, error)
	DeleteGallery(ctx context.Context, id uuid.UUID) error
	GalleryClients(ctx context.Context) ([]models.Client, error)
}

type BookingRepository interface {
	NextBookingSeq(ctx context.Context, year int) (int, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (models.Booking, error)
	GetBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, int, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	BookingClients(ctx context.Context) ([]models.Client, error)
}

type UserRepository interface {
	SaveUser(ctx context.Context, user models.AdminUser) error
	UserByUsername(ctx context.Context, username string) (models.AdminUser, error)
	UserByID(ctx context.Context, id uuid.UUID) (models.AdminUser, error)
	ListUsers(ctx context.Context) ([]models.AdminUser, error)
	UpdateUser(ctx context.Context, user models.AdminUser) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

type SettingsRepository interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
}
