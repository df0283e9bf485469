package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/storage/postgresql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testCtx = context.Background()

func setupTestDB(t *testing.T) *pgxpool.Pool {
	if testing.Short() {
		t.Skip("integration test, needs docker")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf(
		"postgres://test:test@%s:%s/testdb?sslmode=disable",
		host,
		port.Port(),
	)

	pool, err := pgxpool.Connect(ctx, connStr)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, postgresql.Schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

func newGallery(shareLink, clientPhone string) *models.Gallery {
	now := time.Now().UTC().Truncate(time.Millisecond)

	return &models.Gallery{
		ID:        uuid.New(),
		Title:     "Mariage Ama & Kofi",
		ShareLink: shareLink,
		Client: models.ClientInfo{
			Name:  "Ama",
			Phone: clientPhone,
		},
		Photos: []models.Photo{
			{ID: uuid.New(), PublicID: "galleries/a", Order: 0},
			{ID: uuid.New(), PublicID: "galleries/b", Order: 1},
		},
		Settings: models.GallerySettings{
			DownloadLimit:  20,
			AllowDownloads: true,
		},
		Status:    models.GalleryStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepositories(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.New(pool)

	t.Run("gallery round trip and share link lookup", func(t *testing.T) {
		g := newGallery("link-roundtrip", "+228 90 12 34 56")
		require.NoError(t, repo.Gallery.CreateGallery(testCtx, g))
		assert.Equal(t, int64(1), g.Version)

		got, err := repo.Gallery.GetGalleryByShareLink(testCtx, "link-roundtrip")
		require.NoError(t, err)
		assert.Equal(t, g.ID, got.ID)
		assert.Len(t, got.Photos, 2)
		assert.Equal(t, int64(1), got.Version)

		_, err = repo.Gallery.GetGalleryByShareLink(testCtx, "missing")
		assert.ErrorIs(t, err, storage.ErrGalleryNotFound)

		dup := newGallery("link-roundtrip", "90123456")
		assert.ErrorIs(t, repo.Gallery.CreateGallery(testCtx, dup), storage.ErrGalleryExists)
	})

	t.Run("save detects stale versions", func(t *testing.T) {
		g := newGallery("link-cas", "90123456")
		require.NoError(t, repo.Gallery.CreateGallery(testCtx, g))

		first, err := repo.Gallery.GetGalleryByID(testCtx, g.ID)
		require.NoError(t, err)
		second, err := repo.Gallery.GetGalleryByID(testCtx, g.ID)
		require.NoError(t, err)

		first.Stats.TotalDownloads = 2
		require.NoError(t, repo.Gallery.SaveGallery(testCtx, &first))
		assert.Equal(t, int64(2), first.Version)

		second.Stats.TotalDownloads = 5
		assert.ErrorIs(t, repo.Gallery.SaveGallery(testCtx, &second), storage.ErrVersionConflict)

		got, err := repo.Gallery.GetGalleryByID(testCtx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Stats.TotalDownloads)
	})

	t.Run("concurrent view increments are not lost", func(t *testing.T) {
		g := newGallery("link-views", "90123456")
		require.NoError(t, repo.Gallery.CreateGallery(testCtx, g))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Gallery.IncrementViews(testCtx, g.ID, time.Now())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.Gallery.GetGalleryByID(testCtx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Stats.Views)
		assert.NotNil(t, got.Stats.LastViewedAt)
		assert.Equal(t, int64(11), got.Version)
	})

	t.Run("gallery list filters by status", func(t *testing.T) {
		archived := newGallery("link-archived", "91000000")
		archived.Status = models.GalleryStatusArchived
		require.NoError(t, repo.Gallery.CreateGallery(testCtx, archived))

		list, total, err := repo.Gallery.GetGalleries(testCtx, repository.GalleryFilter{
			Statuses: []models.GalleryStatus{models.GalleryStatusArchived},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, list, 1)
		assert.Equal(t, archived.ID, list[0].ID)
	})

	t.Run("booking numbers are sequential per year", func(t *testing.T) {
		for want := 1; want <= 3; want++ {
			seq, err := repo.Booking.NextBookingSeq(testCtx, 2026)
			require.NoError(t, err)
			assert.Equal(t, want, seq)
		}

		seq, err := repo.Booking.NextBookingSeq(testCtx, 2027)
		require.NoError(t, err)
		assert.Equal(t, 1, seq)
	})

	t.Run("booking crud", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		b := &models.Booking{
			ID:            uuid.New(),
			BookingNumber: "BK-2026-0100",
			Client:        models.ClientInfo{Name: "Kofi", Phone: "90123456"},
			ServiceType:   "wedding",
			ScheduledDate: now.Add(72 * time.Hour),
			Pricing:       models.Pricing{BasePrice: 150000, Total: 150000, Paid: 50000, Currency: "XOF"},
			Status:        models.BookingStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		require.NoError(t, repo.Booking.CreateBooking(testCtx, b))

		b.Status = models.BookingStatusConfirmed
		require.NoError(t, repo.Booking.UpdateBooking(testCtx, b))

		got, err := repo.Booking.GetBookingByID(testCtx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, got.Status)

		clients, err := repo.Booking.BookingClients(testCtx)
		require.NoError(t, err)
		require.NotEmpty(t, clients)
		assert.Equal(t, int64(50000), clients[0].TotalSpent)

		require.NoError(t, repo.Booking.DeleteBooking(testCtx, b.ID))
		_, err = repo.Booking.GetBookingByID(testCtx, b.ID)
		assert.ErrorIs(t, err, storage.ErrBookingNotFound)
	})

	t.Run("admin users", func(t *testing.T) {
		now := time.Now().UTC()
		u := models.AdminUser{
			ID:           uuid.New(),
			Username:     "alice",
			PasswordHash: []byte("$2a$10$hash"),
			Role:         models.RoleSuperAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, repo.User.SaveUser(testCtx, u))
		assert.ErrorIs(t, repo.User.SaveUser(testCtx, u), storage.ErrUserExists)

		got, err := repo.User.UserByUsername(testCtx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
		assert.Nil(t, got.LastLogin)

		require.NoError(t, repo.User.UpdateLastLogin(testCtx, u.ID, now))
		got, err = repo.User.UserByID(testCtx, u.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.LastLogin)

		n, err := repo.User.CountByRole(testCtx, models.RoleSuperAdmin)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = repo.User.UserByUsername(testCtx, "bob")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})

	t.Run("settings upsert", func(t *testing.T) {
		_, err := repo.Settings.GetSettings(testCtx)
		assert.ErrorIs(t, err, storage.ErrSettingsNotFound)

		s := models.Settings{StudioName: "Studio Lumière", Currency: "XOF", UpdatedAt: time.Now().UTC()}
		require.NoError(t, repo.Settings.SaveSettings(testCtx, s))

		s.Tagline = "Vos plus beaux souvenirs"
		require.NoError(t, repo.Settings.SaveSettings(testCtx, s))

		got, err := repo.Settings.GetSettings(testCtx)
		require.NoError(t, err)
		assert.Equal(t, "Vos plus beaux souvenirs", got.Tagline)
	})
}
