package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/jwt"
	"photo_studio/internal/messaging"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/storage/kv"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendOTP(ctx context.Context, to, code string, ttl time.Duration) (messaging.Channel, error) {
	args := m.Called(ctx, to, code, ttl)
	return args.Get(0).(messaging.Channel), args.Error(1)
}

type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) CreateGallery(ctx context.Context, gallery *models.Gallery) error {
	args := m.Called(ctx, gallery)
	return args.Error(0)
}

func (m *MockGalleryRepository) GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleryByShareLink(ctx context.Context, shareLink string) (models.Gallery, error) {
	args := m.Called(ctx, shareLink)
	return args.Get(0).(models.Gallery), args.Error(1)
}

func (m *MockGalleryRepository) GetGalleries(ctx context.Context, filter repository.GalleryFilter) ([]models.Gallery, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Gallery), args.Int(1), args.Error(2)
}

func (m *MockGalleryRepository) SaveGallery(ctx context.Context, gallery *models.Gallery) error {
	args := m.Called(ctx, gallery)
	return args.Error(0)
}

func (m *MockGalleryRepository) IncrementViews(ctx context.Context, id uuid.UUID, at time.Time) (int, error) {
	args := m.Called(ctx, id, at)
	return args.Int(0), args.Error(1)
}

func (m *MockGalleryRepository) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGalleryRepository) GalleryClients(ctx context.Context) ([]models.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Client), args.Error(1)
}

const testSecret = "secret"

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newTestService(t *testing.T, echo bool) (*OTPService, *MockNotifier, *MockGalleryRepository, *clock) {
	t.Helper()

	notifier := new(MockNotifier)
	galleries := new(MockGalleryRepository)
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	s := NewOTPService(slog.Default(), kv.NewMemory(time.Minute), notifier, galleries, Config{
		TTL:         10 * time.Minute,
		MaxAttempts: 3,
		EchoCode:    echo,
		TokenSecret: testSecret,
		TokenTTL:    24 * time.Hour,
	})
	s.now = clk.now

	return s, notifier, galleries, clk
}

func TestGenerateCode(t *testing.T) {
	re := regexp.MustCompile(`^\d{6}$`)
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		seen[code] = true
	}

	assert.Greater(t, len(seen), 150)
}

func TestValidateOTP(t *testing.T) {
	ctx := context.Background()
	const phone = "+228 90 12 34 56"

	t.Run("single use", func(t *testing.T) {
		s, _, _, clk := newTestService(t, false)
		require.NoError(t, s.StoreOTP(ctx, phone, "123456", clk.t.Add(10*time.Minute)))

		ok, err := s.ValidateOTP(ctx, phone, "123456")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ValidateOTP(ctx, phone, "123456")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired code is rejected and removed", func(t *testing.T) {
		s, _, _, clk := newTestService(t, false)
		require.NoError(t, s.StoreOTP(ctx, phone, "123456", clk.t.Add(10*time.Minute)))

		clk.t = clk.t.Add(10*time.Minute + time.Millisecond)

		ok, err := s.ValidateOTP(ctx, phone, "123456")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.store.Get(ctx, codeKeyPrefix+"+22890123456")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("valid until the expiry instant", func(t *testing.T) {
		s, _, _, clk := newTestService(t, false)
		require.NoError(t, s.StoreOTP(ctx, phone, "123456", clk.t.Add(10*time.Minute)))

		clk.t = clk.t.Add(10 * time.Minute)

		ok, err := s.ValidateOTP(ctx, phone, "123456")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("new code overwrites the previous one", func(t *testing.T) {
		s, _, _, clk := newTestService(t, false)
		require.NoError(t, s.StoreOTP(ctx, phone, "111111", clk.t.Add(10*time.Minute)))
		require.NoError(t, s.StoreOTP(ctx, phone, "222222", clk.t.Add(10*time.Minute)))

		ok, err := s.ValidateOTP(ctx, phone, "111111")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.ValidateOTP(ctx, phone, "222222")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("formatting of the phone does not matter", func(t *testing.T) {
		s, _, _, clk := newTestService(t, false)
		require.NoError(t, s.StoreOTP(ctx, "+228-90-12-34-56", "123456", clk.t.Add(10*time.Minute)))

		ok, err := s.ValidateOTP(ctx, "+228 (90) 123456", "123456")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("mismatch keeps the code until attempts run out", func(t *testing.T) {
		s, _, _, clk := newTestService(t, false)
		require.NoError(t, s.StoreOTP(ctx, phone, "123456", clk.t.Add(10*time.Minute)))

		for i := 0; i < 2; i++ {
			ok, err := s.ValidateOTP(ctx, phone, "000000")
			require.NoError(t, err)
			assert.False(t, ok)
		}

		ok, err := s.ValidateOTP(ctx, phone, "123456")
		require.NoError(t, err)
		assert.True(t, ok, "code must survive fewer than MaxAttempts mismatches")

		require.NoError(t, s.StoreOTP(ctx, phone, "123456", clk.t.Add(10*time.Minute)))
		for i := 0; i < 3; i++ {
			ok, err := s.ValidateOTP(ctx, phone, "000000")
			require.NoError(t, err)
			assert.False(t, ok)
		}

		ok, err = s.ValidateOTP(ctx, phone, "123456")
		require.NoError(t, err)
		assert.False(t, ok, "code must be burned after MaxAttempts mismatches")
	})

	t.Run("unknown phone", func(t *testing.T) {
		s, _, _, _ := newTestService(t, false)

		ok, err := s.ValidateOTP(ctx, phone, "123456")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("echo mode returns the stored code", func(t *testing.T) {
		s, notifier, _, _ := newTestService(t, true)
		notifier.On("SendOTP", ctx, "90123456", mock.AnythingOfType("string"), 10*time.Minute).
			Return(messaging.ChannelWhatsApp, nil).Once()

		code, err := s.SendOTP(ctx, "90123456")
		require.NoError(t, err)
		require.Len(t, code, 6)

		ok, err := s.ValidateOTP(ctx, "90123456", code)
		require.NoError(t, err)
		assert.True(t, ok)
		notifier.AssertExpectations(t)
	})

	t.Run("code hidden without echo mode", func(t *testing.T) {
		s, notifier, _, _ := newTestService(t, false)
		notifier.On("SendOTP", ctx, "90123456", mock.AnythingOfType("string"), 10*time.Minute).
			Return(messaging.ChannelSMS, nil).Once()

		code, err := s.SendOTP(ctx, "90123456")
		require.NoError(t, err)
		assert.Empty(t, code)
	})

	t.Run("invalid phone", func(t *testing.T) {
		s, notifier, _, _ := newTestService(t, false)

		_, err := s.SendOTP(ctx, "abc")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		notifier.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delivery failure removes the code", func(t *testing.T) {
		s, notifier, _, _ := newTestService(t, true)

		var issued string
		notifier.On("SendOTP", ctx, "90123456", mock.AnythingOfType("string"), 10*time.Minute).
			Run(func(args mock.Arguments) { issued = args.String(2) }).
			Return(messaging.Channel(""), errors.New("provider down")).Once()

		_, err := s.SendOTP(ctx, "90123456")
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

		ok, err := s.ValidateOTP(ctx, "90123456", issued)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()
	galleryID := uuid.New()
	gallery := models.Gallery{
		ID:        galleryID,
		ShareLink: "abcdef0123456789abcdef0123456789",
		Client:    models.ClientInfo{Phone: "+228 90 12 34 56"},
	}

	tests := []struct {
		name       string
		phone      string
		code       string
		galleryRef string
		mockSetup  func(g *MockGalleryRepository)
		wantKind   apperr.Kind
		wantErr    bool
	}{
		{
			name:       "gallery by share link",
			phone:      "90123456",
			code:       "123456",
			galleryRef: gallery.ShareLink,
			mockSetup: func(g *MockGalleryRepository) {
				g.On("GetGalleryByShareLink", ctx, gallery.ShareLink).Return(gallery, nil).Once()
			},
		},
		{
			name:       "gallery by id",
			phone:      "90123456",
			code:       "123456",
			galleryRef: galleryID.String(),
			mockSetup: func(g *MockGalleryRepository) {
				g.On("GetGalleryByID", ctx, galleryID).Return(gallery, nil).Once()
			},
		},
		{
			name:      "no gallery reference",
			phone:     "90123456",
			code:      "123456",
			mockSetup: func(g *MockGalleryRepository) {},
		},
		{
			name:      "wrong code",
			phone:     "90123456",
			code:      "654321",
			mockSetup: func(g *MockGalleryRepository) {},
			wantErr:   true,
			wantKind:  apperr.KindAuthentication,
		},
		{
			name:       "unknown gallery",
			phone:      "90123456",
			code:       "123456",
			galleryRef: "nope",
			mockSetup: func(g *MockGalleryRepository) {
				g.On("GetGalleryByShareLink", ctx, "nope").Return(models.Gallery{}, storage.ErrGalleryNotFound).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindNotFound,
		},
		{
			name:       "phone does not own gallery",
			phone:      "91000000",
			code:       "123456",
			galleryRef: gallery.ShareLink,
			mockSetup: func(g *MockGalleryRepository) {
				g.On("GetGalleryByShareLink", ctx, gallery.ShareLink).Return(gallery, nil).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindAuthentication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, galleries, clk := newTestService(t, false)
			tt.mockSetup(galleries)
			require.NoError(t, s.StoreOTP(ctx, tt.phone, "123456", clk.t.Add(10*time.Minute)))

			access, err := s.VerifyOTP(ctx, tt.phone, tt.code, tt.galleryRef)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, access.Token)
			assert.Equal(t, clk.t.Add(24*time.Hour), access.ExpiresAt)

			if tt.galleryRef != "" {
				assert.Equal(t, galleryID.String(), access.GalleryID)
			}

			galleries.AssertExpectations(t)
		})
	}
}

func TestVerifyOTP_TokenClaims(t *testing.T) {
	ctx := context.Background()
	s, _, _, _ := newTestService(t, false)
	// tokens must verify against the wall clock
	s.now = time.Now

	require.NoError(t, s.StoreOTP(ctx, "90123456", "123456", time.Now().Add(time.Minute)))

	access, err := s.VerifyOTP(ctx, "90123456", "123456", "")
	require.NoError(t, err)

	claims, err := jwt.ParseGalleryToken(access.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "90123456", claims.Phone)
}
