package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/storage"
	"photo_studio/internal/transport/http/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetSettings(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockSettingsRepository) SaveSettings(ctx context.Context, settings models.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

var defaults = models.Settings{StudioName: "Studio Lumière", WatermarkText: "PREVIEW", Currency: "XOF"}

func ptr(s string) *string { return &s }

func TestSettingsService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults before the first save", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		repo.On("GetSettings", ctx).Return(models.Settings{}, storage.ErrSettingsNotFound).Once()

		got, err := NewSettingsService(slog.Default(), repo, defaults).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, defaults, got)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		repo.On("GetSettings", ctx).Return(models.Settings{}, errors.New("db down")).Once()

		_, err := NewSettingsService(slog.Default(), repo, defaults).Get(ctx)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})
}

func TestSettingsService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      dto.UpdateSettingsRequest
		save     bool
		wantKind apperr.Kind
		check    func(t *testing.T, s models.Settings)
	}{
		{
			name: "partial update keeps other fields",
			req:  dto.UpdateSettingsRequest{ContactPhone: ptr("+228 90 00 00 00"), Currency: ptr("eur")},
			save: true,
			check: func(t *testing.T, s models.Settings) {
				assert.Equal(t, "Studio Lumière", s.StudioName)
				assert.Equal(t, "+228 90 00 00 00", s.ContactPhone)
				assert.Equal(t, "EUR", s.Currency)
				assert.False(t, s.UpdatedAt.IsZero())
			},
		},
		{
			name:     "blank studio name",
			req:      dto.UpdateSettingsRequest{StudioName: ptr("   ")},
			wantKind: apperr.KindValidation,
		},
		{
			name:     "invalid phone",
			req:      dto.UpdateSettingsRequest{ContactPhone: ptr("call me")},
			wantKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSettingsRepository)
			repo.On("GetSettings", ctx).Return(models.Settings{}, storage.ErrSettingsNotFound).Once()
			if tt.save {
				repo.On("SaveSettings", ctx, mock.Anything).Return(nil).Once()
			}

			got, err := NewSettingsService(slog.Default(), repo, defaults).Update(ctx, tt.req)
			if !tt.save {
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				repo.AssertNotCalled(t, "SaveSettings", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			tt.check(t, got)
			repo.AssertExpectations(t)
		})
	}
}
