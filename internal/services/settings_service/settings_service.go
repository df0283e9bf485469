package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/lib/phone"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/transport/http/dto"
)

type SettingsService struct {
	log      *slog.Logger
	repo     repository.SettingsRepository
	defaults models.Settings
	now      func() time.Time
}

// NewSettingsService serves defaults until an admin saves the settings once.
func NewSettingsService(log *slog.Logger, repo repository.SettingsRepository, defaults models.Settings) *SettingsService {
	return &SettingsService{
		log:      log,
		repo:     repo,
		defaults: defaults,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	const op = "service.SettingsService.Get"

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSettingsNotFound) {
			return s.defaults, nil
		}
		s.log.Error("failed to load settings", slog.String("op", op), sl.Err(err))

		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}

	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (models.Settings, error) {
	const op = "service.SettingsService.Update"

	settings, err := s.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&settings.StudioName, req.StudioName)
	set(&settings.Tagline, req.Tagline)
	set(&settings.ContactEmail, req.ContactEmail)
	set(&settings.Address, req.Address)
	set(&settings.WatermarkText, req.WatermarkText)

	if req.ContactPhone != nil {
		if *req.ContactPhone != "" && !phone.Valid(*req.ContactPhone) {
			return models.Settings{}, apperr.Validation("invalid contact phone number")
		}
		settings.ContactPhone = strings.TrimSpace(*req.ContactPhone)
	}
	if req.Currency != nil {
		settings.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.SocialLinks != nil {
		settings.SocialLinks = req.SocialLinks
	}

	if settings.StudioName == "" {
		return models.Settings{}, apperr.Validation("studio name is required")
	}

	settings.UpdatedAt = s.now()

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		s.log.Error("failed to save settings", slog.String("op", op), sl.Err(err))

		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("settings updated", slog.String("op", op))

	return settings, nil
}
