package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/imaging"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/metrics"

	"github.com/google/uuid"
)

// ImageStore is the CDN: it keeps one original per photo and renders variants from
// transformation descriptors.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder, publicID string) (imaging.Asset, error)
	URL(publicID, transformation string) (string, error)
	Delete(ctx context.Context, publicID string) error
}

type MediaService struct {
	log           *slog.Logger
	store         ImageStore
	defaultFolder string
	defaults      models.Watermark
}

func NewMediaService(log *slog.Logger, store ImageStore, defaultFolder string, defaults models.Watermark) *MediaService {
	return &MediaService{
		log:           log,
		store:         store,
		defaultFolder: defaultFolder,
		defaults:      defaults,
	}
}

// PublicWatermark pins the overlay to the center at the studio opacity, whatever the
// caller asked for. Only text and font size are taken from the request.
func (s *MediaService) PublicWatermark(requested models.Watermark) models.Watermark {
	w := models.Watermark{
		Text:     requested.Text,
		FontSize: requested.FontSize,
		Opacity:  s.defaults.Opacity,
		Position: models.PositionCenter,
	}
	if strings.TrimSpace(w.Text) == "" {
		w.Text = s.defaults.Text
	}
	if w.FontSize <= 0 {
		w.FontSize = s.defaults.FontSize
	}

	return w
}

// UploadWatermarked stores the original once and returns the watermarked preview,
// clean download and thumbnail URLs derived from it. The overlay always goes through
// PublicWatermark. Nothing is returned when the upload fails.
func (s *MediaService) UploadWatermarked(ctx context.Context, input models.ImageUpload) (models.UploadedImage, error) {
	const op = "media_service.UploadWatermarked"

	log := s.log.With(
		slog.String("op", op),
		slog.String("filename", input.Filename),
		slog.Int("size", len(input.Data)),
	)

	log.Info("upload image")

	if err := input.Validate(); err != nil {
		log.Info("invalid upload", sl.Err(err))

		var verr *models.MediaValidationError
		if errors.As(err, &verr) {
			return models.UploadedImage{}, apperr.Validation("invalid upload").WithDetails(verr.Errors)
		}
		return models.UploadedImage{}, apperr.Wrap(apperr.KindValidation, err.Error(), err)
	}

	watermark := s.PublicWatermark(input.Watermark)

	folder := input.Folder
	if folder == "" {
		folder = s.defaultFolder
	}

	publicID := imaging.PublicID(input.Filename, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])

	asset, err := s.store.Upload(ctx, input.Data, folder, publicID)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		log.Error("failed to upload image", sl.Err(err))

		return models.UploadedImage{}, apperr.Upstream("image upload failed", err)
	}

	out := models.UploadedImage{
		PublicID:    asset.PublicID,
		OriginalURL: asset.URL,
		Width:       asset.Width,
		Height:      asset.Height,
		Size:        asset.Bytes,
		Format:      asset.Format,
	}

	variants := []struct {
		dst            *string
		transformation string
	}{
		{&out.WatermarkedURL, imaging.WatermarkTransformation(watermark)},
		{&out.CleanURL, imaging.CleanTransformation()},
		{&out.ThumbnailURL, imaging.ThumbnailTransformation()},
	}
	for _, v := range variants {
		u, err := s.store.URL(asset.PublicID, v.transformation)
		if err != nil {
			metrics.ImageUploads.WithLabelValues("error").Inc()
			log.Error("failed to derive variant url", sl.Err(err))

			return models.UploadedImage{}, apperr.Upstream("image upload failed", fmt.Errorf("%s: %w", op, err))
		}
		*v.dst = u
	}

	metrics.ImageUploads.WithLabelValues("ok").Inc()
	log.Info("image uploaded", slog.String("public_id", asset.PublicID))

	return out, nil
}

func (s *MediaService) Delete(ctx context.Context, publicID string) error {
	const op = "media_service.Delete"

	if err := s.store.Delete(ctx, publicID); err != nil {
		s.log.Warn("failed to delete image", slog.String("op", op), slog.String("public_id", publicID), sl.Err(err))

		return apperr.Upstream("image delete failed", err)
	}

	return nil
}
