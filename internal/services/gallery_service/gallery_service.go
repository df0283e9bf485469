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
	"photo_studio/internal/messaging"
	"photo_studio/internal/metrics"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// saves that lose an optimistic version race are re-run from a fresh read
const maxSaveAttempts = 3

func errInvalidPhone() error {
	return apperr.Validation("invalid phone number")
}

type Notifier interface {
	GalleryShared(ctx context.Context, g models.Gallery, url string) (messaging.Channel, error)
}

type PhotoUploader interface {
	UploadWatermarked(ctx context.Context, input models.ImageUpload) (models.UploadedImage, error)
	PublicWatermark(requested models.Watermark) models.Watermark
	Delete(ctx context.Context, publicID string) error
}

type Config struct {
	PublicURL            string
	DefaultDownloadLimit int
	DefaultExpiryDays    int
}

type GalleryService struct {
	log      *slog.Logger
	repo     repository.GalleryRepository
	media    PhotoUploader
	notifier Notifier
	cfg      Config
	now      func() time.Time
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository, media PhotoUploader, notifier Notifier, cfg Config) *GalleryService {
	return &GalleryService{
		log:      log,
		repo:     repo,
		media:    media,
		notifier: notifier,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Verify grants access to a gallery by share link when the claimed phone matches the
// gallery's client phone. The view counter moves only after every guard passed.
func (s *GalleryService) Verify(ctx context.Context, shareLink, claimedPhone string) (models.Gallery, error) {
	const op = "service.GalleryService.Verify"

	log := s.log.With(
		slog.String("op", op),
		slog.String("share_link", shareLink),
	)

	if !phone.Valid(claimedPhone) {
		metrics.GalleryVerifications.WithLabelValues("phone_mismatch").Inc()
		return models.Gallery{}, errInvalidPhone()
	}

	g, err := s.byShareLink(ctx, shareLink)
	if err != nil {
		metrics.GalleryVerifications.WithLabelValues("not_found").Inc()
		return models.Gallery{}, err
	}

	now := s.now()
	if err := s.checkAccessible(ctx, &g, now); err != nil {
		metrics.GalleryVerifications.WithLabelValues("forbidden").Inc()
		log.Info("gallery not accessible", slog.String("status", string(g.Status)))

		return models.Gallery{}, err
	}

	if !phone.Match(claimedPhone, g.Client.Phone) {
		metrics.GalleryVerifications.WithLabelValues("phone_mismatch").Inc()
		log.Info("phone mismatch")

		return models.Gallery{}, apperr.Authentication("phone number does not match this gallery")
	}

	views, err := s.repo.IncrementViews(ctx, g.ID, now)
	if err != nil {
		log.Error("failed to record view", sl.Err(err))

		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	g.Stats.Views = views
	g.Stats.LastViewedAt = &now

	metrics.GalleryVerifications.WithLabelValues("ok").Inc()
	log.Info("gallery verified", slog.Int("views", views))

	return g, nil
}

// TrackDownload counts a batch of downloads against the gallery quota. A batch that
// would go over the limit is rejected whole and nothing is written.
func (s *GalleryService) TrackDownload(ctx context.Context, shareLink, claimedPhone string, photoIDs []string) (dto.DownloadResult, error) {
	const op = "service.GalleryService.TrackDownload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("share_link", shareLink),
		slog.Int("batch", len(photoIDs)),
	)

	if len(photoIDs) == 0 {
		return dto.DownloadResult{}, apperr.Validation("no photos to download")
	}
	if !phone.Valid(claimedPhone) {
		return dto.DownloadResult{}, errInvalidPhone()
	}

	g, err := s.mutate(ctx, func() (models.Gallery, error) {
		return s.byShareLink(ctx, shareLink)
	}, func(g *models.Gallery, now time.Time) error {
		if err := s.checkAccessible(ctx, g, now); err != nil {
			return err
		}
		if !phone.Match(claimedPhone, g.Client.Phone) {
			return apperr.Authentication("phone number does not match this gallery")
		}
		if !g.Settings.AllowDownloads {
			return apperr.Authorization("downloads are disabled for this gallery")
		}

		if g.Stats.TotalDownloads+len(photoIDs) > g.Settings.DownloadLimit {
			return apperr.QuotaExceeded("download limit exceeded").WithDetails(dto.DownloadResult{
				TotalDownloads:     g.Stats.TotalDownloads,
				DownloadLimit:      g.Settings.DownloadLimit,
				RemainingDownloads: g.RemainingDownloads(),
			})
		}

		// unknown ids still count toward the quota, they just have no counter of their own
		g.Stats.TotalDownloads += len(photoIDs)
		for _, raw := range photoIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			if i := g.PhotoIndex(id); i >= 0 {
				g.Photos[i].Downloads++
			}
		}

		return nil
	})
	if err != nil {
		metrics.DownloadBatches.WithLabelValues(apperr.KindOf(err).String()).Inc()
		if apperr.KindOf(err) == apperr.KindInternal {
			log.Error("failed to track download", sl.Err(err))
			return dto.DownloadResult{}, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("download rejected", sl.Err(err))

		return dto.DownloadResult{}, err
	}

	metrics.DownloadBatches.WithLabelValues("ok").Inc()
	log.Info("downloads tracked", slog.Int("total", g.Stats.TotalDownloads))

	return dto.DownloadResult{
		TotalDownloads:     g.Stats.TotalDownloads,
		DownloadLimit:      g.Settings.DownloadLimit,
		RemainingDownloads: g.RemainingDownloads(),
	}, nil
}

func (s *GalleryService) LikePhoto(ctx context.Context, shareLink, claimedPhone, photoID string) (int, error) {
	const op = "service.GalleryService.LikePhoto"

	if !phone.Valid(claimedPhone) {
		return 0, errInvalidPhone()
	}

	id, err := uuid.Parse(photoID)
	if err != nil {
		return 0, apperr.Validation("invalid photo id")
	}

	var likes int
	_, err = s.mutate(ctx, func() (models.Gallery, error) {
		return s.byShareLink(ctx, shareLink)
	}, func(g *models.Gallery, now time.Time) error {
		if err := s.checkAccessible(ctx, g, now); err != nil {
			return err
		}
		if !phone.Match(claimedPhone, g.Client.Phone) {
			return apperr.Authentication("phone number does not match this gallery")
		}
		if !g.Settings.AllowLikes {
			return apperr.Authorization("likes are disabled for this gallery")
		}

		i := g.PhotoIndex(id)
		if i < 0 {
			return apperr.NotFound("photo not found")
		}

		g.Photos[i].Likes++
		g.Stats.TotalLikes++
		likes = g.Photos[i].Likes

		return nil
	})
	if err != nil {
		return 0, s.internal(op, err)
	}

	return likes, nil
}

func (s *GalleryService) Create(ctx context.Context, req dto.CreateGalleryRequest) (models.Gallery, error) {
	const op = "service.GalleryService.Create"

	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	log.Info("creating gallery")

	if strings.TrimSpace(req.Title) == "" {
		return models.Gallery{}, apperr.Validation("title is required")
	}
	if !phone.Valid(req.Client.Phone) {
		return models.Gallery{}, apperr.Validation("invalid client phone number")
	}

	now := s.now()

	g := models.Gallery{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Client:      req.Client.ToDomain(),
		Photos:      []models.Photo{},
		Settings: models.GallerySettings{
			DownloadLimit:  s.cfg.DefaultDownloadLimit,
			AllowDownloads: true,
			AllowLikes:     true,
			ShowWatermark:  true,
		},
		Status:    models.GalleryStatusActive,
		ExpiresAt: req.ExpiresAt,
		BookingID: req.BookingID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Settings.Apply(&g.Settings)

	if g.ExpiresAt == nil && s.cfg.DefaultExpiryDays > 0 {
		exp := now.AddDate(0, 0, s.cfg.DefaultExpiryDays)
		g.ExpiresAt = &exp
	}
	if g.PastExpiry(now) {
		return models.Gallery{}, apperr.Validation("expiry date must be in the future")
	}

	// a share link collision is astronomically unlikely, but retry once anyway
	for attempt := 0; ; attempt++ {
		g.ShareLink = NewShareLink()

		err := s.repo.CreateGallery(ctx, &g)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrGalleryExists) && attempt == 0 {
			continue
		}

		log.Error("failed to create gallery", sl.Err(err))

		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery created", slog.String("id", g.ID.String()))

	return g, nil
}

// NewShareLink returns an unguessable 128-bit capability token.
func NewShareLink() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *GalleryService) Get(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	const op = "service.GalleryService.Get"

	g, err := s.byID(ctx, id)
	if err != nil {
		return models.Gallery{}, s.internal(op, err)
	}

	if g.ApplyLazyExpiry(s.now()) {
		s.persistExpiry(ctx, &g)
	}

	return g, nil
}

func (s *GalleryService) List(ctx context.Context, q dto.ListGalleriesQuery) (dto.GalleryList, error) {
	const op = "service.GalleryService.List"

	filter := repository.GalleryFilter{
		Search:  strings.TrimSpace(q.Search),
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	if q.Status != "" && q.Status != "all" {
		status := models.GalleryStatus(q.Status)
		if !status.Valid() {
			return dto.GalleryList{}, apperr.Validation("invalid status filter")
		}
		filter.Statuses = []models.GalleryStatus{status}
	}

	galleries, total, err := s.repo.GetGalleries(ctx, filter)
	if err != nil {
		s.log.Error("failed to list galleries", slog.String("op", op), sl.Err(err))

		return dto.GalleryList{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	for i := range galleries {
		galleries[i].ApplyLazyExpiry(now)
	}

	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return dto.GalleryList{
		Galleries: galleries,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}, nil
}

func (s *GalleryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateGalleryRequest) (models.Gallery, error) {
	const op = "service.GalleryService.Update"

	if req.Client != nil && !phone.Valid(req.Client.Phone) {
		return models.Gallery{}, apperr.Validation("invalid client phone number")
	}

	g, err := s.mutate(ctx, func() (models.Gallery, error) {
		return s.byID(ctx, id)
	}, func(g *models.Gallery, now time.Time) error {
		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return apperr.Validation("title is required")
			}
			g.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			g.Description = *req.Description
		}
		if req.Client != nil {
			g.Client = req.Client.ToDomain()
		}
		req.Settings.Apply(&g.Settings)

		switch {
		case req.ClearExpiry:
			g.ExpiresAt = nil
		case req.ExpiresAt != nil:
			g.ExpiresAt = req.ExpiresAt
		}

		if req.CoverPhoto != nil {
			if g.PhotoIndex(*req.CoverPhoto) < 0 {
				return apperr.Validation("cover photo is not part of this gallery")
			}
			g.CoverPhoto = req.CoverPhoto
		}

		return nil
	})
	if err != nil {
		return models.Gallery{}, s.internal(op, err)
	}

	return g, nil
}

func (s *GalleryService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.GalleryStatus) (models.Gallery, error) {
	const op = "service.GalleryService.UpdateStatus"

	if !status.Valid() {
		return models.Gallery{}, apperr.Validation(fmt.Sprintf("invalid status: %s", status))
	}

	g, err := s.mutate(ctx, func() (models.Gallery, error) {
		return s.byID(ctx, id)
	}, func(g *models.Gallery, now time.Time) error {
		if status == models.GalleryStatusActive && g.PastExpiry(now) {
			return apperr.Validation("extend the expiry date before reactivating this gallery")
		}
		g.Status = status

		return nil
	})
	if err != nil {
		return models.Gallery{}, s.internal(op, err)
	}

	s.log.Info("gallery status updated", slog.String("op", op), slog.String("id", id.String()), slog.String("status", string(status)))

	return g, nil
}

// Delete removes the gallery document. CDN originals are removed best effort.
func (s *GalleryService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.GalleryService.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	g, err := s.byID(ctx, id)
	if err != nil {
		return s.internal(op, err)
	}

	if err := s.repo.DeleteGallery(ctx, id); err != nil {
		if errors.Is(err, storage.ErrGalleryNotFound) {
			return apperr.NotFound("gallery not found")
		}
		log.Error("failed to delete gallery", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range g.Photos {
		if err := s.media.Delete(ctx, p.PublicID); err != nil {
			log.Warn("orphaned photo on cdn", slog.String("public_id", p.PublicID), sl.Err(err))
		}
	}

	log.Info("gallery deleted")

	return nil
}

// AddPhoto uploads an image with the studio watermark and appends it to the gallery.
func (s *GalleryService) AddPhoto(ctx context.Context, id uuid.UUID, upload models.ImageUpload) (models.Photo, error) {
	const op = "service.GalleryService.AddPhoto"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	if _, err := s.byID(ctx, id); err != nil {
		return models.Photo{}, s.internal(op, err)
	}

	upload.Watermark = s.media.PublicWatermark(upload.Watermark)
	if upload.Folder == "" {
		upload.Folder = "galleries/" + id.String()
	}

	img, err := s.media.UploadWatermarked(ctx, upload)
	if err != nil {
		return models.Photo{}, err
	}

	photo := models.Photo{
		ID:             uuid.New(),
		PublicID:       img.PublicID,
		Filename:       upload.Filename,
		OriginalURL:    img.OriginalURL,
		WatermarkedURL: img.WatermarkedURL,
		CleanURL:       img.CleanURL,
		ThumbnailURL:   img.ThumbnailURL,
		Width:          img.Width,
		Height:         img.Height,
		Size:           img.Size,
		UploadedAt:     s.now(),
	}

	_, err = s.mutate(ctx, func() (models.Gallery, error) {
		return s.byID(ctx, id)
	}, func(g *models.Gallery, now time.Time) error {
		photo.Order = len(g.Photos)
		g.Photos = append(g.Photos, photo)
		if g.CoverPhoto == nil {
			g.CoverPhoto = &photo.ID
		}

		return nil
	})
	if err != nil {
		if derr := s.media.Delete(ctx, img.PublicID); derr != nil {
			log.Warn("failed to remove orphaned upload", slog.String("public_id", img.PublicID), sl.Err(derr))
		}

		return models.Photo{}, s.internal(op, err)
	}

	log.Info("photo added", slog.String("photo_id", photo.ID.String()))

	return photo, nil
}

func (s *GalleryService) RemovePhoto(ctx context.Context, id, photoID uuid.UUID) error {
	const op = "service.GalleryService.RemovePhoto"

	var removed models.Photo
	_, err := s.mutate(ctx, func() (models.Gallery, error) {
		return s.byID(ctx, id)
	}, func(g *models.Gallery, now time.Time) error {
		i := g.PhotoIndex(photoID)
		if i < 0 {
			return apperr.NotFound("photo not found")
		}

		removed = g.Photos[i]
		g.Photos = append(g.Photos[:i], g.Photos[i+1:]...)
		for j := range g.Photos {
			g.Photos[j].Order = j
		}

		if g.CoverPhoto != nil && *g.CoverPhoto == photoID {
			g.CoverPhoto = nil
			if len(g.Photos) > 0 {
				g.CoverPhoto = &g.Photos[0].ID
			}
		}

		return nil
	})
	if err != nil {
		return s.internal(op, err)
	}

	if err := s.media.Delete(ctx, removed.PublicID); err != nil {
		s.log.Warn("orphaned photo on cdn", slog.String("op", op), slog.String("public_id", removed.PublicID), sl.Err(err))
	}

	return nil
}

// ReorderPhotos applies a new display order. The ids must be exactly the gallery's photos.
func (s *GalleryService) ReorderPhotos(ctx context.Context, id uuid.UUID, order []uuid.UUID) (models.Gallery, error) {
	const op = "service.GalleryService.ReorderPhotos"

	g, err := s.mutate(ctx, func() (models.Gallery, error) {
		return s.byID(ctx, id)
	}, func(g *models.Gallery, now time.Time) error {
		if len(order) != len(g.Photos) {
			return apperr.Validation("order must list every photo exactly once")
		}

		reordered := make([]models.Photo, 0, len(order))
		seen := make(map[uuid.UUID]bool, len(order))
		for pos, pid := range order {
			i := g.PhotoIndex(pid)
			if i < 0 || seen[pid] {
				return apperr.Validation("order must list every photo exactly once")
			}
			seen[pid] = true

			p := g.Photos[i]
			p.Order = pos
			reordered = append(reordered, p)
		}
		g.Photos = reordered

		return nil
	})
	if err != nil {
		return models.Gallery{}, s.internal(op, err)
	}

	return g, nil
}

func (s *GalleryService) ShareURL(g models.Gallery) string {
	return strings.TrimRight(s.cfg.PublicURL, "/") + "/gallery/" + g.ShareLink
}

// ShareWithClient sends the share link to the gallery's client phone.
func (s *GalleryService) ShareWithClient(ctx context.Context, id uuid.UUID) (dto.ShareResult, error) {
	const op = "service.GalleryService.ShareWithClient"

	g, err := s.Get(ctx, id)
	if err != nil {
		return dto.ShareResult{}, err
	}
	if g.Status != models.GalleryStatusActive {
		return dto.ShareResult{}, apperr.Validation("only active galleries can be shared")
	}

	url := s.ShareURL(g)

	channel, err := s.notifier.GalleryShared(ctx, g, url)
	if err != nil {
		s.log.Error("failed to share gallery", slog.String("op", op), sl.Err(err))

		return dto.ShareResult{}, apperr.Upstream("failed to send the gallery link", err)
	}

	return dto.ShareResult{URL: url, Channel: string(channel)}, nil
}

// QRCode renders the share URL as a PNG for printed client cards.
func (s *GalleryService) QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error) {
	const op = "service.GalleryService.QRCode"

	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case size <= 0:
		size = 256
	case size < 128:
		size = 128
	case size > 1024:
		size = 1024
	}

	png, err := qrcode.Encode(s.ShareURL(g), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return png, nil
}

// mutate runs a read-modify-write cycle guarded by the document version. A lost race
// re-reads the gallery and re-applies fn, so every check inside fn sees fresh state.
func (s *GalleryService) mutate(ctx context.Context, load func() (models.Gallery, error), fn func(g *models.Gallery, now time.Time) error) (models.Gallery, error) {
	for attempt := 1; ; attempt++ {
		g, err := load()
		if err != nil {
			return models.Gallery{}, err
		}

		now := s.now()
		if err := fn(&g, now); err != nil {
			return models.Gallery{}, err
		}

		g.ApplyLazyExpiry(now)
		g.UpdatedAt = now

		err = s.repo.SaveGallery(ctx, &g)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return models.Gallery{}, err
		}
		if attempt == maxSaveAttempts {
			return models.Gallery{}, apperr.Wrap(apperr.KindConflict, "gallery is being modified, please retry", err)
		}

		s.log.Debug("version conflict, retrying", slog.String("gallery_id", g.ID.String()), slog.Int("attempt", attempt))
	}
}

// checkAccessible rejects archived and expired galleries. An active gallery whose
// expiry passed is moved to expired and persisted on the way.
func (s *GalleryService) checkAccessible(ctx context.Context, g *models.Gallery, now time.Time) error {
	if g.ApplyLazyExpiry(now) {
		s.persistExpiry(ctx, g)

		return apperr.Authorization("gallery has expired")
	}

	switch {
	case g.Status == models.GalleryStatusExpired, g.PastExpiry(now):
		return apperr.Authorization("gallery has expired")
	case g.Status != models.GalleryStatusActive:
		return apperr.Authorization("gallery is not accessible")
	}

	return nil
}

func (s *GalleryService) persistExpiry(ctx context.Context, g *models.Gallery) {
	saved := *g
	saved.UpdatedAt = s.now()
	if err := s.repo.SaveGallery(ctx, &saved); err != nil {
		// a concurrent writer applies the same rule on its own save
		s.log.Warn("failed to persist expiry", slog.String("gallery_id", g.ID.String()), sl.Err(err))
	}
}

func (s *GalleryService) byShareLink(ctx context.Context, shareLink string) (models.Gallery, error) {
	if shareLink == "" {
		return models.Gallery{}, apperr.NotFound("gallery not found")
	}

	g, err := s.repo.GetGalleryByShareLink(ctx, shareLink)
	if errors.Is(err, storage.ErrGalleryNotFound) {
		return models.Gallery{}, apperr.NotFound("gallery not found")
	}

	return g, err
}

func (s *GalleryService) byID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	g, err := s.repo.GetGalleryByID(ctx, id)
	if errors.Is(err, storage.ErrGalleryNotFound) {
		return models.Gallery{}, apperr.NotFound("gallery not found")
	}

	return g, err
}

// internal passes classified errors through and wraps everything else with op.
func (s *GalleryService) internal(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	s.log.Error("gallery operation failed", slog.String("op", op), sl.Err(err))

	return fmt.Errorf("%s: %w", op, err)
}
