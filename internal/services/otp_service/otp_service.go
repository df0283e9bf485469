package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/jwt"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/lib/phone"
	"photo_studio/internal/messaging"
	"photo_studio/internal/metrics"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/storage/kv"

	"github.com/google/uuid"
)

const (
	codeDigits = 6

	codeKeyPrefix     = "code:"
	attemptsKeyPrefix = "attempts:"
)

type Notifier interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) (messaging.Channel, error)
}

type Config struct {
	TTL         time.Duration
	MaxAttempts int
	// EchoCode returns the issued code to the caller. Never enable it in production.
	EchoCode bool

	TokenSecret string
	TokenTTL    time.Duration
}

type OTPService struct {
	log       *slog.Logger
	store     kv.Store
	notifier  Notifier
	galleries repository.GalleryRepository
	cfg       Config
	now       func() time.Time
}

func NewOTPService(log *slog.Logger, store kv.Store, notifier Notifier, galleries repository.GalleryRepository, cfg Config) *OTPService {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	return &OTPService{
		log:       log,
		store:     store,
		notifier:  notifier,
		galleries: galleries,
		cfg:       cfg,
		now:       time.Now,
	}
}

// GenerateCode returns a uniformly sampled, zero padded 6 digit code.
func GenerateCode() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(codeDigits), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// StoreOTP records code for phone, replacing any code issued before.
func (s *OTPService) StoreOTP(ctx context.Context, phoneNumber, code string, expiresAt time.Time) error {
	const op = "services.OTPService.StoreOTP"

	key := phone.Normalize(phoneNumber)

	raw, err := json.Marshal(models.OTPRecord{
		Code:      code,
		ExpiresAt: expiresAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		// already expired; keep it briefly so validation still sees and removes it
		ttl = time.Second
	}

	if err := s.store.Set(ctx, codeKeyPrefix+key, string(raw), ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// a fresh code gets a fresh attempt budget
	if err := s.store.Delete(ctx, attemptsKeyPrefix+key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ValidateOTP consumes the outstanding code for phone. It returns false when there is
// no code, when it expired (the stale record is removed) or when it does not match.
// After MaxAttempts mismatches the outstanding code is burned.
func (s *OTPService) ValidateOTP(ctx context.Context, phoneNumber, code string) (bool, error) {
	const op = "services.OTPService.ValidateOTP"

	key := phone.Normalize(phoneNumber)

	log := s.log.With(
		slog.String("op", op),
		slog.String("phone", key),
	)

	raw, err := s.store.Get(ctx, codeKeyPrefix+key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			metrics.OTPValidations.WithLabelValues("missing").Inc()
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var record models.OTPRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		log.Warn("dropping unreadable otp record", sl.Err(err))
		_ = s.store.Delete(ctx, codeKeyPrefix+key)

		return false, nil
	}

	if s.now().UnixMilli() > record.ExpiresAt {
		metrics.OTPValidations.WithLabelValues("expired").Inc()
		if err := s.store.Delete(ctx, codeKeyPrefix+key); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}

		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		metrics.OTPValidations.WithLabelValues("mismatch").Inc()
		if err := s.registerFailure(ctx, key, record.ExpiresAt); err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}

		return false, nil
	}

	if err := s.store.Delete(ctx, codeKeyPrefix+key); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	_ = s.store.Delete(ctx, attemptsKeyPrefix+key)

	metrics.OTPValidations.WithLabelValues("ok").Inc()

	return true, nil
}

func (s *OTPService) registerFailure(ctx context.Context, key string, expiresAt int64) error {
	attempts, err := s.store.Incr(ctx, attemptsKeyPrefix+key)
	if err != nil {
		return err
	}

	if attempts == 1 {
		ttl := time.UnixMilli(expiresAt).Sub(s.now())
		if ttl < time.Second {
			ttl = time.Second
		}
		if err := s.store.Expire(ctx, attemptsKeyPrefix+key, ttl); err != nil && !errors.Is(err, kv.ErrNotFound) {
			return err
		}
	}

	if attempts >= int64(s.cfg.MaxAttempts) {
		s.log.Warn("too many wrong codes, burning outstanding otp", slog.String("phone", key))

		if err := s.store.Delete(ctx, codeKeyPrefix+key); err != nil {
			return err
		}
		return s.store.Delete(ctx, attemptsKeyPrefix+key)
	}

	return nil
}

// SendOTP issues a code for phone and delivers it. The code is returned only when
// echo mode is on.
func (s *OTPService) SendOTP(ctx context.Context, phoneNumber string) (string, error) {
	const op = "services.OTPService.SendOTP"

	log := s.log.With(
		slog.String("op", op),
		slog.String("phone", phone.Normalize(phoneNumber)),
	)

	if !phone.Valid(phoneNumber) {
		return "", apperr.Validation("invalid phone number")
	}

	code, err := GenerateCode()
	if err != nil {
		log.Error("failed to generate code", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.StoreOTP(ctx, phoneNumber, code, s.now().Add(s.cfg.TTL)); err != nil {
		log.Error("failed to store code", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	channel, err := s.notifier.SendOTP(ctx, phoneNumber, code, s.cfg.TTL)
	if err != nil {
		log.Error("failed to deliver code", sl.Err(err))

		// an undelivered code must not stay redeemable
		_ = s.store.Delete(ctx, codeKeyPrefix+phone.Normalize(phoneNumber))

		return "", apperr.Upstream("failed to send verification code", err)
	}

	log.Info("otp sent", slog.String("channel", string(channel)))

	if s.cfg.EchoCode {
		return code, nil
	}

	return "", nil
}

// VerifyOTP redeems the code and, for a gallery reference (id or share link), checks
// that the phone owns the gallery before issuing an access token.
func (s *OTPService) VerifyOTP(ctx context.Context, phoneNumber, code, galleryRef string) (models.GalleryAccess, error) {
	const op = "services.OTPService.VerifyOTP"

	log := s.log.With(
		slog.String("op", op),
		slog.String("phone", phone.Normalize(phoneNumber)),
	)

	if phoneNumber == "" || code == "" {
		return models.GalleryAccess{}, apperr.Validation("phone number and code are required")
	}

	ok, err := s.ValidateOTP(ctx, phoneNumber, code)
	if err != nil {
		log.Error("failed to validate code", sl.Err(err))

		return models.GalleryAccess{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		log.Info("invalid or expired code")

		return models.GalleryAccess{}, apperr.Authentication("invalid or expired code")
	}

	access := models.GalleryAccess{Phone: phone.Normalize(phoneNumber)}

	if galleryRef != "" {
		gallery, err := s.lookupGallery(ctx, galleryRef)
		if err != nil {
			if errors.Is(err, storage.ErrGalleryNotFound) {
				return models.GalleryAccess{}, apperr.NotFound("gallery not found")
			}
			log.Error("failed to load gallery", sl.Err(err))

			return models.GalleryAccess{}, fmt.Errorf("%s: %w", op, err)
		}

		if !phone.Match(phoneNumber, gallery.Client.Phone) {
			log.Warn("phone does not own gallery", slog.String("gallery_id", gallery.ID.String()))

			return models.GalleryAccess{}, apperr.Authentication("phone number does not match this gallery")
		}

		access.GalleryID = gallery.ID.String()
		access.ShareLink = gallery.ShareLink
	}

	now := s.now()
	token, err := jwt.NewGalleryToken(access.Phone, access.GalleryID, s.cfg.TokenSecret, now, s.cfg.TokenTTL)
	if err != nil {
		log.Error("failed to sign access token", sl.Err(err))

		return models.GalleryAccess{}, fmt.Errorf("%s: %w", op, err)
	}

	access.Token = token
	access.ExpiresAt = now.Add(s.cfg.TokenTTL)

	log.Info("phone verified")

	return access, nil
}

// Share links are dashless uuids, which uuid.Parse also accepts, so only the canonical
// 36 character form is treated as an id.
func (s *OTPService) lookupGallery(ctx context.Context, ref string) (models.Gallery, error) {
	if len(ref) == 36 {
		if id, err := uuid.Parse(ref); err == nil {
			return s.galleries.GetGalleryByID(ctx, id)
		}
	}

	return s.galleries.GetGalleryByShareLink(ctx, ref)
}
