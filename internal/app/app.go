package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	httpapp "photo_studio/internal/app/http"
	"photo_studio/internal/config"
	"photo_studio/internal/domain/models"
	"photo_studio/internal/imaging"
	"photo_studio/internal/messaging"
	"photo_studio/internal/repository"
	"photo_studio/internal/services/auth"
	bookingservice "photo_studio/internal/services/booking_service"
	galleryservice "photo_studio/internal/services/gallery_service"
	mediaservice "photo_studio/internal/services/media_service"
	otpservice "photo_studio/internal/services/otp_service"
	settingsservice "photo_studio/internal/services/settings_service"
	userservice "photo_studio/internal/services/user_service"
	filestorage "photo_studio/internal/storage/filestorage"
	"photo_studio/internal/storage/kv"
	redisapp "photo_studio/internal/storage/redis"
	httprouters "photo_studio/internal/transport/http"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

var (
	ErrSMSProviderRequired = errors.New("twilio credentials are required in prod")
	ErrCDNRequired         = errors.New("cloudinary credentials are required in prod")
)

type App struct {
	HTTPServer *httpapp.Server
	Repository *repository.Repository

	log     *slog.Logger
	closers []func()
}

// New connects the stores and builds every service behind the HTTP server.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	if err := checkProviders(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{Repository: repo, log: log}
	a.closers = append(a.closers, repo.Close)

	store, err := a.otpStore(ctx, cfg)
	if err != nil {
		a.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images, uploadsDir, err := imageStore(log, cfg)
	if err != nil {
		a.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sender messaging.Sender
	if cfg.Twilio.Enabled() {
		sender = messaging.NewTwilioSender(log, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.SMSFrom, cfg.Twilio.WhatsAppFrom)
	} else {
		log.Warn("twilio is not configured, messages are only logged")
		sender = messaging.NewLogSender(log, cfg.Env == envLocal)
	}
	notifier := messaging.NewNotifier(log, sender, cfg.Messaging.DefaultCountryCode, cfg.Messaging.StudioName, cfg.Messaging.StudioPhone)

	media := mediaservice.NewMediaService(log, images, cfg.Cloudinary.Folder, models.Watermark{
		Text:     cfg.Gallery.WatermarkText,
		FontSize: cfg.Gallery.WatermarkFontSize,
		Opacity:  cfg.Gallery.WatermarkOpacity,
		Position: models.PositionCenter,
	})

	otp := otpservice.NewOTPService(log, store, notifier, repo.Gallery, otpservice.Config{
		TTL:         cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
		EchoCode:    cfg.OTP.EchoCode && cfg.Env != envProd,
		TokenSecret: cfg.Token.Secret,
		TokenTTL:    cfg.Token.GalleryTTL,
	})

	galleries := galleryservice.NewGalleryService(log, repo.Gallery, media, notifier, galleryservice.Config{
		PublicURL:            cfg.PublicURL,
		DefaultDownloadLimit: cfg.Gallery.DefaultDownloadLimit,
		DefaultExpiryDays:    cfg.Gallery.DefaultExpiryDays,
	})

	bookings := bookingservice.NewBookingService(log, repo.Booking, repo.Gallery, notifier, bookingservice.Config{
		Currency:   cfg.Booking.Currency,
		StudioName: cfg.Messaging.StudioName,
	})

	authService := auth.New(log, repo.User, auth.Config{
		Secret:         cfg.Token.Secret,
		TokenTTL:       cfg.Token.AdminTTL,
		LegacyFallback: cfg.Admin.LegacyFallback,
	})

	settings := settingsservice.NewSettingsService(log, repo.Settings, models.Settings{
		StudioName:    cfg.Messaging.StudioName,
		ContactPhone:  cfg.Messaging.StudioPhone,
		WatermarkText: cfg.Gallery.WatermarkText,
		Currency:      strings.ToUpper(cfg.Booking.Currency),
	})

	routers := httprouters.NewRouter(log, httprouters.Services{
		OTP:      otp,
		Gallery:  galleries,
		Booking:  bookings,
		Auth:     authService,
		User:     userservice.NewUserService(log, repo.User),
		Settings: settings,
		Media:    media,
	}, httprouters.Config{
		SecureCookies: cfg.Env == envProd,
		AdminTTL:      cfg.Token.AdminTTL,
		TokenSecret:   cfg.Token.Secret,
	})

	a.HTTPServer = httpapp.New(log, httpapp.Config{
		Port:          cfg.HTTP.Port,
		ReadTimeout:   cfg.HTTP.ReadTimeout,
		WriteTimeout:  cfg.HTTP.WriteTimeout,
		CORSOrigins:   cfg.HTTP.CORSOrigins,
		SessionSecret: cfg.Session.Secret,
		SecureCookies: cfg.Env == envProd,
		OTPPerMinute:  cfg.OTP.SendPerMin,
		OTPBurst:      cfg.OTP.SendBurst,
		UploadsDir:    uploadsDir,
	}, routers, authService)

	return a, nil
}

// checkProviders refuses to start prod without real delivery and a CDN. The
// fallbacks log one-time codes and serve originals from disk.
func checkProviders(cfg *config.Config) error {
	if cfg.Env != envProd {
		return nil
	}
	if !cfg.Twilio.Enabled() {
		return ErrSMSProviderRequired
	}
	if !cfg.Cloudinary.Enabled() {
		return ErrCDNRequired
	}

	return nil
}

func (a *App) otpStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	if cfg.OTP.Store != "redis" {
		return kv.NewMemory(cfg.OTP.CleanupEvery), nil
	}

	client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	return kv.NewRedis(client, "otp:"), nil
}

// imageStore picks the CDN when credentials are set and local disk otherwise. The
// second result is the directory to serve when images live on disk.
func imageStore(log *slog.Logger, cfg *config.Config) (mediaservice.ImageStore, string, error) {
	if cfg.Cloudinary.Enabled() {
		cdn, err := imaging.NewCloudinary(log, cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			return nil, "", err
		}
		return cdn, "", nil
	}

	log.Warn("cloudinary is not configured, images are stored on local disk", slog.String("dir", cfg.FileStorage.BaseDir))

	local, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL)
	if err != nil {
		return nil, "", err
	}

	return local, cfg.FileStorage.BaseDir, nil
}

// Stop releases connections in reverse order of acquisition.
func (a *App) Stop() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
