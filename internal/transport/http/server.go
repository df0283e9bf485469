package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/transport/http/dto"
	"photo_studio/internal/transport/http/dto/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "photo_studio/docs"
)

type OTPService interface {
	SendOTP(ctx context.Context, phone string) (string, error)
	VerifyOTP(ctx context.Context, phone, code, galleryRef string) (models.GalleryAccess, error)
}

type GalleryService interface {
	Verify(ctx context.Context, shareLink, phone string) (models.Gallery, error)
	TrackDownload(ctx context.Context, shareLink, phone string, photoIDs []string) (dto.DownloadResult, error)
	LikePhoto(ctx context.Context, shareLink, phone, photoID string) (int, error)
	Create(ctx context.Context, req dto.CreateGalleryRequest) (models.Gallery, error)
	Get(ctx context.Context, id uuid.UUID) (models.Gallery, error)
	List(ctx context.Context, q dto.ListGalleriesQuery) (dto.GalleryList, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateGalleryRequest) (models.Gallery, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.GalleryStatus) (models.Gallery, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddPhoto(ctx context.Context, id uuid.UUID, upload models.ImageUpload) (models.Photo, error)
	RemovePhoto(ctx context.Context, id, photoID uuid.UUID) error
	ReorderPhotos(ctx context.Context, id uuid.UUID, order []uuid.UUID) (models.Gallery, error)
	ShareWithClient(ctx context.Context, id uuid.UUID) (dto.ShareResult, error)
	QRCode(ctx context.Context, id uuid.UUID, size int) ([]byte, error)
}

type BookingService interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (models.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (models.Booking, error)
	List(ctx context.Context, q dto.ListBookingsQuery) (dto.BookingList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) (models.Booking, error)
	RecordPayment(ctx context.Context, id uuid.UUID, req dto.RecordPaymentRequest) (models.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Invoice(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Clients(ctx context.Context) ([]models.Client, error)
	Finances(ctx context.Context, year int) (models.FinanceSummary, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (models.Session, error)
}

type UserService interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (models.AdminUser, error)
	List(ctx context.Context) ([]models.AdminUser, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (models.AdminUser, error)
	ResetPassword(ctx context.Context, id uuid.UUID, password string) error
	Delete(ctx context.Context, actor string, id uuid.UUID) error
}

type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (models.Settings, error)
}

type MediaService interface {
	UploadWatermarked(ctx context.Context, input models.ImageUpload) (models.UploadedImage, error)
}

type Services struct {
	OTP      OTPService
	Gallery  GalleryService
	Booking  BookingService
	Auth     AuthService
	User     UserService
	Settings SettingsService
	Media    MediaService
}

type Config struct {
	// SecureCookies marks cookies Secure; off for plain-http local runs.
	SecureCookies bool
	AdminTTL      time.Duration
	// TokenSecret verifies the gallery access tokens issued by verify-otp.
	TokenSecret string
}

type Routers struct {
	log             *slog.Logger
	cfg             Config
	OTPService      OTPService
	GalleryService  GalleryService
	BookingService  BookingService
	AuthService     AuthService
	UserService     UserService
	SettingsService SettingsService
	MediaService    MediaService
}

func NewRouter(log *slog.Logger, services Services, cfg Config) *Routers {
	if cfg.AdminTTL <= 0 {
		cfg.AdminTTL = 24 * time.Hour
	}

	return &Routers{
		log:             log,
		cfg:             cfg,
		OTPService:      services.OTP,
		GalleryService:  services.Gallery,
		BookingService:  services.Booking,
		AuthService:     services.Auth,
		UserService:     services.User,
		SettingsService: services.Settings,
		MediaService:    services.Media,
	}
}

// Health godoc
// @Summary Liveness probe
// @Tags ops
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.MessageResponse("ok"))
}

// HTTPErrorHandler renders errors that never reached a handler (unknown routes,
// rejected tokens, rate limits) with the same envelope as handler errors.
func (r *Routers) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		if ferr := r.fail(c, r.log, err); ferr != nil {
			r.log.Error("failed to write error response", sl.Err(ferr))
		}
		return
	}

	msg := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		msg = m
	}

	code := "http_error"
	switch he.Code {
	case http.StatusNotFound:
		code = apperr.KindNotFound.String()
	case http.StatusUnauthorized:
		code = apperr.KindAuthentication.String()
	case http.StatusTooManyRequests:
		code = apperr.KindTooManyRequests.String()
	case http.StatusBadRequest:
		code = apperr.KindValidation.String()
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(he.Code)
	} else {
		werr = c.JSON(he.Code, response.Error(code, msg, nil))
	}
	if werr != nil {
		r.log.Error("failed to write error response", sl.Err(werr))
	}
}

// fail maps a service error to its status code and envelope. Internal errors are
// logged and never shown to the client.
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error) error {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.String("kind", kind.String()), slog.String("reason", err.Error()))
	}

	return c.JSON(status, response.Error(kind.String(), apperr.MessageOf(err), apperr.DetailsOf(err)))
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, response.SuccessResponse(data))
}

// bind decodes and validates the request into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request format", err)
	}

	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return apperr.Validation("invalid request").WithDetails(details)
		}

		return apperr.Wrap(apperr.KindValidation, "invalid request", err)
	}

	return nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation(fmt.Sprintf("invalid %s", name))
	}

	return id, nil
}
