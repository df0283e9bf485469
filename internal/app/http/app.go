package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"photo_studio/internal/domain/models"
	authjwt "photo_studio/internal/lib/jwt"
	"photo_studio/internal/lib/phone"
	studiomw "photo_studio/internal/middleware"
	httprouters "photo_studio/internal/transport/http"
	"photo_studio/internal/transport/http/dto/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// NewValidator returns the request validator with the "phone" tag registered.
func NewValidator() *CustomValidator {
	validate := validator.New()
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phone.Valid(fl.Field().String())
	})

	return &CustomValidator{validator: validate}
}

// TokenParser validates admin session tokens.
type TokenParser interface {
	ParseToken(token string) (*authjwt.AdminClaims, error)
}

type Config struct {
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	CORSOrigins   []string
	SessionSecret string
	SecureCookies bool
	// OTPPerMinute and OTPBurst bound the unauthenticated auth endpoints per client IP.
	OTPPerMinute float64
	OTPBurst     int
	// UploadsDir is served under /uploads when images are stored locally.
	UploadsDir string
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	tokens  TokenParser
	cfg     Config
}

func New(log *slog.Logger, cfg Config, routers *httprouters.Routers, tokens TokenParser) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Validator = NewValidator()
	e.HTTPErrorHandler = routers.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(studiomw.PrometheusMetrics)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.SessionSecret))))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		tokens:  tokens,
		cfg:     cfg,
	}
}

// Echo exposes the router, mostly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("port", s.cfg.Port))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) limiter() echo.MiddlewareFunc {
	perMinute := s.cfg.OTPPerMinute
	if perMinute <= 0 {
		perMinute = 3
	}
	burst := s.cfg.OTPBurst
	if burst <= 0 {
		burst = 3
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perMinute / 60),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, response.Error("authorization_error", "client not identified", nil))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, response.ErrTooManyRequests)
		},
	})
}

func (s *Server) adminAuth() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  studiomw.ContextKey,
		TokenLookup: "cookie:" + httprouters.AdminCookie + ",header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return s.tokens.ParseToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationRequired)
		},
	})
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	if s.cfg.UploadsDir != "" {
		s.e.Static("/uploads", s.cfg.UploadsDir)
	}

	api := s.e.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/send-otp", s.routers.SendOTP, s.limiter())
			authGroup.POST("/verify-otp", s.routers.VerifyOTP, s.limiter())
			authGroup.GET("/session", s.routers.Session)
		}

		galleries := api.Group("/galleries")
		{
			galleries.POST("/:shareLink/verify", s.routers.VerifyGallery)
			galleries.POST("/:shareLink/track-download", s.routers.TrackDownload)
			galleries.POST("/:shareLink/photos/:photoId/like", s.routers.LikePhoto)
		}

		api.POST("/bookings", s.routers.CreateBooking)
		api.GET("/settings", s.routers.GetSettings)

		api.POST("/admin/login", s.routers.AdminLogin, s.limiter())
		api.POST("/admin/logout", s.routers.AdminLogout)

		admin := api.Group("/admin", s.adminAuth())
		{
			admin.GET("/me", s.routers.Me)

			admin.POST("/galleries", s.routers.CreateGallery)
			admin.GET("/galleries", s.routers.ListGalleries)
			admin.GET("/galleries/:id", s.routers.GetGallery)
			admin.PATCH("/galleries/:id", s.routers.UpdateGallery)
			admin.PUT("/galleries/:id/status", s.routers.UpdateGalleryStatus)
			admin.DELETE("/galleries/:id", s.routers.DeleteGallery)
			admin.POST("/galleries/:id/photos", s.routers.AddPhoto)
			admin.PUT("/galleries/:id/photos/order", s.routers.ReorderPhotos)
			admin.DELETE("/galleries/:id/photos/:photoId", s.routers.RemovePhoto)
			admin.POST("/galleries/:id/share", s.routers.ShareGallery)
			admin.GET("/galleries/:id/qrcode", s.routers.GalleryQRCode)

			admin.POST("/media/upload", s.routers.UploadMedia)

			admin.GET("/bookings", s.routers.ListBookings)
			admin.GET("/bookings/:id", s.routers.GetBooking)
			admin.PUT("/bookings/:id/status", s.routers.UpdateBookingStatus)
			admin.POST("/bookings/:id/payments", s.routers.RecordPayment)
			admin.DELETE("/bookings/:id", s.routers.DeleteBooking)
			admin.GET("/bookings/:id/invoice", s.routers.BookingInvoice)
			admin.GET("/clients", s.routers.ListClients)
			admin.GET("/finances", s.routers.Finances)

			admin.GET("/settings", s.routers.GetSettings)
			admin.PUT("/settings", s.routers.UpdateSettings)

			users := admin.Group("/users", studiomw.RequireRole(models.RoleSuperAdmin))
			{
				users.GET("", s.routers.ListUsers)
				users.POST("", s.routers.CreateUser)
				users.PATCH("/:id", s.routers.UpdateUser)
				users.PUT("/:id/password", s.routers.ResetUserPassword)
				users.DELETE("/:id", s.routers.DeleteUser)
			}
		}
	}
}
