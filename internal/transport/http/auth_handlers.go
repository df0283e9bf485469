package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"photo_studio/internal/lib/apperr"
	authjwt "photo_studio/internal/lib/jwt"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/middleware"
	"photo_studio/internal/transport/http/dto"
	"photo_studio/internal/transport/http/dto/request"
	"photo_studio/internal/transport/http/dto/response"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	AdminCookie    = "admin-token"
	GallerySession = "gallery-session"
)

// SendOTP godoc
// @Summary Send a one-time code
// @Description Sends a 6-digit code over WhatsApp, falling back to SMS. Non-production builds echo the code.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.SendOTPRequest true "Phone number"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/auth/send-otp [post]
func (r *Routers) SendOTP(c echo.Context) error {
	const op = "http.routers.SendOTP"

	log := r.log.With(slog.String("op", op))

	var req request.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	code, err := r.OTPService.SendOTP(c.Request().Context(), req.Phone)
	if err != nil {
		return r.fail(c, log, err)
	}

	data := map[string]string{"message": "verification code sent"}
	if code != "" {
		data["otp"] = code
	}

	return ok(c, http.StatusOK, data)
}

// VerifyOTP godoc
// @Summary Verify a one-time code
// @Description Consumes the code and returns a signed gallery access token. When galleryId is set the phone must own that gallery.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.VerifyOTPRequest true "Phone, code and optional gallery"
// @Success 200 {object} response.Response{data=models.GalleryAccess}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/auth/verify-otp [post]
func (r *Routers) VerifyOTP(c echo.Context) error {
	const op = "http.routers.VerifyOTP"

	log := r.log.With(slog.String("op", op))

	var req request.VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	access, err := r.OTPService.VerifyOTP(c.Request().Context(), req.Phone, req.Code, req.GalleryID)
	if err != nil {
		return r.fail(c, log, err)
	}

	if sess, err := session.Get(GallerySession, c); err == nil {
		sess.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   int(time.Until(access.ExpiresAt).Seconds()),
			HttpOnly: true,
			Secure:   r.cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		}
		sess.Values["phone"] = access.Phone
		sess.Values["gallery_id"] = access.GalleryID
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			log.Warn("failed to save gallery session", sl.Err(err))
		}
	}

	return ok(c, http.StatusOK, access)
}

// Session godoc
// @Summary Current gallery session
// @Description Reports whether this client verified a phone number with an OTP, either
// @Description through the session cookie or the access token from verify-otp sent as a bearer token.
// @Tags auth
// @Produce json
// @Param Authorization header string false "Bearer access token"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/session [get]
func (r *Routers) Session(c echo.Context) error {
	data := map[string]any{"authenticated": false}

	if sess, err := session.Get(GallerySession, c); err == nil {
		if p, _ := sess.Values["phone"].(string); p != "" {
			data["authenticated"] = true
			data["phone"] = p
			if g, _ := sess.Values["gallery_id"].(string); g != "" {
				data["gallery_id"] = g
			}
			return ok(c, http.StatusOK, data)
		}
	}

	bearer, found := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !found || bearer == "" || r.cfg.TokenSecret == "" {
		return ok(c, http.StatusOK, data)
	}

	claims, err := authjwt.ParseGalleryToken(bearer, r.cfg.TokenSecret)
	if err != nil {
		r.log.Debug("gallery token rejected", slog.String("op", "http.routers.Session"), sl.Err(err))
		return ok(c, http.StatusOK, data)
	}

	data["authenticated"] = true
	data["phone"] = claims.Phone
	if claims.GalleryID != "" {
		data["gallery_id"] = claims.GalleryID
	}
	data["expires_at"] = claims.ExpiresAt.Time

	return ok(c, http.StatusOK, data)
}

// AdminLogin godoc
// @Summary Admin login
// @Description Checks the credentials and sets the admin-token cookie (http-only, same-site lax, 24h).
// @Tags admin
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=models.Session}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/admin/login [post]
func (r *Routers) AdminLogin(c echo.Context) error {
	const op = "http.routers.AdminLogin"

	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	sess, err := r.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return r.fail(c, log, err)
	}

	c.SetCookie(r.adminCookie(sess.Token, int(r.cfg.AdminTTL.Seconds())))

	log.Info("admin logged in", slog.String("username", sess.Username))

	return ok(c, http.StatusOK, sess)
}

// AdminLogout godoc
// @Summary Admin logout
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/logout [post]
func (r *Routers) AdminLogout(c echo.Context) error {
	c.SetCookie(r.adminCookie("", -1))

	return c.JSON(http.StatusOK, response.MessageResponse("logged out"))
}

// Me godoc
// @Summary Current admin
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=dto.Me}
// @Failure 401 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/me [get]
func (r *Routers) Me(c echo.Context) error {
	claims, found := middleware.AdminClaims(c)
	if !found {
		return r.fail(c, r.log, apperr.Authentication("authentication required"))
	}

	return ok(c, http.StatusOK, dto.Me{Username: claims.Username, Role: claims.Role})
}

func (r *Routers) adminCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     AdminCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
