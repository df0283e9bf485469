package http

import (
	"log/slog"
	"net/http"

	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/middleware"
	"photo_studio/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
)

// GetSettings godoc
// @Summary Studio settings
// @Description Served publicly for the website footer and to admins for editing.
// @Tags settings
// @Produce json
// @Success 200 {object} response.Response{data=models.Settings}
// @Router /api/v1/settings [get]
// @Router /api/v1/admin/settings [get]
func (r *Routers) GetSettings(c echo.Context) error {
	const op = "http.routers.GetSettings"

	log := r.log.With(slog.String("op", op))

	settings, err := r.SettingsService.Get(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update studio settings
// @Tags admin-settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Changed fields"
// @Success 200 {object} response.Response{data=models.Settings}
// @Failure 400 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/settings [put]
func (r *Routers) UpdateSettings(c echo.Context) error {
	const op = "http.routers.UpdateSettings"

	log := r.log.With(slog.String("op", op))

	var req dto.UpdateSettingsRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	settings, err := r.SettingsService.Update(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, settings)
}

// ListUsers godoc
// @Summary List admin accounts
// @Tags admin-users
// @Produce json
// @Success 200 {object} response.Response{data=[]models.AdminUser}
// @Failure 403 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/users [get]
func (r *Routers) ListUsers(c echo.Context) error {
	const op = "http.routers.ListUsers"

	log := r.log.With(slog.String("op", op))

	users, err := r.UserService.List(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create an admin account
// @Tags admin-users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "Account"
// @Success 201 {object} response.Response{data=models.AdminUser}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Username taken"
// @Security AdminCookie
// @Router /api/v1/admin/users [post]
func (r *Routers) CreateUser(c echo.Context) error {
	const op = "http.routers.CreateUser"

	log := r.log.With(slog.String("op", op))

	var req dto.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	user, err := r.UserService.Create(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary Change the role or active flag of an account
// @Tags admin-users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param request body dto.UpdateUserRequest true "Changed fields"
// @Success 200 {object} response.Response{data=models.AdminUser}
// @Failure 409 {object} response.ErrorResponse "Last superadmin"
// @Security AdminCookie
// @Router /api/v1/admin/users/{id} [patch]
func (r *Routers) UpdateUser(c echo.Context) error {
	const op = "http.routers.UpdateUser"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	user, err := r.UserService.Update(c.Request().Context(), id, req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, user)
}

// ResetUserPassword godoc
// @Summary Set a new password for an account
// @Tags admin-users
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} response.Response
// @Security AdminCookie
// @Router /api/v1/admin/users/{id}/password [put]
func (r *Routers) ResetUserPassword(c echo.Context) error {
	const op = "http.routers.ResetUserPassword"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	if err := r.UserService.ResetPassword(c.Request().Context(), id, req.Password); err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, map[string]string{"id": id.String()})
}

// DeleteUser godoc
// @Summary Delete an admin account
// @Tags admin-users
// @Param id path string true "User id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Own account"
// @Failure 409 {object} response.ErrorResponse "Last superadmin"
// @Security AdminCookie
// @Router /api/v1/admin/users/{id} [delete]
func (r *Routers) DeleteUser(c echo.Context) error {
	const op = "http.routers.DeleteUser"

	log := r.log.With(slog.String("op", op))

	claims, found := middleware.AdminClaims(c)
	if !found {
		return r.fail(c, log, apperr.Authentication("authentication required"))
	}

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	if err := r.UserService.Delete(c.Request().Context(), claims.Username, id); err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, map[string]string{"id": id.String()})
}
