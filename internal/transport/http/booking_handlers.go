package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
)

// CreateBooking godoc
// @Summary Book a session
// @Description Public booking form. The booking starts pending and the studio is alerted.
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} response.Response{data=models.Booking}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/bookings [post]
func (r *Routers) CreateBooking(c echo.Context) error {
	const op = "http.routers.CreateBooking"

	log := r.log.With(slog.String("op", op))

	var req dto.CreateBookingRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	b, err := r.BookingService.Create(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusCreated, b)
}

// ListBookings godoc
// @Summary List bookings
// @Tags admin-bookings
// @Produce json
// @Param status query string false "pending, confirmed, completed or cancelled"
// @Param search query string false "Client name, phone or booking number"
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=dto.BookingList}
// @Security AdminCookie
// @Router /api/v1/admin/bookings [get]
func (r *Routers) ListBookings(c echo.Context) error {
	const op = "http.routers.ListBookings"

	log := r.log.With(slog.String("op", op))

	var q dto.ListBookingsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return r.fail(c, log, apperr.Wrap(apperr.KindValidation, "invalid query parameters", err))
	}

	list, err := r.BookingService.List(c.Request().Context(), q)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, list)
}

// GetBooking godoc
// @Summary Get a booking
// @Tags admin-bookings
// @Produce json
// @Param id path string true "Booking id"
// @Success 200 {object} response.Response{data=models.Booking}
// @Failure 404 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/bookings/{id} [get]
func (r *Routers) GetBooking(c echo.Context) error {
	const op = "http.routers.GetBooking"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	b, err := r.BookingService.Get(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, b)
}

// UpdateBookingStatus godoc
// @Summary Move a booking through its lifecycle
// @Tags admin-bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param request body dto.UpdateBookingStatusRequest true "Status"
// @Success 200 {object} response.Response{data=models.Booking}
// @Failure 409 {object} response.ErrorResponse "Transition not allowed"
// @Security AdminCookie
// @Router /api/v1/admin/bookings/{id}/status [put]
func (r *Routers) UpdateBookingStatus(c echo.Context) error {
	const op = "http.routers.UpdateBookingStatus"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	var req dto.UpdateBookingStatusRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	b, err := r.BookingService.UpdateStatus(c.Request().Context(), id, models.BookingStatus(req.Status))
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, b)
}

// RecordPayment godoc
// @Summary Record a payment
// @Tags admin-bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param request body dto.RecordPaymentRequest true "Payment"
// @Success 200 {object} response.Response{data=models.Booking}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/bookings/{id}/payments [post]
func (r *Routers) RecordPayment(c echo.Context) error {
	const op = "http.routers.RecordPayment"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	var req dto.RecordPaymentRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	b, err := r.BookingService.RecordPayment(c.Request().Context(), id, req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, b)
}

// DeleteBooking godoc
// @Summary Delete a booking
// @Tags admin-bookings
// @Param id path string true "Booking id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/bookings/{id} [delete]
func (r *Routers) DeleteBooking(c echo.Context) error {
	const op = "http.routers.DeleteBooking"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	if err := r.BookingService.Delete(c.Request().Context(), id); err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, map[string]string{"id": id.String()})
}

// BookingInvoice godoc
// @Summary Download the invoice PDF
// @Tags admin-bookings
// @Produce application/pdf
// @Param id path string true "Booking id"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/bookings/{id}/invoice [get]
func (r *Routers) BookingInvoice(c echo.Context) error {
	const op = "http.routers.BookingInvoice"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	pdf, filename, err := r.BookingService.Invoice(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// ListClients godoc
// @Summary Clients seen in bookings and galleries
// @Tags admin-bookings
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Client}
// @Security AdminCookie
// @Router /api/v1/admin/clients [get]
func (r *Routers) ListClients(c echo.Context) error {
	const op = "http.routers.ListClients"

	log := r.log.With(slog.String("op", op))

	clients, err := r.BookingService.Clients(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, clients)
}

// Finances godoc
// @Summary Yearly revenue summary
// @Tags admin-bookings
// @Produce json
// @Param year query int false "Year, defaults to the current one"
// @Success 200 {object} response.Response{data=models.FinanceSummary}
// @Failure 400 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/finances [get]
func (r *Routers) Finances(c echo.Context) error {
	const op = "http.routers.Finances"

	log := r.log.With(slog.String("op", op))

	year := time.Now().Year()
	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return r.fail(c, log, apperr.Validation("invalid year"))
		}
		year = y
	}

	summary, err := r.BookingService.Finances(c.Request().Context(), year)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, summary)
}
