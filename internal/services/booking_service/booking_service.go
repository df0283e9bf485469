package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/lib/logger/sl"
	"photo_studio/internal/lib/phone"
	"photo_studio/internal/messaging"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/sync/errgroup"
)

type Notifier interface {
	BookingConfirmation(ctx context.Context, b models.Booking) error
	BookingAlert(ctx context.Context, b models.Booking) error
}

type Config struct {
	Currency   string
	StudioName string
}

type BookingService struct {
	log       *slog.Logger
	bookings  repository.BookingRepository
	galleries repository.GalleryRepository
	notifier  Notifier
	cfg       Config
	now       func() time.Time
}

func NewBookingService(
	log *slog.Logger,
	bookings repository.BookingRepository,
	galleries repository.GalleryRepository,
	notifier Notifier,
	cfg Config,
) *BookingService {
	if cfg.Currency == "" {
		cfg.Currency = "XOF"
	}

	return &BookingService{
		log:       log,
		bookings:  bookings,
		galleries: galleries,
		notifier:  notifier,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (models.Booking, error) {
	const op = "service.BookingService.Create"

	log := s.log.With(
		slog.String("op", op),
		slog.String("service_type", req.ServiceType),
	)

	log.Info("creating booking")

	if strings.TrimSpace(req.Client.Name) == "" {
		return models.Booking{}, apperr.Validation("client name is required")
	}
	if !phone.Valid(req.Client.Phone) {
		return models.Booking{}, apperr.Validation("invalid client phone number")
	}
	if !models.ValidServiceType(req.ServiceType) {
		return models.Booking{}, apperr.Validation(fmt.Sprintf("unknown service type: %s", req.ServiceType))
	}

	now := s.now()
	if req.ScheduledDate.IsZero() || req.ScheduledDate.Before(now) {
		return models.Booking{}, apperr.Validation("scheduled date must be in the future")
	}

	pricing := models.Pricing{Currency: s.cfg.Currency}
	if p := req.Pricing; p != nil {
		pricing.BasePrice = p.BasePrice
		pricing.Extras = p.Extras
		pricing.Discount = p.Discount
		pricing.Deposit = p.Deposit
		if p.Currency != "" {
			pricing.Currency = strings.ToUpper(p.Currency)
		}
	}
	pricing.Recompute()
	if pricing.Deposit > pricing.Total {
		return models.Booking{}, apperr.Validation("deposit cannot exceed the total price")
	}

	seq, err := s.bookings.NextBookingSeq(ctx, now.Year())
	if err != nil {
		log.Error("failed to allocate booking number", sl.Err(err))

		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	b := models.Booking{
		ID:            uuid.New(),
		BookingNumber: fmt.Sprintf("BK-%d-%04d", now.Year(), seq),
		Client:        req.Client.ToDomain(),
		ServiceType:   req.ServiceType,
		ScheduledDate: req.ScheduledDate.UTC(),
		Location:      strings.TrimSpace(req.Location),
		Notes:         req.Notes,
		Pricing:       pricing,
		Status:        models.BookingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookings.CreateBooking(ctx, &b); err != nil {
		log.Error("failed to create booking", sl.Err(err))

		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	s.notify(ctx, b)

	log.Info("booking created", slog.String("number", b.BookingNumber))

	return b, nil
}

// notify sends the client confirmation and the studio alert side by side. Neither
// failure affects the booking.
func (s *BookingService) notify(ctx context.Context, b models.Booking) {
	var g errgroup.Group

	g.Go(func() error {
		if err := s.notifier.BookingConfirmation(ctx, b); err != nil {
			return fmt.Errorf("client confirmation: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.notifier.BookingAlert(ctx, b); err != nil {
			return fmt.Errorf("studio alert: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Warn("booking notification failed",
			slog.String("number", b.BookingNumber),
			sl.Err(err),
		)
	}
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	const op = "service.BookingService.Get"

	b, err := s.bookings.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return models.Booking{}, apperr.NotFound("booking not found")
		}
		s.log.Error("failed to get booking", slog.String("op", op), sl.Err(err))

		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (s *BookingService) List(ctx context.Context, q dto.ListBookingsQuery) (dto.BookingList, error) {
	const op = "service.BookingService.List"

	filter := repository.BookingFilter{
		Search:  strings.TrimSpace(q.Search),
		Page:    q.Page,
		PerPage: q.PerPage,
	}

	if q.Status != "" && q.Status != "all" {
		status := models.BookingStatus(q.Status)
		if !status.Valid() {
			return dto.BookingList{}, apperr.Validation("invalid status filter")
		}
		filter.Statuses = []models.BookingStatus{status}
	}

	var err error
	if filter.From, err = parseDay(q.From); err != nil {
		return dto.BookingList{}, apperr.Validation("from must be a date (YYYY-MM-DD)")
	}
	if filter.To, err = parseDay(q.To); err != nil {
		return dto.BookingList{}, apperr.Validation("to must be a date (YYYY-MM-DD)")
	}
	if filter.To != nil {
		end := filter.To.AddDate(0, 0, 1)
		filter.To = &end
	}

	bookings, total, err := s.bookings.GetBookings(ctx, filter)
	if err != nil {
		s.log.Error("failed to list bookings", slog.String("op", op), sl.Err(err))

		return dto.BookingList{}, fmt.Errorf("%s: %w", op, err)
	}

	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return dto.BookingList{Bookings: bookings, Total: total, Page: page, PerPage: perPage}, nil
}

func parseDay(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) (models.Booking, error) {
	const op = "service.BookingService.UpdateStatus"

	if !status.Valid() {
		return models.Booking{}, apperr.Validation(fmt.Sprintf("invalid status: %s", status))
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}

	if !b.Status.CanTransitionTo(status) {
		return models.Booking{}, apperr.Conflict(fmt.Sprintf("cannot move a %s booking to %s", b.Status, status))
	}

	b.Status = status
	b.UpdatedAt = s.now()

	if err := s.save(ctx, &b); err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking status updated",
		slog.String("op", op),
		slog.String("number", b.BookingNumber),
		slog.String("status", string(status)),
	)

	return b, nil
}

func (s *BookingService) RecordPayment(ctx context.Context, id uuid.UUID, req dto.RecordPaymentRequest) (models.Booking, error) {
	const op = "service.BookingService.RecordPayment"

	if req.Amount <= 0 {
		return models.Booking{}, apperr.Validation("amount must be positive")
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}

	if b.Status == models.BookingStatusCancelled {
		return models.Booking{}, apperr.Conflict("cannot record a payment on a cancelled booking")
	}
	if req.Amount > b.Pricing.Balance() {
		return models.Booking{}, apperr.Validation(fmt.Sprintf("amount exceeds the outstanding balance of %d %s", b.Pricing.Balance(), b.Pricing.Currency))
	}

	now := s.now()
	b.Pricing.Paid += req.Amount
	b.Payments = append(b.Payments, models.Payment{
		Amount: req.Amount,
		Method: req.Method,
		Note:   req.Note,
		PaidAt: now,
	})
	b.UpdatedAt = now

	if err := s.save(ctx, &b); err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.BookingService.Delete"

	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return apperr.NotFound("booking not found")
		}
		s.log.Error("failed to delete booking", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *BookingService) save(ctx context.Context, b *models.Booking) error {
	if err := s.bookings.UpdateBooking(ctx, b); err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return apperr.NotFound("booking not found")
		}
		s.log.Error("failed to save booking", slog.String("id", b.ID.String()), sl.Err(err))

		return err
	}

	return nil
}

// Clients merges the people found on bookings and galleries into one list, keyed by
// normalized phone number, most recently active first.
func (s *BookingService) Clients(ctx context.Context) ([]models.Client, error) {
	const op = "service.BookingService.Clients"

	var fromBookings, fromGalleries []models.Client

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromBookings, err = s.bookings.BookingClients(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		fromGalleries, err = s.galleries.GalleryClients(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("failed to load clients", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byPhone := make(map[string]*models.Client)
	order := make([]string, 0, len(fromBookings)+len(fromGalleries))

	for _, c := range append(fromBookings, fromGalleries...) {
		key := phone.Normalize(c.Phone)

		cur, ok := byPhone[key]
		if !ok {
			c := c
			byPhone[key] = &c
			order = append(order, key)
			continue
		}

		cur.Bookings += c.Bookings
		cur.Galleries += c.Galleries
		cur.TotalSpent += c.TotalSpent
		if cur.Name == "" {
			cur.Name = c.Name
		}
		if cur.Email == "" {
			cur.Email = c.Email
		}
		if c.LastActivity != nil && (cur.LastActivity == nil || c.LastActivity.After(*cur.LastActivity)) {
			cur.LastActivity = c.LastActivity
		}
	}

	out := make([]models.Client, 0, len(order))
	for _, key := range order {
		out = append(out, *byPhone[key])
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastActivity, out[j].LastActivity
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})

	return out, nil
}

// Finances summarizes the bookings scheduled in year. Revenue counts completed
// bookings only; outstanding is what confirmed bookings still owe.
func (s *BookingService) Finances(ctx context.Context, year int) (models.FinanceSummary, error) {
	const op = "service.BookingService.Finances"

	if year < 2000 || year > 2100 {
		return models.FinanceSummary{}, apperr.Validation("invalid year")
	}

	bookings, err := s.yearBookings(ctx, year)
	if err != nil {
		s.log.Error("failed to load bookings", slog.String("op", op), sl.Err(err))

		return models.FinanceSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	sum := models.FinanceSummary{
		Year:             year,
		Currency:         s.cfg.Currency,
		BookingsByStatus: make(map[string]int),
	}

	completed := 0
	for _, b := range bookings {
		sum.BookingsByStatus[string(b.Status)]++

		if b.Status != models.BookingStatusCancelled {
			sum.Collected += b.Pricing.Paid
		}

		switch b.Status {
		case models.BookingStatusCompleted:
			sum.Revenue += b.Pricing.Total
			sum.MonthlyRevenue[b.ScheduledDate.Month()-1] += b.Pricing.Total
			completed++
		case models.BookingStatusConfirmed:
			sum.Outstanding += b.Pricing.Balance()
		}
	}

	if completed > 0 {
		sum.AverageBookingSize = sum.Revenue / int64(completed)
	}

	return sum, nil
}

func (s *BookingService) yearBookings(ctx context.Context, year int) ([]models.Booking, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var out []models.Booking
	for page := 1; ; page++ {
		batch, total, err := s.bookings.GetBookings(ctx, repository.BookingFilter{
			From:    &from,
			To:      &to,
			Page:    page,
			PerPage: 100,
		})
		if err != nil {
			return nil, err
		}

		out = append(out, batch...)
		if len(batch) == 0 || len(out) >= total {
			return out, nil
		}
	}
}

// Invoice renders a one-page PDF receipt for the booking.
func (s *BookingService) Invoice(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	const op = "service.BookingService.Invoice"

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(b.BookingNumber, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(s.cfg.StudioName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("Facture "+b.BookingNumber), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Date : "+s.now().Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Client"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(b.Client.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, b.Client.Phone, "", 1, "L", false, 0, "")
	if b.Client.Email != "" {
		pdf.CellFormat(0, 6, b.Client.Email, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(130, 8, tr("Prestation"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, tr("Montant"), "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	line := func(label string, amount int64) {
		pdf.CellFormat(130, 8, tr(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, money(amount, b.Pricing.Currency), "1", 1, "R", false, 0, "")
	}

	line(fmt.Sprintf("%s, %s", messaging.ServiceLabel(b.ServiceType), b.ScheduledDate.Format("02/01/2006")), b.Pricing.BasePrice)
	if b.Pricing.Extras > 0 {
		line("Suppléments", b.Pricing.Extras)
	}
	if b.Pricing.Discount > 0 {
		line("Remise", -b.Pricing.Discount)
	}

	pdf.SetFont("Helvetica", "B", 11)
	line("Total", b.Pricing.Total)
	pdf.SetFont("Helvetica", "", 11)
	line("Déjà payé", b.Pricing.Paid)
	pdf.SetFont("Helvetica", "B", 11)
	line("Reste à payer", b.Pricing.Balance())

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.log.Error("failed to render invoice", slog.String("op", op), sl.Err(err))

		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), b.BookingNumber + ".pdf", nil
}

func money(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(r)
	}

	return sign + grouped.String() + " " + currency
}
