package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/repository"
	"photo_studio/internal/storage"
	"photo_studio/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) NextBookingSeq(ctx context.Context, year int) (int, error) {
	args := m.Called(ctx, year)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Booking), args.Int(1), args.Error(2)
}

func (m *MockBookingRepository) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) BookingClients(ctx context.Context) ([]models.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Client), args.Error(1)
}

// galleryClients satisfies repository.GalleryRepository for the client listing only.
type galleryClients struct {
	repository.GalleryRepository
	clients []models.Client
	err     error
}

func (g galleryClients) GalleryClients(context.Context) ([]models.Client, error) {
	return g.clients, g.err
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BookingConfirmation(ctx context.Context, b models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockNotifier) BookingAlert(ctx context.Context, b models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newService(galleries repository.GalleryRepository) (*BookingService, *MockBookingRepository, *MockNotifier) {
	repo := new(MockBookingRepository)
	notifier := new(MockNotifier)

	s := NewBookingService(slog.Default(), repo, galleries, notifier, Config{StudioName: "Studio Lumière"})
	s.now = func() time.Time { return testNow }

	return s, repo, notifier
}

func validRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		Client:        dto.ClientInfo{Name: "Ama Mensah", Phone: "+228 90 12 34 56"},
		ServiceType:   "wedding",
		ScheduledDate: testNow.AddDate(0, 2, 0),
		Pricing:       &dto.PricingInput{BasePrice: 300000, Extras: 50000, Discount: 25000, Deposit: 100000},
	}
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(r *dto.CreateBookingRequest)
		mockSetup func(repo *MockBookingRepository, n *MockNotifier)
		wantKind  apperr.Kind
		wantErr   bool
	}{
		{
			name: "numbered, priced and pending",
			mockSetup: func(repo *MockBookingRepository, n *MockNotifier) {
				repo.On("NextBookingSeq", ctx, 2026).Return(7, nil).Once()
				repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil).Once()
				n.On("BookingConfirmation", ctx, mock.Anything).Return(nil).Once()
				n.On("BookingAlert", ctx, mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "notification failures do not fail the booking",
			mockSetup: func(repo *MockBookingRepository, n *MockNotifier) {
				repo.On("NextBookingSeq", ctx, 2026).Return(7, nil).Once()
				repo.On("CreateBooking", ctx, mock.Anything).Return(nil).Once()
				n.On("BookingConfirmation", ctx, mock.Anything).Return(errors.New("twilio down")).Once()
				n.On("BookingAlert", ctx, mock.Anything).Return(errors.New("twilio down")).Once()
			},
		},
		{
			name:     "unknown service type",
			mutate:   func(r *dto.CreateBookingRequest) { r.ServiceType = "drone" },
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "date in the past",
			mutate:   func(r *dto.CreateBookingRequest) { r.ScheduledDate = testNow.Add(-time.Minute) },
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "invalid phone",
			mutate:   func(r *dto.CreateBookingRequest) { r.Client.Phone = "abc" },
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:     "deposit above total",
			mutate:   func(r *dto.CreateBookingRequest) { r.Pricing.Deposit = 400000 },
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name: "counter failure",
			mockSetup: func(repo *MockBookingRepository, n *MockNotifier) {
				repo.On("NextBookingSeq", ctx, 2026).Return(0, errors.New("db down")).Once()
			},
			wantErr:  true,
			wantKind: apperr.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo, notifier := newService(galleryClients{})
			if tt.mockSetup != nil {
				tt.mockSetup(repo, notifier)
			}

			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			b, err := s.Create(ctx, req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "BK-2026-0007", b.BookingNumber)
			assert.Equal(t, models.BookingStatusPending, b.Status)
			assert.Equal(t, int64(325000), b.Pricing.Total)
			assert.Equal(t, "XOF", b.Pricing.Currency)
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestBookingService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		from, to models.BookingStatus
		ok       bool
	}{
		{models.BookingStatusPending, models.BookingStatusConfirmed, true},
		{models.BookingStatusPending, models.BookingStatusCancelled, true},
		{models.BookingStatusConfirmed, models.BookingStatusCompleted, true},
		{models.BookingStatusConfirmed, models.BookingStatusCancelled, true},
		{models.BookingStatusPending, models.BookingStatusCompleted, false},
		{models.BookingStatusCompleted, models.BookingStatusCancelled, false},
		{models.BookingStatusCancelled, models.BookingStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			s, repo, _ := newService(galleryClients{})
			id := uuid.New()

			repo.On("GetBookingByID", ctx, id).Return(models.Booking{ID: id, Status: tt.from}, nil).Once()
			if tt.ok {
				repo.On("UpdateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool { return b.Status == tt.to })).Return(nil).Once()
			}

			b, err := s.UpdateStatus(ctx, id, tt.to)
			if !tt.ok {
				assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
				repo.AssertNotCalled(t, "UpdateBooking", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, b.Status)
			repo.AssertExpectations(t)
		})
	}

	t.Run("missing booking", func(t *testing.T) {
		s, repo, _ := newService(galleryClients{})
		id := uuid.New()
		repo.On("GetBookingByID", ctx, id).Return(models.Booking{}, storage.ErrBookingNotFound).Once()

		_, err := s.UpdateStatus(ctx, id, models.BookingStatusConfirmed)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestBookingService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	booking := models.Booking{
		ID:      id,
		Status:  models.BookingStatusConfirmed,
		Pricing: models.Pricing{Total: 100000, Paid: 40000, Currency: "XOF"},
	}

	t.Run("adds to paid", func(t *testing.T) {
		s, repo, _ := newService(galleryClients{})
		repo.On("GetBookingByID", ctx, id).Return(booking, nil).Once()
		repo.On("UpdateBooking", ctx, mock.Anything).Return(nil).Once()

		b, err := s.RecordPayment(ctx, id, dto.RecordPaymentRequest{Amount: 60000, Method: "mobile_money"})
		require.NoError(t, err)
		assert.Equal(t, int64(100000), b.Pricing.Paid)
		assert.Equal(t, int64(0), b.Pricing.Balance())
		require.Len(t, b.Payments, 1)
		assert.Equal(t, testNow, b.Payments[0].PaidAt)
	})

	t.Run("overpayment", func(t *testing.T) {
		s, repo, _ := newService(galleryClients{})
		repo.On("GetBookingByID", ctx, id).Return(booking, nil).Once()

		_, err := s.RecordPayment(ctx, id, dto.RecordPaymentRequest{Amount: 60001, Method: "cash"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("cancelled booking", func(t *testing.T) {
		s, repo, _ := newService(galleryClients{})
		cancelled := booking
		cancelled.Status = models.BookingStatusCancelled
		repo.On("GetBookingByID", ctx, id).Return(cancelled, nil).Once()

		_, err := s.RecordPayment(ctx, id, dto.RecordPaymentRequest{Amount: 1, Method: "cash"})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestBookingService_Clients(t *testing.T) {
	ctx := context.Background()
	older := testNow.AddDate(0, -2, 0)
	newer := testNow.AddDate(0, -1, 0)

	galleries := galleryClients{clients: []models.Client{
		{Name: "Ama", Phone: "+22890123456", Galleries: 2, LastActivity: &newer},
		{Name: "Yao", Phone: "+22891000000", Galleries: 1},
	}}
	s, repo, _ := newService(galleries)

	repo.On("BookingClients", mock.Anything).Return([]models.Client{
		{Name: "Ama Mensah", Phone: "+228 90 12 34 56", Email: "ama@example.com", Bookings: 3, TotalSpent: 500000, LastActivity: &older},
	}, nil).Once()

	clients, err := s.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)

	assert.Equal(t, "Ama Mensah", clients[0].Name)
	assert.Equal(t, 3, clients[0].Bookings)
	assert.Equal(t, 2, clients[0].Galleries)
	assert.Equal(t, int64(500000), clients[0].TotalSpent)
	assert.Equal(t, newer, *clients[0].LastActivity)
	assert.Equal(t, "Yao", clients[1].Name)
}

func TestBookingService_Finances(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newService(galleryClients{})

	at := func(month time.Month) time.Time { return time.Date(2026, month, 15, 10, 0, 0, 0, time.UTC) }
	repo.On("GetBookings", ctx, mock.MatchedBy(func(f repository.BookingFilter) bool { return f.Page == 1 })).Return([]models.Booking{
		{Status: models.BookingStatusCompleted, ScheduledDate: at(time.January), Pricing: models.Pricing{Total: 100000, Paid: 100000}},
		{Status: models.BookingStatusCompleted, ScheduledDate: at(time.January), Pricing: models.Pricing{Total: 200000, Paid: 150000}},
		{Status: models.BookingStatusConfirmed, ScheduledDate: at(time.May), Pricing: models.Pricing{Total: 80000, Paid: 30000}},
		{Status: models.BookingStatusCancelled, ScheduledDate: at(time.June), Pricing: models.Pricing{Total: 50000, Paid: 10000}},
		{Status: models.BookingStatusPending, ScheduledDate: at(time.July), Pricing: models.Pricing{Total: 70000}},
	}, 5, nil).Once()

	sum, err := s.Finances(ctx, 2026)
	require.NoError(t, err)

	assert.Equal(t, int64(300000), sum.Revenue)
	assert.Equal(t, int64(50000), sum.Outstanding)
	assert.Equal(t, int64(280000), sum.Collected)
	assert.Equal(t, int64(300000), sum.MonthlyRevenue[0])
	assert.Equal(t, int64(150000), sum.AverageBookingSize)
	assert.Equal(t, 2, sum.BookingsByStatus["completed"])
	repo.AssertExpectations(t)

	_, err = s.Finances(ctx, 1900)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBookingService_Invoice(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newService(galleryClients{})
	id := uuid.New()

	repo.On("GetBookingByID", ctx, id).Return(models.Booking{
		ID:            id,
		BookingNumber: "BK-2026-0001",
		Client:        models.ClientInfo{Name: "Kossi Agbéko", Phone: "+22890000000"},
		ServiceType:   "wedding",
		ScheduledDate: testNow,
		Pricing:       models.Pricing{BasePrice: 300000, Discount: 20000, Total: 280000, Paid: 100000, Currency: "XOF"},
	}, nil).Once()

	pdf, name, err := s.Invoice(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "BK-2026-0001.pdf", name)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1 250 000 XOF", money(1250000, "XOF"))
	assert.Equal(t, "950 XOF", money(950, "XOF"))
	assert.Equal(t, "-20 000 XOF", money(-20000, "XOF"))
}

func TestBookingService_Delete(t *testing.T) {
	ctx := context.Background()
	s, repo, _ := newService(galleryClients{})
	id := uuid.New()

	repo.On("DeleteBooking", ctx, id).Return(storage.ErrBookingNotFound).Once()
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(s.Delete(ctx, id)))
}
