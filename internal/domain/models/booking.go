package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the booking lifecycle: pending -> confirmed -> completed,
// with cancellation allowed from pending and confirmed only.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted || next == BookingStatusCancelled
	}
	return false
}

var ServiceTypes = []string{
	"wedding",
	"portrait",
	"family",
	"event",
	"corporate",
	"product",
	"maternity",
	"other",
}

func ValidServiceType(t string) bool {
	for _, s := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

type Booking struct {
	ID            uuid.UUID     `json:"id"`
	BookingNumber string        `json:"booking_number"`
	Client        ClientInfo    `json:"client"`
	ServiceType   string        `json:"service_type"`
	ScheduledDate time.Time     `json:"scheduled_date"`
	Location      string        `json:"location,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Pricing       Pricing       `json:"pricing"`
	Status        BookingStatus `json:"status"`
	Payments      []Payment     `json:"payments,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Pricing amounts are whole units of Currency (XOF has no minor unit).
type Pricing struct {
	BasePrice int64  `json:"base_price"`
	Extras    int64  `json:"extras"`
	Discount  int64  `json:"discount"`
	Total     int64  `json:"total"`
	Deposit   int64  `json:"deposit"`
	Paid      int64  `json:"paid"`
	Currency  string `json:"currency"`
}

func (p *Pricing) Recompute() {
	p.Total = p.BasePrice + p.Extras - p.Discount
	if p.Total < 0 {
		p.Total = 0
	}
}

func (p Pricing) Balance() int64 {
	return p.Total - p.Paid
}

type Payment struct {
	Amount int64     `json:"amount"`
	Method string    `json:"method"`
	Note   string    `json:"note,omitempty"`
	PaidAt time.Time `json:"paid_at"`
}

// Client is an aggregated view over bookings and galleries sharing a phone number.
type Client struct {
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email,omitempty"`
	Bookings     int        `json:"bookings"`
	Galleries    int        `json:"galleries"`
	TotalSpent   int64      `json:"total_spent"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

type FinanceSummary struct {
	Year               int            `json:"year"`
	Currency           string         `json:"currency"`
	Revenue            int64          `json:"revenue"`
	Collected          int64          `json:"collected"`
	Outstanding        int64          `json:"outstanding"`
	BookingsByStatus   map[string]int `json:"bookings_by_status"`
	MonthlyRevenue     [12]int64      `json:"monthly_revenue"`
	AverageBookingSize int64          `json:"average_booking_size"`
}
