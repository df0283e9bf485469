package dto

import (
	"time"

	"photo_studio/internal/domain/models"
)

type PricingInput struct {
	BasePrice int64  `json:"basePrice" validate:"min=0"`
	Extras    int64  `json:"extras" validate:"min=0"`
	Discount  int64  `json:"discount" validate:"min=0"`
	Deposit   int64  `json:"deposit" validate:"min=0"`
	Currency  string `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// CreateBookingRequest is posted by the public booking form.
type CreateBookingRequest struct {
	Client        ClientInfo    `json:"clientInfo" validate:"required"`
	ServiceType   string        `json:"serviceType" validate:"required"`
	ScheduledDate time.Time     `json:"scheduledDate" validate:"required"`
	Location      string        `json:"location,omitempty" validate:"max=200"`
	Notes         string        `json:"notes,omitempty" validate:"max=2000"`
	Pricing       *PricingInput `json:"pricing,omitempty"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

type RecordPaymentRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Method string `json:"method" validate:"required,oneof=cash mobile_money card transfer"`
	Note   string `json:"note,omitempty" validate:"max=200"`
}

type ListBookingsQuery struct {
	Status  string `query:"status"`
	Search  string `query:"search"`
	From    string `query:"from"`
	To      string `query:"to"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
}

type BookingList struct {
	Bookings []models.Booking `json:"bookings"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}
