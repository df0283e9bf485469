package models

import (
	"time"

	"github.com/google/uuid"
)

type GalleryStatus string

const (
	GalleryStatusActive   GalleryStatus = "active"
	GalleryStatusExpired  GalleryStatus = "expired"
	GalleryStatusArchived GalleryStatus = "archived"
)

func (s GalleryStatus) Valid() bool {
	switch s {
	case GalleryStatusActive, GalleryStatusExpired, GalleryStatusArchived:
		return true
	}
	return false
}

// Gallery is stored as one document: photos, settings and statistics are embedded and
// saved together, so a save is atomic for all of them.
type Gallery struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ShareLink   string          `json:"share_link"`
	Client      ClientInfo      `json:"client"`
	Photos      []Photo         `json:"photos"`
	CoverPhoto  *uuid.UUID      `json:"cover_photo,omitempty"`
	Settings    GallerySettings `json:"settings"`
	Stats       GalleryStats    `json:"statistics"`
	Status      GalleryStatus   `json:"status"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	BookingID   *uuid.UUID      `json:"booking_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Version is the optimistic concurrency token, kept outside the document.
	Version int64 `json:"-"`
}

type ClientInfo struct {
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email,omitempty"`
	EventType string     `json:"event_type,omitempty"`
	EventDate *time.Time `json:"event_date,omitempty"`
}

type GallerySettings struct {
	DownloadLimit  int  `json:"download_limit"`
	AllowDownloads bool `json:"allow_downloads"`
	AllowLikes     bool `json:"allow_likes"`
	ShowWatermark  bool `json:"show_watermark"`
}

type GalleryStats struct {
	Views          int        `json:"views"`
	TotalDownloads int        `json:"total_downloads"`
	TotalLikes     int        `json:"total_likes"`
	LastViewedAt   *time.Time `json:"last_viewed_at,omitempty"`
}

type Photo struct {
	ID             uuid.UUID `json:"id"`
	PublicID       string    `json:"public_id"`
	Filename       string    `json:"filename"`
	OriginalURL    string    `json:"original_url"`
	WatermarkedURL string    `json:"watermarked_url"`
	CleanURL       string    `json:"clean_url"`
	ThumbnailURL   string    `json:"thumbnail_url"`
	Width          int       `json:"width,omitempty"`
	Height         int       `json:"height,omitempty"`
	Size           int64     `json:"size,omitempty"`
	Downloads      int       `json:"downloads"`
	Likes          int       `json:"likes"`
	Order          int       `json:"order"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// PastExpiry reports whether the gallery has an expiry timestamp that lies before now.
func (g *Gallery) PastExpiry(now time.Time) bool {
	return g.ExpiresAt != nil && now.After(*g.ExpiresAt)
}

// ApplyLazyExpiry moves an active gallery to expired once its expiry has passed and
// reports whether the status changed.
func (g *Gallery) ApplyLazyExpiry(now time.Time) bool {
	if g.Status == GalleryStatusActive && g.PastExpiry(now) {
		g.Status = GalleryStatusExpired
		return true
	}
	return false
}

func (g *Gallery) PhotoIndex(id uuid.UUID) int {
	for i := range g.Photos {
		if g.Photos[i].ID == id {
			return i
		}
	}
	return -1
}

// RemainingDownloads is not clamped: it goes negative when the limit was lowered below
// the downloads already made.
func (g *Gallery) RemainingDownloads() int {
	return g.Settings.DownloadLimit - g.Stats.TotalDownloads
}
