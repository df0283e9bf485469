package dto

import (
	"time"

	"photo_studio/internal/domain/models"

	"github.com/google/uuid"
)

type ClientInfo struct {
	Name      string     `json:"name" validate:"required,min=2,max=100"`
	Phone     string     `json:"phone" validate:"required,phone"`
	Email     string     `json:"email,omitempty" validate:"omitempty,email"`
	EventType string     `json:"event_type,omitempty" validate:"max=50"`
	EventDate *time.Time `json:"event_date,omitempty"`
}

func (c ClientInfo) ToDomain() models.ClientInfo {
	return models.ClientInfo{
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		EventType: c.EventType,
		EventDate: c.EventDate,
	}
}

type GallerySettings struct {
	DownloadLimit  *int  `json:"download_limit,omitempty" validate:"omitempty,min=0,max=100000"`
	AllowDownloads *bool `json:"allow_downloads,omitempty"`
	AllowLikes     *bool `json:"allow_likes,omitempty"`
	ShowWatermark  *bool `json:"show_watermark,omitempty"`
}

// Apply overwrites only the fields that were sent.
func (s *GallerySettings) Apply(dst *models.GallerySettings) {
	if s == nil {
		return
	}
	if s.DownloadLimit != nil {
		dst.DownloadLimit = *s.DownloadLimit
	}
	if s.AllowDownloads != nil {
		dst.AllowDownloads = *s.AllowDownloads
	}
	if s.AllowLikes != nil {
		dst.AllowLikes = *s.AllowLikes
	}
	if s.ShowWatermark != nil {
		dst.ShowWatermark = *s.ShowWatermark
	}
}

type CreateGalleryRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Client      ClientInfo       `json:"client" validate:"required"`
	Settings    *GallerySettings `json:"settings,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	BookingID   *uuid.UUID       `json:"booking_id,omitempty"`
}

type UpdateGalleryRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Client      *ClientInfo      `json:"client,omitempty"`
	Settings    *GallerySettings `json:"settings,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	ClearExpiry bool             `json:"clear_expiry,omitempty"`
	CoverPhoto  *uuid.UUID       `json:"cover_photo,omitempty"`
}

type UpdateGalleryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active expired archived"`
}

type ReorderPhotosRequest struct {
	PhotoIDs []uuid.UUID `json:"photo_ids" validate:"required,min=1"`
}

type ListGalleriesQuery struct {
	Status  string `query:"status"`
	Search  string `query:"search"`
	Page    int    `query:"page"`
	PerPage int    `query:"per_page"`
}

type VerifyGalleryRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type TrackDownloadRequest struct {
	Phone    string   `json:"phone" validate:"required,phone"`
	PhotoIDs []string `json:"photoIds" validate:"required,min=1,max=500"`
}

type LikePhotoRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}

type DownloadResult struct {
	TotalDownloads     int `json:"total_downloads"`
	DownloadLimit      int `json:"download_limit"`
	RemainingDownloads int `json:"remaining_downloads"`
}

type ShareResult struct {
	URL     string `json:"url"`
	Channel string `json:"channel"`
}

type GalleryList struct {
	Galleries []models.Gallery `json:"galleries"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	PerPage   int              `json:"per_page"`
}

type PublicPhoto struct {
	ID             uuid.UUID `json:"id"`
	Filename       string    `json:"filename"`
	WatermarkedURL string    `json:"watermarked_url"`
	ThumbnailURL   string    `json:"thumbnail_url"`
	CleanURL       string    `json:"clean_url,omitempty"`
	Width          int       `json:"width,omitempty"`
	Height         int       `json:"height,omitempty"`
	Likes          int       `json:"likes"`
}

// PublicGallery is what a verified client sees. Originals and client contact details
// stay on the admin side; clean URLs are only exposed when downloads are allowed.
type PublicGallery struct {
	ID                 uuid.UUID     `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	ClientName         string        `json:"client_name"`
	Photos             []PublicPhoto `json:"photos"`
	CoverPhoto         *uuid.UUID    `json:"cover_photo,omitempty"`
	AllowDownloads     bool          `json:"allow_downloads"`
	AllowLikes         bool          `json:"allow_likes"`
	DownloadLimit      int           `json:"download_limit"`
	TotalDownloads     int           `json:"total_downloads"`
	RemainingDownloads int           `json:"remaining_downloads"`
	Views              int           `json:"views"`
	TotalLikes         int           `json:"total_likes"`
	ExpiresAt          *time.Time    `json:"expires_at,omitempty"`
}

func NewPublicGallery(g models.Gallery) PublicGallery {
	out := PublicGallery{
		ID:                 g.ID,
		Title:              g.Title,
		Description:        g.Description,
		ClientName:         g.Client.Name,
		Photos:             make([]PublicPhoto, 0, len(g.Photos)),
		CoverPhoto:         g.CoverPhoto,
		AllowDownloads:     g.Settings.AllowDownloads,
		AllowLikes:         g.Settings.AllowLikes,
		DownloadLimit:      g.Settings.DownloadLimit,
		TotalDownloads:     g.Stats.TotalDownloads,
		RemainingDownloads: g.RemainingDownloads(),
		Views:              g.Stats.Views,
		TotalLikes:         g.Stats.TotalLikes,
		ExpiresAt:          g.ExpiresAt,
	}

	for _, p := range g.Photos {
		pp := PublicPhoto{
			ID:             p.ID,
			Filename:       p.Filename,
			WatermarkedURL: p.WatermarkedURL,
			ThumbnailURL:   p.ThumbnailURL,
			Width:          p.Width,
			Height:         p.Height,
			Likes:          p.Likes,
		}
		if g.Settings.AllowDownloads {
			pp.CleanURL = p.CleanURL
		}
		if !g.Settings.ShowWatermark {
			pp.WatermarkedURL = p.CleanURL
		}
		out.Photos = append(out.Photos, pp)
	}

	return out
}
