package models

import "time"

// Session is what a successful admin login hands back to the transport layer.
type Session struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GalleryAccess is issued after an OTP proved ownership of the gallery's phone number.
type GalleryAccess struct {
	Token     string    `json:"access_token"`
	GalleryID string    `json:"gallery_id,omitempty"`
	ShareLink string    `json:"share_link,omitempty"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OTPRecord struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
}

type Settings struct {
	StudioName    string            `json:"studio_name"`
	Tagline       string            `json:"tagline,omitempty"`
	ContactPhone  string            `json:"contact_phone"`
	ContactEmail  string            `json:"contact_email,omitempty"`
	Address       string            `json:"address,omitempty"`
	SocialLinks   map[string]string `json:"social_links,omitempty"`
	WatermarkText string            `json:"watermark_text"`
	Currency      string            `json:"currency"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
