package request

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SendOTPRequest struct {
	Phone string `json:"phoneNumber" validate:"required,phone"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phoneNumber" validate:"required,phone"`
	Code  string `json:"otp" validate:"required,len=6,numeric"`
	// GalleryID is either the gallery id or its share link.
	GalleryID string `json:"galleryId,omitempty"`
}
