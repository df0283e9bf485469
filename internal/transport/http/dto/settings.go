package dto

type UpdateSettingsRequest struct {
	StudioName    *string           `json:"studio_name,omitempty" validate:"omitempty,min=1,max=100"`
	Tagline       *string           `json:"tagline,omitempty" validate:"omitempty,max=200"`
	ContactPhone  *string           `json:"contact_phone,omitempty" validate:"omitempty,phone"`
	ContactEmail  *string           `json:"contact_email,omitempty" validate:"omitempty,email"`
	Address       *string           `json:"address,omitempty" validate:"omitempty,max=300"`
	SocialLinks   map[string]string `json:"social_links,omitempty" validate:"omitempty,dive,url"`
	WatermarkText *string           `json:"watermark_text,omitempty" validate:"omitempty,min=1,max=60"`
	Currency      *string           `json:"currency,omitempty" validate:"omitempty,len=3"`
}
