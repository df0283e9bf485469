package models

import (
	"fmt"
	"net/http"
	"strings"
)

type WatermarkPosition string

const (
	PositionCenter      WatermarkPosition = "center"
	PositionBottomRight WatermarkPosition = "south_east"
	PositionBottomLeft  WatermarkPosition = "south_west"
	PositionTop         WatermarkPosition = "north"
)

const (
	MaxUploadSize        = 25 << 20
	DefaultWatermarkFont = 60
	DefaultOpacity       = 40
)

type Watermark struct {
	Text     string            `json:"text"`
	Opacity  int               `json:"opacity"`
	FontSize int               `json:"font_size"`
	Position WatermarkPosition `json:"position"`
}

// ImageUpload is the input of a single watermarked upload.
type ImageUpload struct {
	Data      []byte
	Folder    string
	Filename  string
	Watermark Watermark
}

// UploadedImage describes the stored original and its derived variant URLs.
type UploadedImage struct {
	PublicID       string `json:"public_id"`
	OriginalURL    string `json:"original_url"`
	WatermarkedURL string `json:"watermarked_url"`
	CleanURL       string `json:"clean_url"`
	ThumbnailURL   string `json:"thumbnail_url"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Size           int64  `json:"size"`
	Format         string `json:"format,omitempty"`
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Validate checks the upload before anything is sent to the CDN.
func (u *ImageUpload) Validate() error {
	var validationErrors []string

	if len(u.Data) == 0 {
		validationErrors = append(validationErrors, "file is empty")
	}
	if len(u.Data) > MaxUploadSize {
		validationErrors = append(validationErrors, fmt.Sprintf("file exceeds %d bytes", MaxUploadSize))
	}
	if len(u.Data) > 0 {
		if ct := http.DetectContentType(u.Data); !allowedImageTypes[ct] {
			validationErrors = append(validationErrors, fmt.Sprintf("unsupported content type '%s'", ct))
		}
	}
	if strings.TrimSpace(u.Filename) == "" {
		validationErrors = append(validationErrors, "filename is required")
	}
	if len(u.Filename) > 255 {
		validationErrors = append(validationErrors, "filename must be 255 characters or less")
	}
	if u.Watermark.Opacity < 0 || u.Watermark.Opacity > 100 {
		validationErrors = append(validationErrors, "opacity must be between 0 and 100")
	}

	if len(validationErrors) > 0 {
		return &MediaValidationError{
			Errors: validationErrors,
		}
	}

	return nil
}

type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return fmt.Sprintf("media validation failed: %s", strings.Join(e.Errors, "; "))
}
