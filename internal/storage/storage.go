package storage

import "errors"

var (
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrGalleryNotFound  = errors.New("gallery not found")
	ErrGalleryExists    = errors.New("gallery share link already exists")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrBookingExists    = errors.New("booking number already exists")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrVersionConflict  = errors.New("document was modified concurrently")
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
