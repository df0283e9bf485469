package jwt

import (
	"errors"
	"fmt"
	"time"

	"photo_studio/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongAudience = errors.New("token issued for another audience")
)

const (
	audienceAdmin   = "admin"
	audienceGallery = "gallery"
)

type AdminClaims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

type GalleryClaims struct {
	Phone     string `json:"phone"`
	GalleryID string `json:"gallery_id,omitempty"`
	jwt.RegisteredClaims
}

func registered(subject, audience string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// NewAdminToken signs the admin session token embedding username, role and issue time.
func NewAdminToken(username string, role models.Role, secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := AdminClaims{
		Username:         username,
		Role:             role,
		RegisteredClaims: registered(username, audienceAdmin, now, ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

func ParseAdminToken(tokenString, secret string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parse(tokenString, secret, audienceAdmin, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func NewGalleryToken(phone, galleryID, secret string, now time.Time, ttl time.Duration) (string, error) {
	claims := GalleryClaims{
		Phone:            phone,
		GalleryID:        galleryID,
		RegisteredClaims: registered(phone, audienceGallery, now, ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

func ParseGalleryToken(tokenString, secret string) (*GalleryClaims, error) {
	claims := &GalleryClaims{}
	if err := parse(tokenString, secret, audienceGallery, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func parse(tokenString, secret, audience string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithAudience(audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalidAudience) {
			return ErrWrongAudience
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return ErrInvalidToken
	}

	return nil
}
