package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"photo_studio/internal/lib/logger/sl"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Cloudinary struct {
	log    *slog.Logger
	cld    *cloudinary.Cloudinary
	upload uploadAPI
}

func NewCloudinary(log *slog.Logger, cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	const op = "imaging.NewCloudinary"

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cld.Config.URL.Secure = true
	// variant URLs are stored on photos and must not carry a per-release query
	cld.Config.URL.Analytics = false

	return &Cloudinary{
		log:    log,
		cld:    cld,
		upload: &cld.Upload,
	}, nil
}

// Upload sends the original once. Every variant is derived from its public id.
func (c *Cloudinary) Upload(ctx context.Context, data []byte, folder, publicID string) (Asset, error) {
	const op = "imaging.Cloudinary.Upload"

	log := c.log.With(
		slog.String("op", op),
		slog.String("folder", folder),
		slog.String("public_id", publicID),
	)

	resp, err := c.upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID,
		Folder:       folder,
		Overwrite:    api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		log.Error("upload failed", sl.Err(err))

		return Asset{}, fmt.Errorf("%s: %w", op, err)
	}
	if resp.Error.Message != "" {
		log.Error("upload rejected", slog.String("reason", resp.Error.Message))

		return Asset{}, fmt.Errorf("%s: %s", op, resp.Error.Message)
	}
	if resp.PublicID == "" || resp.SecureURL == "" {
		return Asset{}, fmt.Errorf("%s: %w", op, errors.New("empty upload result"))
	}

	log.Debug("uploaded", slog.Int("bytes", resp.Bytes))

	return Asset{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
		Width:    resp.Width,
		Height:   resp.Height,
		Bytes:    int64(resp.Bytes),
		Format:   resp.Format,
	}, nil
}

func (c *Cloudinary) URL(publicID, transformation string) (string, error) {
	const op = "imaging.Cloudinary.URL"

	img, err := c.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	img.Transformation = transformation

	u, err := img.String()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	const op = "imaging.Cloudinary.Delete"

	resp, err := c.upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("%s: %s", op, resp.Error.Message)
	}

	return nil
}
