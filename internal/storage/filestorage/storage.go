package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"photo_studio/internal/imaging"
	"photo_studio/internal/storage"

	_ "golang.org/x/image/webp"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalFileStorage stands in for the image CDN in local development. Originals are
// written under baseDir and served from baseURL; variant URLs carry the transformation
// descriptor as a query parameter instead of being rendered.
type LocalFileStorage struct {
	baseDir string // e.g. "./uploads"
	baseURL string // e.g. "http://localhost:8080/uploads"
}

func NewLocalFileStorage(baseDir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalFileStorage) Upload(ctx context.Context, data []byte, folder, publicID string) (imaging.Asset, error) {
	const op = "filestorage.LocalFileStorage.Upload"

	if err := ctx.Err(); err != nil {
		return imaging.Asset{}, err
	}

	ext, ok := extensions[http.DetectContentType(data)]
	if !ok {
		return imaging.Asset{}, fmt.Errorf("%s: %w", op, storage.ErrInvalidFileType)
	}

	id := strings.TrimPrefix(path.Clean("/"+path.Join(folder, publicID)), "/")
	filePath, err := s.resolve(id + ext)
	if err != nil {
		return imaging.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return imaging.Asset{}, fmt.Errorf("%s: failed to create directories: %w", op, err)
	}

	// write then rename so readers never see a partial file
	tmp := filePath + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return imaging.Asset{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmp)
		return imaging.Asset{}, err
	}
	if err := os.Rename(tmp, filePath); err != nil {
		_ = os.Remove(tmp)
		return imaging.Asset{}, fmt.Errorf("%s: %w", op, err)
	}

	asset := imaging.Asset{
		PublicID: id,
		URL:      s.baseURL + "/" + id + ext,
		Bytes:    int64(len(data)),
		Format:   strings.TrimPrefix(ext, "."),
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		asset.Width, asset.Height = cfg.Width, cfg.Height
	}

	return asset, nil
}

func (s *LocalFileStorage) URL(publicID, transformation string) (string, error) {
	file, err := s.find(publicID)
	if err != nil {
		return "", err
	}

	u := s.baseURL + "/" + file
	if transformation != "" {
		u += "?tr=" + url.QueryEscape(transformation)
	}

	return u, nil
}

func (s *LocalFileStorage) Delete(ctx context.Context, publicID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := s.find(publicID)
	if err != nil {
		return err
	}

	return os.Remove(s.GetFullPath(file))
}

// GetFullPath returns the on-disk path of a stored file.
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(relativePath))
}

func (s *LocalFileStorage) find(publicID string) (string, error) {
	for _, ext := range extensions {
		p, err := s.resolve(publicID + ext)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(p); err == nil {
			return publicID + ext, nil
		}
	}

	return "", fmt.Errorf("filestorage: %s: %w", publicID, storage.ErrFileNotFound)
}

// resolve keeps every path inside baseDir.
func (s *LocalFileStorage) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("filestorage: empty path")
	}

	return filepath.Join(s.baseDir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
