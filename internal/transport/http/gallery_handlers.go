package http

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"photo_studio/internal/domain/models"
	"photo_studio/internal/lib/apperr"
	"photo_studio/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
)

// VerifyGallery godoc
// @Summary Open a shared gallery
// @Description Checks the claimed phone against the gallery client phone and records a view.
// @Tags galleries
// @Accept json
// @Produce json
// @Param shareLink path string true "Share link"
// @Param request body dto.VerifyGalleryRequest true "Client phone"
// @Success 200 {object} response.Response{data=dto.PublicGallery}
// @Failure 401 {object} response.ErrorResponse "Phone mismatch"
// @Failure 403 {object} response.ErrorResponse "Expired or archived"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{shareLink}/verify [post]
func (r *Routers) VerifyGallery(c echo.Context) error {
	const op = "http.routers.VerifyGallery"

	log := r.log.With(slog.String("op", op))

	var req dto.VerifyGalleryRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.Verify(c.Request().Context(), c.Param("shareLink"), req.Phone)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, dto.NewPublicGallery(g))
}

// TrackDownload godoc
// @Summary Count a download batch
// @Description All-or-nothing: a batch that would exceed the download limit is rejected and nothing is counted.
// @Tags galleries
// @Accept json
// @Produce json
// @Param shareLink path string true "Share link"
// @Param request body dto.TrackDownloadRequest true "Phone and photo ids"
// @Success 200 {object} response.Response{data=dto.DownloadResult}
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Limit reached, expired or downloads disabled"
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{shareLink}/track-download [post]
func (r *Routers) TrackDownload(c echo.Context) error {
	const op = "http.routers.TrackDownload"

	log := r.log.With(slog.String("op", op))

	var req dto.TrackDownloadRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	res, err := r.GalleryService.TrackDownload(c.Request().Context(), c.Param("shareLink"), req.Phone, req.PhotoIDs)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, res)
}

// LikePhoto godoc
// @Summary Like a photo
// @Tags galleries
// @Accept json
// @Produce json
// @Param shareLink path string true "Share link"
// @Param photoId path string true "Photo id"
// @Param request body dto.LikePhotoRequest true "Client phone"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/galleries/{shareLink}/photos/{photoId}/like [post]
func (r *Routers) LikePhoto(c echo.Context) error {
	const op = "http.routers.LikePhoto"

	log := r.log.With(slog.String("op", op))

	var req dto.LikePhotoRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	likes, err := r.GalleryService.LikePhoto(c.Request().Context(), c.Param("shareLink"), req.Phone, c.Param("photoId"))
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, map[string]int{"likes": likes})
}

// CreateGallery godoc
// @Summary Create a gallery
// @Tags admin-galleries
// @Accept json
// @Produce json
// @Param request body dto.CreateGalleryRequest true "Gallery"
// @Success 201 {object} response.Response{data=models.Gallery}
// @Failure 400 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries [post]
func (r *Routers) CreateGallery(c echo.Context) error {
	const op = "http.routers.CreateGallery"

	log := r.log.With(slog.String("op", op))

	var req dto.CreateGalleryRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.Create(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusCreated, g)
}

// ListGalleries godoc
// @Summary List galleries
// @Tags admin-galleries
// @Produce json
// @Param status query string false "active, expired, archived or all"
// @Param search query string false "Title or client name"
// @Param page query int false "Page" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} response.Response{data=dto.GalleryList}
// @Security AdminCookie
// @Router /api/v1/admin/galleries [get]
func (r *Routers) ListGalleries(c echo.Context) error {
	const op = "http.routers.ListGalleries"

	log := r.log.With(slog.String("op", op))

	var q dto.ListGalleriesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return r.fail(c, log, apperr.Wrap(apperr.KindValidation, "invalid query parameters", err))
	}

	list, err := r.GalleryService.List(c.Request().Context(), q)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, list)
}

// GetGallery godoc
// @Summary Get a gallery
// @Tags admin-galleries
// @Produce json
// @Param id path string true "Gallery id"
// @Success 200 {object} response.Response{data=models.Gallery}
// @Failure 404 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id} [get]
func (r *Routers) GetGallery(c echo.Context) error {
	const op = "http.routers.GetGallery"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.Get(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, g)
}

// UpdateGallery godoc
// @Summary Update a gallery
// @Tags admin-galleries
// @Accept json
// @Produce json
// @Param id path string true "Gallery id"
// @Param request body dto.UpdateGalleryRequest true "Changed fields"
// @Success 200 {object} response.Response{data=models.Gallery}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id} [patch]
func (r *Routers) UpdateGallery(c echo.Context) error {
	const op = "http.routers.UpdateGallery"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	var req dto.UpdateGalleryRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.Update(c.Request().Context(), id, req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, g)
}

// UpdateGalleryStatus godoc
// @Summary Change a gallery status
// @Tags admin-galleries
// @Accept json
// @Produce json
// @Param id path string true "Gallery id"
// @Param request body dto.UpdateGalleryStatusRequest true "Status"
// @Success 200 {object} response.Response{data=models.Gallery}
// @Failure 400 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id}/status [put]
func (r *Routers) UpdateGalleryStatus(c echo.Context) error {
	const op = "http.routers.UpdateGalleryStatus"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	var req dto.UpdateGalleryStatusRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.UpdateStatus(c.Request().Context(), id, models.GalleryStatus(req.Status))
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, g)
}

// DeleteGallery godoc
// @Summary Delete a gallery
// @Tags admin-galleries
// @Param id path string true "Gallery id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id} [delete]
func (r *Routers) DeleteGallery(c echo.Context) error {
	const op = "http.routers.DeleteGallery"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	if err := r.GalleryService.Delete(c.Request().Context(), id); err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, map[string]string{"id": id.String()})
}

// AddPhoto godoc
// @Summary Upload a photo into a gallery
// @Description Stores the original once on the CDN and derives the watermarked, clean and thumbnail variants.
// @Tags admin-galleries
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Gallery id"
// @Param photo formData file true "Image (max 25MB)"
// @Param watermark_text formData string false "Overlay text"
// @Param font_size formData int false "Overlay font size"
// @Success 201 {object} response.Response{data=models.Photo}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse "CDN failure"
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id}/photos [post]
func (r *Routers) AddPhoto(c echo.Context) error {
	const op = "http.routers.AddPhoto"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	upload, err := readUpload(c, "photo")
	if err != nil {
		return r.fail(c, log, err)
	}

	photo, err := r.GalleryService.AddPhoto(c.Request().Context(), id, upload)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusCreated, photo)
}

// RemovePhoto godoc
// @Summary Remove a photo from a gallery
// @Tags admin-galleries
// @Param id path string true "Gallery id"
// @Param photoId path string true "Photo id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id}/photos/{photoId} [delete]
func (r *Routers) RemovePhoto(c echo.Context) error {
	const op = "http.routers.RemovePhoto"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}
	photoID, err := pathID(c, "photoId")
	if err != nil {
		return r.fail(c, log, err)
	}

	if err := r.GalleryService.RemovePhoto(c.Request().Context(), id, photoID); err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, map[string]string{"id": photoID.String()})
}

// ReorderPhotos godoc
// @Summary Reorder gallery photos
// @Tags admin-galleries
// @Accept json
// @Produce json
// @Param id path string true "Gallery id"
// @Param request body dto.ReorderPhotosRequest true "Every photo id in the new order"
// @Success 200 {object} response.Response{data=models.Gallery}
// @Failure 400 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id}/photos/order [put]
func (r *Routers) ReorderPhotos(c echo.Context) error {
	const op = "http.routers.ReorderPhotos"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	var req dto.ReorderPhotosRequest
	if err := bind(c, &req); err != nil {
		return r.fail(c, log, err)
	}

	g, err := r.GalleryService.ReorderPhotos(c.Request().Context(), id, req.PhotoIDs)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, g)
}

// ShareGallery godoc
// @Summary Send the share link to the client
// @Tags admin-galleries
// @Produce json
// @Param id path string true "Gallery id"
// @Success 200 {object} response.Response{data=dto.ShareResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse "Messaging failure"
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id}/share [post]
func (r *Routers) ShareGallery(c echo.Context) error {
	const op = "http.routers.ShareGallery"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	res, err := r.GalleryService.ShareWithClient(c.Request().Context(), id)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusOK, res)
}

// GalleryQRCode godoc
// @Summary QR code of the share link
// @Tags admin-galleries
// @Produce png
// @Param id path string true "Gallery id"
// @Param size query int false "Pixels, 128 to 1024" default(256)
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorResponse
// @Security AdminCookie
// @Router /api/v1/admin/galleries/{id}/qrcode [get]
func (r *Routers) GalleryQRCode(c echo.Context) error {
	const op = "http.routers.GalleryQRCode"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c, "id")
	if err != nil {
		return r.fail(c, log, err)
	}

	size, _ := strconv.Atoi(c.QueryParam("size"))

	png, err := r.GalleryService.QRCode(c.Request().Context(), id, size)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// UploadMedia godoc
// @Summary Upload a standalone watermarked image
// @Description Uploads one image and returns its four URLs. The overlay is centered at the studio opacity; text and font size default to the studio settings.
// @Tags admin-media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image (max 25MB)"
// @Param folder formData string false "CDN folder"
// @Param watermark_text formData string false "Overlay text"
// @Param font_size formData int false "Overlay font size"
// @Success 201 {object} response.Response{data=models.UploadedImage}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse "CDN failure"
// @Security AdminCookie
// @Router /api/v1/admin/media/upload [post]
func (r *Routers) UploadMedia(c echo.Context) error {
	const op = "http.routers.UploadMedia"

	log := r.log.With(slog.String("op", op))

	upload, err := readUpload(c, "file")
	if err != nil {
		return r.fail(c, log, err)
	}
	upload.Folder = c.FormValue("folder")

	img, err := r.MediaService.UploadWatermarked(c.Request().Context(), upload)
	if err != nil {
		return r.fail(c, log, err)
	}

	return ok(c, http.StatusCreated, img)
}

// readUpload reads one multipart image and the optional overlay fields.
func readUpload(c echo.Context, field string) (models.ImageUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return models.ImageUpload{}, apperr.Validation(field + " file is required")
	}
	if fh.Size > models.MaxUploadSize {
		return models.ImageUpload{}, apperr.Validation("file is too large")
	}

	src, err := fh.Open()
	if err != nil {
		return models.ImageUpload{}, apperr.Wrap(apperr.KindValidation, "unreadable file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, models.MaxUploadSize+1))
	if err != nil {
		return models.ImageUpload{}, apperr.Wrap(apperr.KindValidation, "unreadable file", err)
	}

	fontSize, _ := strconv.Atoi(c.FormValue("font_size"))

	return models.ImageUpload{
		Data:     data,
		Filename: fh.Filename,
		Watermark: models.Watermark{
			Text:     c.FormValue("watermark_text"),
			FontSize: fontSize,
		},
	}, nil
}
