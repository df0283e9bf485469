// Package imaging stores original photos on an image CDN and derives the preview,
// download and thumbnail variants from transformation descriptors instead of
// uploading them separately.
package imaging

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"photo_studio/internal/domain/models"
)

// Asset is what the CDN reports back for an uploaded original.
type Asset struct {
	PublicID string
	URL      string
	Width    int
	Height   int
	Bytes    int64
	Format   string
}

const (
	watermarkFont   = "Arial"
	previewMaxWidth = 1600
	thumbnailSize   = 400
)

var gravities = map[models.WatermarkPosition]string{
	models.PositionCenter:      "center",
	models.PositionBottomRight: "south_east",
	models.PositionBottomLeft:  "south_west",
	models.PositionTop:         "north",
}

// WatermarkTransformation overlays w.Text as semi-transparent white text and caps the
// preview width.
func WatermarkTransformation(w models.Watermark) string {
	fontSize := w.FontSize
	if fontSize <= 0 {
		fontSize = models.DefaultWatermarkFont
	}

	opacity := w.Opacity
	if opacity <= 0 || opacity > 100 {
		opacity = models.DefaultOpacity
	}

	gravity, ok := gravities[w.Position]
	if !ok {
		gravity = gravities[models.PositionCenter]
	}

	return fmt.Sprintf("l_text:%s_%d_bold:%s,co_white,o_%d/fl_layer_apply,g_%s/c_limit,w_%d/q_auto",
		watermarkFont, fontSize, escapeOverlayText(w.Text), opacity, gravity, previewMaxWidth)
}

// CleanTransformation serves the untouched original as a download.
func CleanTransformation() string {
	return "fl_attachment/q_auto"
}

func ThumbnailTransformation() string {
	return fmt.Sprintf("c_fill,w_%d,h_%d/q_auto,f_auto", thumbnailSize, thumbnailSize)
}

// Overlay text lives inside a URL path segment where commas and slashes are syntax.
func escapeOverlayText(text string) string {
	if strings.TrimSpace(text) == "" {
		text = "PREVIEW"
	}

	escaped := url.PathEscape(text)

	return strings.ReplaceAll(escaped, ",", "%2C")
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// PublicID derives a CDN-safe id from the uploaded filename plus a unique suffix.
func PublicID(filename, suffix string) string {
	stem := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "_"), "_")
	if stem == "" {
		stem = "photo"
	}
	if len(stem) > 64 {
		stem = stem[:64]
	}

	return stem + "_" + suffix
}
