package imaging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"photo_studio/internal/domain/models"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadAPI struct {
	params  []uploader.UploadParams
	result  *uploader.UploadResult
	err     error
	destroy []string
}

func (f *fakeUploadAPI) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = append(f.params, params)
	return f.result, f.err
}

func (f *fakeUploadAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroy = append(f.destroy, params.PublicID)
	return &uploader.DestroyResult{Result: "ok"}, nil
}

func TestWatermarkTransformation(t *testing.T) {
	tests := []struct {
		name string
		in   models.Watermark
		want string
	}{
		{
			name: "zero font size and opacity use defaults",
			in:   models.Watermark{Text: "PREVIEW"},
			want: "l_text:Arial_60_bold:PREVIEW,co_white,o_40/fl_layer_apply,g_center/c_limit,w_1600/q_auto",
		},
		{
			name: "escapes commas, slashes and spaces",
			in:   models.Watermark{Text: "Studio A/B, Lomé", FontSize: 40, Opacity: 30, Position: models.PositionBottomRight},
			want: "l_text:Arial_40_bold:Studio%20A%2FB%2C%20Lom%C3%A9,co_white,o_30/fl_layer_apply,g_south_east/c_limit,w_1600/q_auto",
		},
		{
			name: "out of range opacity falls back",
			in:   models.Watermark{Text: "X", Opacity: 150, Position: "diagonal"},
			want: "l_text:Arial_60_bold:X,co_white,o_40/fl_layer_apply,g_center/c_limit,w_1600/q_auto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WatermarkTransformation(tt.in))
		})
	}
}

func TestPublicID(t *testing.T) {
	assert.Equal(t, "IMG_0042_abc", PublicID("IMG_0042.JPG", "abc"))
	assert.Equal(t, "mariage_ama_kofi_abc", PublicID("../mariage ama & kofi.png", "abc"))
	assert.Equal(t, "photo_abc", PublicID("...", "abc"))
}

func TestCloudinary_Upload(t *testing.T) {
	ctx := context.Background()

	c, err := NewCloudinary(slog.Default(), "demo", "key", "secret")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		fake := &fakeUploadAPI{result: &uploader.UploadResult{
			PublicID:  "galleries/beach_1",
			SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/galleries/beach_1.jpg",
			Width:     4000,
			Height:    3000,
			Bytes:     123456,
			Format:    "jpg",
		}}
		c.upload = fake

		asset, err := c.Upload(ctx, []byte("data"), "galleries", "beach_1")
		require.NoError(t, err)
		assert.Equal(t, "galleries/beach_1", asset.PublicID)
		assert.Equal(t, int64(123456), asset.Bytes)
		assert.Equal(t, 4000, asset.Width)

		require.Len(t, fake.params, 1)
		assert.Equal(t, "beach_1", fake.params[0].PublicID)
		assert.Equal(t, "galleries", fake.params[0].Folder)
	})

	t.Run("transport error", func(t *testing.T) {
		c.upload = &fakeUploadAPI{err: errors.New("timeout")}

		_, err := c.Upload(ctx, []byte("data"), "galleries", "beach_1")
		assert.Error(t, err)
	})

	t.Run("api error in body", func(t *testing.T) {
		c.upload = &fakeUploadAPI{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}

		_, err := c.Upload(ctx, []byte("data"), "galleries", "beach_1")
		assert.ErrorContains(t, err, "Invalid image file")
	})
}

func TestCloudinary_URL(t *testing.T) {
	c, err := NewCloudinary(slog.Default(), "demo", "key", "secret")
	require.NoError(t, err)

	u, err := c.URL("galleries/beach_1", ThumbnailTransformation())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(u, "https://res.cloudinary.com/demo/image/upload/"), u)
	assert.Contains(t, u, "c_fill,w_400,h_400/q_auto,f_auto/")
	assert.True(t, strings.HasSuffix(u, "galleries/beach_1"), u)
	assert.NotContains(t, u, "?")
}

func TestNewCloudinary_UsesSDKUploader(t *testing.T) {
	c, err := NewCloudinary(slog.Default(), "demo", "key", "secret")
	require.NoError(t, err)

	assert.Same(t, &c.cld.Upload, c.upload)
}
