package util

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	nhttp "github.com/chaos-io/bgcut/util/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	return img
}

func TestDownloadImage(t *testing.T) {
	t.Parallel()

	data, err := EncodePNG(testImage())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	cli := nhttp.NewHTTPClient()

	img, err := DownloadImage(context.Background(), cli, srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, err = DownloadImage(context.Background(), cli, srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "download image")
}

func TestSaveAndOpenImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "out.png")
	require.NoError(t, SaveImage(testImage(), path))

	img, err := OpenImage(path)
	require.NoError(t, err)
	got := color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 128}, got)

	_, err = OpenImage(filepath.Join(t.TempDir(), "none.png"))
	assert.Error(t, err)
}

func TestDecodeImage_Invalid(t *testing.T) {
	t.Parallel()

	_, err := DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.ErrorContains(t, err, "decode image")
}

func TestBytesMD5(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", BytesMD5(nil))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", BytesMD5([]byte("hello")))
}
