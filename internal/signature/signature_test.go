package signature

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// strokeImage is a transparent canvas with one opaque black block.
func strokeImage(w, h int, stroke image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := stroke.Min.Y; y < stroke.Max.Y; y++ {
		for x := stroke.Min.X; x < stroke.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 0xff})
		}
	}
	return img
}

func TestPrepareFlattensAndCrops(t *testing.T) {
	src := strokeImage(200, 100, image.Rect(40, 30, 120, 60))

	p, err := Prepare(encodePNG(t, src), Options{})
	require.NoError(t, err)

	assert.Equal(t, "png", p.Format)
	assert.Equal(t, 80, p.Width())
	assert.Equal(t, 30, p.Height())
	assert.Equal(t, color.RGBA{A: 0xff}, p.Image.RGBAAt(0, 0))
}

func TestPrepareTransparentBecomesWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	p, err := Prepare(encodePNG(t, src), Options{})
	require.NoError(t, err)

	// Uniform white has no content bounds, so nothing is cropped.
	assert.Equal(t, 10, p.Width())
	assert.Equal(t, 10, p.Height())
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, p.Image.RGBAAt(5, 5))
}

func TestPrepareHalfTransparentBlends(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{A: 0x80})

	flat := Flatten(src)
	c := flat.RGBAAt(0, 0)
	assert.Equal(t, uint8(0xff), c.A)
	assert.InDelta(t, 0x7f, int(c.R), 1)
}

func TestPrepareJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.Gray{Y: 0x20})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	p, err := Prepare(buf.Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", p.Format)
	assert.Equal(t, 64, p.Width())
}

func TestPrepareDownscale(t *testing.T) {
	src := strokeImage(1000, 500, image.Rect(0, 0, 1000, 500))

	p, err := Prepare(encodePNG(t, src), Options{MaxDimension: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, p.Width())
	assert.Equal(t, 50, p.Height())
}

func TestPrepareRejectsGarbage(t *testing.T) {
	_, err := Prepare([]byte("definitely not an image"), Options{})
	require.Error(t, err)

	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestProcessedPNGIsOpaque(t *testing.T) {
	p, err := Prepare(encodePNG(t, strokeImage(20, 20, image.Rect(5, 5, 15, 15))), Options{})
	require.NoError(t, err)

	data, err := p.PNG()
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, color.RGBAModel, cfg.ColorModel)
}

func TestNormalizeUploadKeepsSizeAndDropsAlpha(t *testing.T) {
	data, err := NormalizeUpload(encodePNG(t, strokeImage(40, 20, image.Rect(5, 5, 10, 10))))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestNormalizeUploadRejectsGarbage(t *testing.T) {
	_, err := NormalizeUpload([]byte("GIF89a but not really"))

	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}
