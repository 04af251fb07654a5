// Package signature prepares uploaded signature images for placement on an
// invoice: transparency is flattened onto white and blank margins are cropped.
package signature

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DecodeError is returned when signature bytes are not a readable image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode signature image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Processed is a flattened, cropped signature ready to be embedded.
type Processed struct {
	Image *image.RGBA
	// Format is the source encoding reported by the decoder ("png", "jpeg", ...).
	Format string
}

// Width returns the pixel width.
func (p *Processed) Width() int {
	return p.Image.Bounds().Dx()
}

// Height returns the pixel height.
func (p *Processed) Height() int {
	return p.Image.Bounds().Dy()
}

// PNG encodes the processed image. The image is opaque, so the encoder emits
// a plain RGB PNG.
func (p *Processed) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Image); err != nil {
		return nil, fmt.Errorf("encode signature png: %w", err)
	}
	return buf.Bytes(), nil
}

// Options tunes Prepare.
type Options struct {
	// MaxDimension caps the longer side after cropping. Zero disables scaling.
	MaxDimension int
}

// Prepare decodes data, flattens it onto white and crops to the bounding box
// of non-white pixels. An entirely white image is returned uncropped.
func Prepare(data []byte, opts Options) (*Processed, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	img := Flatten(src)
	if box, ok := ContentBounds(img); ok {
		img = crop(img, box)
	}
	if opts.MaxDimension > 0 {
		img = downscale(img, opts.MaxDimension)
	}

	return &Processed{Image: img, Format: format}, nil
}

// Flatten composites src over an opaque white canvas of the same size,
// using src's alpha as the mask. Opaque sources are copied unchanged.
func Flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// ContentBounds returns the smallest rectangle holding every non-white pixel.
// ok is false when the image is entirely white.
func ContentBounds(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isWhite(img.RGBAAt(x, y)) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func isWhite(c color.RGBA) bool {
	return c.R == 0xff && c.G == 0xff && c.B == 0xff
}

func crop(img *image.RGBA, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

func downscale(img *image.RGBA, max int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= max && h <= max {
		return img
	}

	var nw, nh int
	if w >= h {
		nw, nh = max, h*max/w
	} else {
		nw, nh = w*max/h, max
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// NormalizeUpload decodes an uploaded signature and re-encodes it as an
// opaque PNG. The image is not cropped; that happens at render time.
func NormalizeUpload(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	p := &Processed{Image: Flatten(src), Format: format}
	return p.PNG()
}
