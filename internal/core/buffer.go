// Immutable 3-channel pixel storage shared by history, pipeline and display
package core

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// Channels is the fixed sample count per pixel. Samples are stored in BGR order.
const Channels = 3

// PixelBuffer is an immutable row-major BGR raster. Every operation that changes
// pixels returns a new buffer, so buffers held by History stay valid.
type PixelBuffer struct {
	width  int
	height int
	data   []byte

	digestOnce sync.Once
	digest     uint64
}

// NewPixelBuffer copies data into a new buffer. len(data) must be width*height*3.
func NewPixelBuffer(width, height int, data []byte) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, width, height)
	}
	if len(data) != width*height*Channels {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidBuffer, len(data), width, height)
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	return wrapPixels(width, height, owned), nil
}

// NewFilledBuffer returns a buffer where every pixel is the given BGR triple.
func NewFilledBuffer(width, height int, bgr [Channels]uint8) (*PixelBuffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBuffer, width, height)
	}
	data := make([]byte, width*height*Channels)
	for i := 0; i < len(data); i += Channels {
		data[i] = bgr[0]
		data[i+1] = bgr[1]
		data[i+2] = bgr[2]
	}
	return wrapPixels(width, height, data), nil
}

// wrapPixels takes ownership of data without copying.
func wrapPixels(width, height int, data []byte) *PixelBuffer {
	return &PixelBuffer{width: width, height: height, data: data}
}

func (b *PixelBuffer) Width() int  { return b.width }
func (b *PixelBuffer) Height() int { return b.height }

// Size returns the buffer dimensions as a point (X = width, Y = height).
func (b *PixelBuffer) Size() image.Point {
	return image.Point{X: b.width, Y: b.height}
}

// Dimensions formats the size as "WxH".
func (b *PixelBuffer) Dimensions() string {
	return fmt.Sprintf("%dx%d", b.width, b.height)
}

// Bytes returns a copy of the raw BGR samples.
func (b *PixelBuffer) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// At returns the BGR samples of pixel (x, y).
func (b *PixelBuffer) At(x, y int) [Channels]uint8 {
	i := (y*b.width + x) * Channels
	return [Channels]uint8{b.data[i], b.data[i+1], b.data[i+2]}
}

// Digest is the xxhash64 of the sample bytes, computed once.
func (b *PixelBuffer) Digest() uint64 {
	b.digestOnce.Do(func() {
		b.digest = xxhash.Sum64(b.data)
	})
	return b.digest
}

// Equal reports whether both buffers have the same size and identical samples.
func (b *PixelBuffer) Equal(other *PixelBuffer) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	if b.width != other.width || b.height != other.height {
		return false
	}
	if b.Digest() != other.Digest() {
		return false
	}
	return bytes.Equal(b.data, other.data)
}

// SubImage copies the pixels inside rect into a new buffer.
func (b *PixelBuffer) SubImage(rect image.Rectangle) (*PixelBuffer, error) {
	rect = rect.Canon().Intersect(image.Rect(0, 0, b.width, b.height))
	if rect.Empty() {
		return nil, fmt.Errorf("%w: empty region", ErrInvalidSelection)
	}

	w, h := rect.Dx(), rect.Dy()
	out := make([]byte, w*h*Channels)
	rowBytes := w * Channels
	for y := 0; y < h; y++ {
		src := ((rect.Min.Y+y)*b.width + rect.Min.X) * Channels
		copy(out[y*rowBytes:(y+1)*rowBytes], b.data[src:src+rowBytes])
	}
	return wrapPixels(w, h, out), nil
}

// ToMat builds an 8UC3 Mat owning a copy of the samples. The caller closes it.
func (b *PixelBuffer) ToMat() (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(b.height, b.width, gocv.MatTypeCV8UC3, b.Bytes())
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mat: %w", err)
	}
	defer view.Close()
	return view.Clone(), nil
}

// FromMat copies an OpenCV matrix into a new buffer. Gray and BGRA inputs are
// converted to BGR.
func FromMat(mat gocv.Mat) (*PixelBuffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty mat", ErrInvalidBuffer)
	}

	src := mat
	switch mat.Channels() {
	case 3:
	case 1:
		converted := gocv.NewMat()
		defer converted.Close()
		if err := gocv.CvtColor(mat, &converted, gocv.ColorGrayToBGR); err != nil {
			return nil, fmt.Errorf("gray to BGR: %w", err)
		}
		src = converted
	case 4:
		converted := gocv.NewMat()
		defer converted.Close()
		if err := gocv.CvtColor(mat, &converted, gocv.ColorBGRAToBGR); err != nil {
			return nil, fmt.Errorf("BGRA to BGR: %w", err)
		}
		src = converted
	default:
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidBuffer, mat.Channels())
	}

	if src.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("%w: unsupported mat type %v", ErrInvalidBuffer, src.Type())
	}
	return wrapPixels(src.Cols(), src.Rows(), src.ToBytes()), nil
}

// ToImage converts the buffer to an NRGBA image for display and encoding.
func (b *PixelBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for i, j := 0, 0; i < len(b.data); i, j = i+Channels, j+4 {
		img.Pix[j] = b.data[i+2]
		img.Pix[j+1] = b.data[i+1]
		img.Pix[j+2] = b.data[i]
		img.Pix[j+3] = 0xff
	}
	return img
}

// FromImage converts any image.Image to a buffer, discarding alpha.
func FromImage(img image.Image) (*PixelBuffer, error) {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidBuffer)
	}

	data := make([]byte, w*h*Channels)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			i := (y*w + x) * Channels
			data[i] = row[x*4+2]
			data[i+1] = row[x*4+1]
			data[i+2] = row[x*4]
		}
	}
	return wrapPixels(w, h, data), nil
}
