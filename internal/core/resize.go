package core

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Resize scales buf to exactly w×h using area interpolation.
func Resize(buf *PixelBuffer, w, h int) (*PixelBuffer, error) {
	if buf == nil {
		return nil, ErrNoImage
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, w, h)
	}
	if w == buf.Width() && h == buf.Height() {
		return buf, nil
	}

	src, err := buf.ToMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.Resize(src, &dst, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationArea); err != nil {
		return nil, fmt.Errorf("resize to %dx%d: %w", w, h, err)
	}
	return FromMat(dst)
}

// ParseDimensions reads width and height entered as text.
func ParseDimensions(width, height string) (int, int, error) {
	w, err := strconv.Atoi(strings.TrimSpace(width))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: width %q", ErrInvalidDimension, width)
	}
	h, err := strconv.Atoi(strings.TrimSpace(height))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: height %q", ErrInvalidDimension, height)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, w, h)
	}
	return w, h, nil
}

// ParseSize reads a "WxH" string such as "800x600".
func ParseSize(s string) (image.Point, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("%w: %q is not WxH", ErrInvalidDimension, s)
	}
	w, h, err := ParseDimensions(parts[0], parts[1])
	if err != nil {
		return image.Point{}, err
	}
	return image.Point{X: w, Y: h}, nil
}
