// Transform pipeline: rotation, flips, brightness/contrast, blur, named filter
package core

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

const angleEpsilon = 1e-4

// stage transforms src into a new Mat owned by the caller.
type stage struct {
	name  string
	apply func(src gocv.Mat, p TransformParameters) (gocv.Mat, error)
	skip  func(p TransformParameters) bool
}

// stages run strictly in this order; filters must see blurred and adjusted pixels.
var stages = []stage{
	{name: "rotate", apply: rotate, skip: func(p TransformParameters) bool { return !p.rotates() }},
	{name: "flip", apply: flip, skip: func(p TransformParameters) bool { return !p.FlipH && !p.FlipV }},
	{name: "brightness_contrast", apply: adjust, skip: func(p TransformParameters) bool { return !p.adjusts() }},
	{name: "blur", apply: blur, skip: func(p TransformParameters) bool { return p.BlurRadius <= 0 }},
	{name: "filter", apply: applyFilter, skip: func(p TransformParameters) bool { return p.Filter == FilterNone }},
}

// Apply runs the fixed transform sequence over base and returns a new buffer.
// base is never modified. Parameters are expected inside their documented
// ranges; they are not checked here. Errors only come from OpenCV itself.
func Apply(base *PixelBuffer, p TransformParameters) (*PixelBuffer, error) {
	if base == nil {
		return nil, ErrNoImage
	}
	if p.IsNeutral() {
		return base, nil
	}

	current, err := base.ToMat()
	if err != nil {
		return nil, err
	}
	defer func() { current.Close() }()

	for _, st := range stages {
		if st.skip(p) {
			continue
		}
		next, err := st.apply(current, p)
		if err != nil {
			next.Close()
			return nil, fmt.Errorf("%s stage: %w", st.name, err)
		}
		current.Close()
		current = next
	}

	return FromMat(current)
}

// RotatedSize is the minimal canvas containing a w×h rectangle rotated by angle degrees.
func RotatedSize(w, h int, angle float64) image.Point {
	rad := angle * math.Pi / 180
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))
	nw := int(math.Round(float64(h)*sin + float64(w)*cos))
	nh := int(math.Round(float64(h)*cos + float64(w)*sin))
	return image.Point{X: max(nw, 1), Y: max(nh, 1)}
}

// rotate turns the image about its center by -Angle degrees (OpenCV convention,
// so positive angles rotate clockwise on screen) onto an enlarged canvas.
func rotate(src gocv.Mat, p TransformParameters) (gocv.Mat, error) {
	w, h := src.Cols(), src.Rows()
	size := RotatedSize(w, h, p.Angle)

	// Same matrix as cv::getRotationMatrix2D with a sub-pixel center.
	rad := -p.Angle * math.Pi / 180
	alpha := math.Cos(rad)
	beta := math.Sin(rad)
	cx, cy := float64(w)/2, float64(h)/2

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer m.Close()
	m.SetDoubleAt(0, 0, alpha)
	m.SetDoubleAt(0, 1, beta)
	m.SetDoubleAt(0, 2, (1-alpha)*cx-beta*cy+float64(size.X)/2-cx)
	m.SetDoubleAt(1, 0, -beta)
	m.SetDoubleAt(1, 1, alpha)
	m.SetDoubleAt(1, 2, beta*cx+(1-alpha)*cy+float64(size.Y)/2-cy)

	dst := gocv.NewMat()
	err := gocv.WarpAffineWithParams(src, &dst, m, size, gocv.InterpolationLinear, gocv.BorderReplicate, color.RGBA{})
	return dst, err
}

// flip codes follow cv::flip: 1 horizontal, 0 vertical, -1 both.
func flip(src gocv.Mat, p TransformParameters) (gocv.Mat, error) {
	code := 0
	switch {
	case p.FlipH && p.FlipV:
		code = -1
	case p.FlipH:
		code = 1
	}
	dst := gocv.NewMat()
	err := gocv.Flip(src, &dst, code)
	return dst, err
}

// adjust computes clamp(round(in*contrast + brightness), 0, 255) per sample
// through a 256-entry lookup table.
func adjust(src gocv.Mat, p TransformParameters) (gocv.Mat, error) {
	lut := contrastTable(p.Contrast, p.Brightness)
	data := src.ToBytes()
	for i, v := range data {
		data[i] = lut[v]
	}
	view, err := gocv.NewMatFromBytes(src.Rows(), src.Cols(), src.Type(), data)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer view.Close()
	return view.Clone(), nil
}

func contrastTable(contrast, brightness float64) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = saturate(math.Round(float64(i)*contrast + brightness))
	}
	return lut
}

func saturate(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// BlurKernelSize coerces a blur radius to the odd kernel size used by Gaussian blur.
func BlurKernelSize(radius int) int {
	if radius%2 == 0 {
		return radius + 1
	}
	return radius
}

func blur(src gocv.Mat, p TransformParameters) (gocv.Mat, error) {
	return gaussian(src, BlurKernelSize(p.BlurRadius))
}

// gaussian blurs with a k×k kernel; sigma 0 lets OpenCV derive it from k.
func gaussian(src gocv.Mat, k int) (gocv.Mat, error) {
	dst := gocv.NewMat()
	err := gocv.GaussianBlur(src, &dst, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)
	return dst, err
}
