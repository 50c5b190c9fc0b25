package core

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

const (
	cannyLow       = 100
	cannyHigh      = 200
	filterBlurSize = 11
	embossBias     = 128
)

var embossKernel = [3][3]float32{
	{-2, -1, 0},
	{-1, 1, 1},
	{0, 1, 2},
}

var sepiaMatrix = [3][3]float32{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

func applyFilter(src gocv.Mat, p TransformParameters) (gocv.Mat, error) {
	switch p.Filter {
	case FilterGrayscale:
		return grayscale(src)
	case FilterCanny:
		return canny(src)
	case FilterEmboss:
		return emboss(src)
	case FilterSepia:
		return sepia(src)
	case FilterBlur:
		return gaussian(src, filterBlurSize)
	case FilterNone:
		return src.Clone(), nil
	default:
		return gocv.NewMat(), fmt.Errorf("unknown filter: %v", p.Filter)
	}
}

// grayscale converts to luma and expands back so all three channels are equal.
func grayscale(src gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(src, &gray, gocv.ColorBGRToGray); err != nil {
		return gocv.NewMat(), err
	}

	dst := gocv.NewMat()
	err := gocv.CvtColor(gray, &dst, gocv.ColorGrayToBGR)
	return dst, err
}

func canny(src gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(src, &gray, gocv.ColorBGRToGray); err != nil {
		return gocv.NewMat(), err
	}

	edges := gocv.NewMat()
	defer edges.Close()
	if err := gocv.Canny(gray, &edges, cannyLow, cannyHigh); err != nil {
		return gocv.NewMat(), err
	}

	dst := gocv.NewMat()
	err := gocv.CvtColor(edges, &dst, gocv.ColorGrayToBGR)
	return dst, err
}

// emboss convolves with saturating 8-bit output, then adds the bias with
// modulo-256 wraparound. A flat 128 field therefore becomes 0.
func emboss(src gocv.Mat) (gocv.Mat, error) {
	kernel := matFromRows(embossKernel)
	defer kernel.Close()

	convolved := gocv.NewMat()
	defer convolved.Close()
	if err := gocv.Filter2D(src, &convolved, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderDefault); err != nil {
		return gocv.NewMat(), err
	}

	data := convolved.ToBytes()
	for i := range data {
		data[i] += embossBias
	}
	view, err := gocv.NewMatFromBytes(convolved.Rows(), convolved.Cols(), convolved.Type(), data)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer view.Close()
	return view.Clone(), nil
}

// sepia mixes the stored channel vector through a fixed 3×3 matrix; OpenCV
// saturates the 8-bit result to [0,255].
func sepia(src gocv.Mat) (gocv.Mat, error) {
	m := matFromRows(sepiaMatrix)
	defer m.Close()

	dst := gocv.NewMat()
	err := gocv.Transform(src, &dst, m)
	return dst, err
}

func matFromRows(rows [3][3]float32) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	for r := range rows {
		for c, v := range rows[r] {
			m.SetFloatAt(r, c, v)
		}
	}
	return m
}
