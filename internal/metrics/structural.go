package metrics

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// SSIM constants for 8-bit samples: (0.01*255)^2 and (0.03*255)^2.
const (
	ssimC1     = 6.5025
	ssimC2     = 58.5225
	ssimWindow = 11
	ssimSigma  = 1.5
)

// SSIM is the mean structural similarity of the luma planes, 1 for identical images.
type SSIM struct{}

func NewSSIM() *SSIM { return &SSIM{} }

func (s *SSIM) Name() string         { return "ssim" }

func (s *SSIM) Calculate(original, processed gocv.Mat) (float64, error) {
	if _, _, err := samples(original, processed); err != nil {
		return 0, err
	}

	f1, err := lumaFloat(original)
	if err != nil {
		return 0, err
	}
	defer f1.Close()
	f2, err := lumaFloat(processed)
	if err != nil {
		return 0, err
	}
	defer f2.Close()

	mu1 := window(f1)
	defer mu1.Close()
	mu2 := window(f2)
	defer mu2.Close()

	mu1Sq := product(mu1, mu1)
	defer mu1Sq.Close()
	mu2Sq := product(mu2, mu2)
	defer mu2Sq.Close()
	mu1Mu2 := product(mu1, mu2)
	defer mu1Mu2.Close()

	sigma1Sq := localMoment(f1, f1, mu1Sq)
	defer sigma1Sq.Close()
	sigma2Sq := localMoment(f2, f2, mu2Sq)
	defer sigma2Sq.Close()
	sigma12 := localMoment(f1, f2, mu1Mu2)
	defer sigma12.Close()

	// (2·μ1μ2 + C1)(2·σ12 + C2) / ((μ1² + μ2² + C1)(σ1² + σ2² + C2))
	mu1Mu2.MultiplyFloat(2)
	mu1Mu2.AddFloat(ssimC1)
	sigma12.MultiplyFloat(2)
	sigma12.AddFloat(ssimC2)
	numerator := product(mu1Mu2, sigma12)
	defer numerator.Close()

	den1 := gocv.NewMat()
	defer den1.Close()
	gocv.Add(mu1Sq, mu2Sq, &den1)
	den1.AddFloat(ssimC1)
	den2 := gocv.NewMat()
	defer den2.Close()
	gocv.Add(sigma1Sq, sigma2Sq, &den2)
	den2.AddFloat(ssimC2)
	denominator := product(den1, den2)
	defer denominator.Close()

	ssimMap := gocv.NewMat()
	defer ssimMap.Close()
	gocv.Divide(numerator, denominator, &ssimMap)

	return ssimMap.Mean().Val1, nil
}

// Sharpness is the ratio of Laplacian variance, processed over original.
// Values below 1 mean detail was lost.
type Sharpness struct{}

func NewSharpness() *Sharpness { return &Sharpness{} }

func (s *Sharpness) Name() string         { return "sharpness" }

func (s *Sharpness) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	orig, err := laplacianVariance(original)
	if err != nil {
		return 0, err
	}
	proc, err := laplacianVariance(processed)
	if err != nil {
		return 0, err
	}
	if orig == 0 {
		if proc == 0 {
			return 1, nil
		}
		return 0, fmt.Errorf("original has no detail to compare against")
	}
	return proc / orig, nil
}

func laplacianVariance(input gocv.Mat) (float64, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
		return 0, err
	}

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)

	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd, nil
}

func lumaFloat(input gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
		return gocv.NewMat(), err
	}
	f := gocv.NewMat()
	gray.ConvertTo(&f, gocv.MatTypeCV32F)
	return f, nil
}

func window(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Pt(ssimWindow, ssimWindow), ssimSigma, ssimSigma, gocv.BorderDefault)
	return dst
}

func product(a, b gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Multiply(a, b, &dst)
	return dst
}

// localMoment is blur(a·b) - mean.
func localMoment(a, b, mean gocv.Mat) gocv.Mat {
	ab := product(a, b)
	defer ab.Close()
	blurred := window(ab)
	defer blurred.Close()

	dst := gocv.NewMat()
	gocv.Subtract(blurred, mean, &dst)
	return dst
}
