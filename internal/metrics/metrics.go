// Quality metrics comparing the committed image with the live preview
package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// Metric compares two images of equal size.
type Metric interface {
	Calculate(original, processed gocv.Mat) (float64, error)
	Name() string
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator returns an evaluator with every built-in metric registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{metrics: make(map[string]Metric)}
	e.Register(NewMSE())
	e.Register(NewPSNR())
	e.Register(NewMeanAbsDiff())
	e.Register(NewSSIM())
	e.Register(NewSharpness())
	return e
}

func (e *Evaluator) Register(m Metric) {
	e.metrics[m.Name()] = m
}

func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	m, ok := e.metrics[name]
	if !ok {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return m.Calculate(original, processed)
}

// CalculateAll skips metrics that fail, e.g. on size mismatch.
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64, len(e.metrics))
	for name, m := range e.metrics {
		if v, err := m.Calculate(original, processed); err == nil {
			results[name] = v
		}
	}
	return results
}

// MSE is the mean squared difference over all samples.
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Name() string         { return "mse" }

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	a, b, err := samples(original, processed)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum / float64(len(a)), nil
}

// PSNR is the peak signal-to-noise ratio in dB; identical images give +Inf.
type PSNR struct {
	mse MSE
}

func NewPSNR() *PSNR { return &PSNR{} }

func (p *PSNR) Name() string         { return "psnr" }

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	mse, err := p.mse.Calculate(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255/math.Sqrt(mse)), nil
}

// MeanAbsDiff is the mean absolute sample difference.
type MeanAbsDiff struct{}

func NewMeanAbsDiff() *MeanAbsDiff { return &MeanAbsDiff{} }

func (m *MeanAbsDiff) Name() string         { return "mad" }

func (m *MeanAbsDiff) Calculate(original, processed gocv.Mat) (float64, error) {
	a, b, err := samples(original, processed)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum / float64(len(a)), nil
}

func samples(original, processed gocv.Mat) ([]byte, []byte, error) {
	if original.Empty() || processed.Empty() {
		return nil, nil, fmt.Errorf("empty images")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() ||
		original.Channels() != processed.Channels() {
		return nil, nil, fmt.Errorf("image dimensions mismatch")
	}
	if original.Type() != processed.Type() {
		return nil, nil, fmt.Errorf("image type mismatch")
	}
	return original.ToBytes(), processed.ToBytes(), nil
}
