package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func filled(t *testing.T, rows, cols int, v uint8) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*3)
	for i := range data {
		data[i] = v
	}
	m, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	clone := m.Clone()
	m.Close()
	return clone
}

func TestEvaluatorRegistry(t *testing.T) {
	e := NewEvaluator()
	a := gradientMat(t, 16, 16)
	defer a.Close()

	got := e.CalculateAll(a, a)
	for _, name := range []string{"mad", "mse", "psnr", "sharpness", "ssim"} {
		assert.Contains(t, got, name)
	}
	assert.Len(t, got, 5)

	_, err := e.Calculate("vif", a, a)
	assert.Error(t, err)
}

func TestMetricsOnKnownDifference(t *testing.T) {
	a := filled(t, 8, 8, 100)
	defer a.Close()
	b := filled(t, 8, 8, 110)
	defer b.Close()

	e := NewEvaluator()
	got := e.CalculateAll(a, b)
	assert.InDelta(t, 100.0, got["mse"], 1e-9)
	assert.InDelta(t, 10.0, got["mad"], 1e-9)
	assert.InDelta(t, 20*math.Log10(25.5), got["psnr"], 1e-9)
}

func TestPSNRIdentical(t *testing.T) {
	a := filled(t, 5, 5, 42)
	defer a.Close()

	v, err := NewPSNR().Calculate(a, a)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))
}

func TestMetricsSizeMismatch(t *testing.T) {
	a := filled(t, 4, 4, 1)
	defer a.Close()
	b := filled(t, 4, 5, 1)
	defer b.Close()

	_, err := NewMSE().Calculate(a, b)
	assert.Error(t, err)
	assert.Empty(t, NewEvaluator().CalculateAll(a, b))
}

func gradientMat(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	data := make([]byte, rows*cols*3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := (y*cols + x) * 3
			v := uint8((x*37 + y*11) % 256)
			data[i], data[i+1], data[i+2] = v, v, v
		}
	}
	m, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	clone := m.Clone()
	m.Close()
	return clone
}

func TestSSIM(t *testing.T) {
	a := gradientMat(t, 32, 32)
	defer a.Close()

	same, err := NewSSIM().Calculate(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same, 1e-4)

	flat := filled(t, 32, 32, 128)
	defer flat.Close()
	diff, err := NewSSIM().Calculate(a, flat)
	require.NoError(t, err)
	assert.Less(t, diff, 0.5)
}

func TestSharpness(t *testing.T) {
	a := gradientMat(t, 32, 32)
	defer a.Close()

	ratio, err := NewSharpness().Calculate(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ratio, 1e-9)

	flat := filled(t, 32, 32, 128)
	defer flat.Close()
	lost, err := NewSharpness().Calculate(a, flat)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, lost, 1e-9)

	same, err := NewSharpness().Calculate(flat, flat)
	require.NoError(t, err)
	assert.Equal(t, 1.0, same)
}
