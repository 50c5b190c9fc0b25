package gui

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMetrics(t *testing.T) {
	assert.Equal(t, "", formatMetrics(nil))

	got := formatMetrics(map[string]float64{
		"psnr": 31.456,
		"mse":  46.5,
		"mad":  3,
	})
	assert.Equal(t, "MAD: 3.00\nMSE: 46.50\nPSNR: 31.46 dB", got)

	assert.Equal(t, "PSNR: ∞", formatMetrics(map[string]float64{"psnr": math.Inf(1)}))
}
