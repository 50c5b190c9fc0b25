package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeutralParameters(t *testing.T) {
	p := NeutralParameters()
	assert.True(t, p.IsNeutral())
	assert.Equal(t, 1.0, p.Contrast)

	cases := map[string]func(*TransformParameters){
		"angle":      func(p *TransformParameters) { p.Angle = 1 },
		"flip h":     func(p *TransformParameters) { p.FlipH = true },
		"flip v":     func(p *TransformParameters) { p.FlipV = true },
		"brightness": func(p *TransformParameters) { p.Brightness = -5 },
		"contrast":   func(p *TransformParameters) { p.Contrast = 1.5 },
		"blur":       func(p *TransformParameters) { p.BlurRadius = 3 },
		"filter":     func(p *TransformParameters) { p.Filter = FilterSepia },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := NeutralParameters()
			mutate(&p)
			assert.False(t, p.IsNeutral())
		})
	}

	tiny := NeutralParameters()
	tiny.Angle = angleEpsilon / 2
	assert.True(t, tiny.IsNeutral())
}

func TestClamped(t *testing.T) {
	p := TransformParameters{
		Angle:      400,
		Brightness: -250,
		Contrast:   0,
		BlurRadius: 99,
		Filter:     Filter(42),
	}.Clamped()

	assert.Equal(t, MaxAngle, p.Angle)
	assert.Equal(t, MinBrightness, p.Brightness)
	assert.Equal(t, MinContrast, p.Contrast)
	assert.Equal(t, MaxBlurRadius, p.BlurRadius)
	assert.Equal(t, FilterNone, p.Filter)

	nan := TransformParameters{Contrast: math.NaN()}.Clamped()
	assert.Equal(t, MinContrast, nan.Contrast)

	neg := TransformParameters{Contrast: 1, BlurRadius: -3}.Clamped()
	assert.Equal(t, 0, neg.BlurRadius)
}

func TestParseFilter(t *testing.T) {
	for i, name := range FilterNames() {
		f, err := ParseFilter(name)
		require.NoError(t, err)
		assert.Equal(t, Filter(i), f)
		assert.Equal(t, name, f.String())
	}

	f, err := ParseFilter("  sePIA ")
	require.NoError(t, err)
	assert.Equal(t, FilterSepia, f)

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterNone, f)

	_, err = ParseFilter("posterize")
	assert.Error(t, err)

	assert.Equal(t, "Filter(9)", Filter(9).String())
}
