package core

import (
	"fmt"
	"math"
	"strings"
)

// Filter selects the named stylistic filter applied as the last pipeline stage.
type Filter int

const (
	FilterNone Filter = iota
	FilterGrayscale
	FilterBlur
	FilterCanny
	FilterEmboss
	FilterSepia
)

var filterNames = [...]string{
	FilterNone:      "None",
	FilterGrayscale: "Grayscale",
	FilterBlur:      "Blur",
	FilterCanny:     "Canny",
	FilterEmboss:    "Emboss",
	FilterSepia:     "Sepia",
}

func (f Filter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// FilterNames lists the display names in menu order.
func FilterNames() []string {
	names := make([]string, len(filterNames))
	copy(names, filterNames[:])
	return names
}

// ParseFilter maps a case-insensitive filter name. An empty string is FilterNone.
func ParseFilter(name string) (Filter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FilterNone, nil
	}
	for i, n := range filterNames {
		if strings.EqualFold(n, name) {
			return Filter(i), nil
		}
	}
	return FilterNone, fmt.Errorf("unknown filter: %q", name)
}

// Parameter ranges enforced by the UI widgets and by Clamped.
const (
	MinAngle      = -180.0
	MaxAngle      = 180.0
	MinBrightness = -100.0
	MaxBrightness = 100.0
	MinContrast   = 0.1
	MaxContrast   = 3.0
	MaxBlurRadius = 25
)

// TransformParameters is the live control state fed to the pipeline.
// It is a plain value; the pipeline never keeps a reference to it.
type TransformParameters struct {
	Angle      float64 // degrees, clockwise on screen
	FlipH      bool
	FlipV      bool
	Brightness float64
	Contrast   float64
	BlurRadius int
	Filter     Filter
}

// NeutralParameters returns the parameter set under which Apply is the identity.
func NeutralParameters() TransformParameters {
	return TransformParameters{Contrast: 1.0}
}

// IsNeutral reports whether every stage would be skipped.
func (p TransformParameters) IsNeutral() bool {
	return !p.rotates() && !p.FlipH && !p.FlipV && !p.adjusts() &&
		p.BlurRadius <= 0 && p.Filter == FilterNone
}

// Clamped returns a copy with every field forced into its documented range.
func (p TransformParameters) Clamped() TransformParameters {
	p.Angle = clampFloat(p.Angle, MinAngle, MaxAngle)
	p.Brightness = clampFloat(p.Brightness, MinBrightness, MaxBrightness)
	p.Contrast = clampFloat(p.Contrast, MinContrast, MaxContrast)
	if p.BlurRadius < 0 {
		p.BlurRadius = 0
	}
	if p.BlurRadius > MaxBlurRadius {
		p.BlurRadius = MaxBlurRadius
	}
	if p.Filter < FilterNone || p.Filter > FilterSepia {
		p.Filter = FilterNone
	}
	return p
}

func (p TransformParameters) rotates() bool {
	return math.Abs(p.Angle) >= angleEpsilon
}

func (p TransformParameters) adjusts() bool {
	return p.Contrast != 1.0 || p.Brightness != 0
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
