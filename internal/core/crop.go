package core

import (
	"fmt"
	"image"
)

// ApplyCrop crops the previewed image, not the raw base: the pipeline runs
// first so the selection lines up with what the user saw, then displayRect is
// mapped through layout onto the transformed buffer and sliced out.
// base is left untouched on every path.
func ApplyCrop(base *PixelBuffer, p TransformParameters, displayRect image.Rectangle, layout Layout) (*PixelBuffer, error) {
	transformed, err := Apply(base, p)
	if err != nil {
		return nil, fmt.Errorf("failed to transform before crop: %w", err)
	}

	region, err := MapDisplayRectToSource(displayRect, layout, transformed.Size())
	if err != nil {
		return nil, err
	}

	cropped, err := transformed.SubImage(region)
	if err != nil {
		return nil, err
	}
	return cropped, nil
}
