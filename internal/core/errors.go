package core

import "errors"

var (
	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("no image loaded")

	// ErrInvalidSelection is returned when a crop rectangle is too small or
	// degenerate after clamping to the displayed image.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidDimension is returned for non-positive or non-numeric resize targets.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidBuffer is returned when sample data does not match the declared size.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
)
