package core

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedEditor(t *testing.T, buf *PixelBuffer) *Editor {
	t.Helper()
	e := NewEditor(testLogger())
	require.NoError(t, e.Load(buf))
	return e
}

func TestEditorWithoutImage(t *testing.T) {
	e := NewEditor(testLogger())

	assert.False(t, e.HasImage())
	assert.Equal(t, "No image loaded", e.Info())

	_, err := e.Commit()
	assert.ErrorIs(t, err, ErrNoImage)
	_, err = e.Render(image.Pt(800, 600))
	assert.ErrorIs(t, err, ErrNoImage)
	_, err = e.Preview()
	assert.ErrorIs(t, err, ErrNoImage)
	assert.ErrorIs(t, e.Resize(10, 10), ErrNoImage)
	assert.False(t, e.Undo())
	assert.False(t, e.ToggleCrop())
	assert.ErrorIs(t, e.Load(nil), ErrInvalidBuffer)
}

func TestEditorCommitNeutralizes(t *testing.T) {
	e := loadedEditor(t, filled(t, 10, 10, [3]uint8{100, 100, 100}))
	assert.Equal(t, "Image: 10x10", e.Info())

	p := NeutralParameters()
	p.Brightness = 20
	e.SetParams(p)

	preview, err := e.Preview()
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{120, 120, 120}, preview.At(0, 0))

	appended, err := e.Commit()
	require.NoError(t, err)
	assert.True(t, appended)
	assert.True(t, e.Params().IsNeutral())
	assert.Equal(t, [3]uint8{120, 120, 120}, e.Current().At(5, 5))
	assert.Equal(t, HistoryState{Committed: 2}, e.History())

	// Nothing to fold in: the commit is suppressed as a duplicate.
	appended, err = e.Commit()
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Equal(t, 2, e.History().Committed)
}

func TestEditorUndoRedoReset(t *testing.T) {
	e := loadedEditor(t, filled(t, 10, 10, [3]uint8{100, 100, 100}))

	p := NeutralParameters()
	p.Brightness = 20
	e.SetParams(p)
	_, err := e.Commit()
	require.NoError(t, err)

	e.SetParams(p)
	require.True(t, e.Undo())
	assert.True(t, e.Params().IsNeutral())
	assert.Equal(t, [3]uint8{100, 100, 100}, e.Current().At(0, 0))
	assert.True(t, e.History().CanRedo())

	require.True(t, e.Redo())
	assert.Equal(t, [3]uint8{120, 120, 120}, e.Current().At(0, 0))

	e.SetParams(p)
	assert.False(t, e.Redo())
	assert.True(t, e.Params().IsNeutral(), "a no-op step still clears the live parameters")

	require.True(t, e.Reset())
	assert.Equal(t, [3]uint8{100, 100, 100}, e.Current().At(0, 0))
	assert.False(t, e.History().CanUndo())
	assert.False(t, e.History().CanRedo())
}

func TestEditorSetParamsClamps(t *testing.T) {
	e := loadedEditor(t, filled(t, 4, 4, [3]uint8{}))
	e.SetParams(TransformParameters{Angle: 720, Contrast: 9})

	p := e.Params()
	assert.Equal(t, MaxAngle, p.Angle)
	assert.Equal(t, MaxContrast, p.Contrast)
}

func TestEditorResize(t *testing.T) {
	e := loadedEditor(t, filled(t, 40, 20, [3]uint8{50, 60, 70}))

	p := NeutralParameters()
	p.Filter = FilterGrayscale
	e.SetParams(p)

	require.NoError(t, e.ResizeText("20", "10"))
	assert.Equal(t, "Image: 20x10", e.Info())
	assert.Equal(t, [3]uint8{50, 60, 70}, e.Current().At(0, 0), "resize ignores live parameters")
	assert.True(t, e.Params().IsNeutral())
	assert.Equal(t, 2, e.History().Committed)

	e.SetParams(p)
	err := e.ResizeText("abc", "10")
	assert.ErrorIs(t, err, ErrInvalidDimension)
	assert.Equal(t, 2, e.History().Committed)
	assert.Equal(t, FilterGrayscale, e.Params().Filter, "failed resize keeps parameters")

	assert.ErrorIs(t, e.Resize(0, 5), ErrInvalidDimension)
}

func TestEditorRenderMetrics(t *testing.T) {
	e := loadedEditor(t, gradient(t, 32, 24))

	frame, err := e.Render(image.Pt(800, 600))
	require.NoError(t, err)
	assert.Nil(t, frame.Metrics)
	assert.Equal(t, "Image: 32x24", frame.Info)
	assert.Equal(t, image.Rect(384, 288, 416, 312), frame.Layout.DisplayRect())

	p := NeutralParameters()
	p.Brightness = 10
	e.SetParams(p)
	frame, err = e.Render(image.Pt(800, 600))
	require.NoError(t, err)
	require.NotNil(t, frame.Metrics)
	assert.Greater(t, frame.Metrics["mse"], 0.0)
	assert.False(t, math.IsInf(frame.Metrics["psnr"], 0))

	p.Angle = 45
	e.SetParams(p)
	frame, err = e.Render(image.Pt(800, 600))
	require.NoError(t, err)
	assert.Nil(t, frame.Metrics, "no metrics across a size change")
}

func TestEditorCropGesture(t *testing.T) {
	e := loadedEditor(t, gradient(t, 1600, 1200))

	_, err := e.Render(image.Pt(800, 600))
	require.NoError(t, err)

	// Pointer events outside crop mode are ignored.
	e.PointerPress(image.Pt(10, 10))
	assert.True(t, e.Selection().Empty())

	require.True(t, e.ToggleCrop())
	e.PointerPress(image.Pt(300, 200))
	e.PointerMove(image.Pt(200, 150))
	e.PointerMove(image.Pt(100, 100))
	assert.Equal(t, image.Rect(100, 100, 300, 200), e.Selection())
	assert.Equal(t, 1, e.History().Committed, "dragging never touches pixels")

	cropped, err := e.PointerRelease(image.Pt(100, 100))
	require.NoError(t, err)
	assert.True(t, cropped)
	assert.Equal(t, "Image: 400x200", e.Info())
	assert.False(t, e.Cropping())
	assert.Equal(t, 2, e.History().Committed)

	require.True(t, e.Undo())
	assert.Equal(t, "Image: 1600x1200", e.Info())
}

func TestEditorCropFollowsResizeWithoutRender(t *testing.T) {
	e := loadedEditor(t, gradient(t, 1600, 1200))
	_, err := e.Render(image.Pt(800, 600))
	require.NoError(t, err)

	require.NoError(t, e.Resize(400, 300))
	resized := e.Current()

	// 400x300 fits the 800x600 viewport natively at offset (200,150).
	require.True(t, e.ToggleCrop())
	e.PointerPress(image.Pt(250, 200))
	cropped, err := e.PointerRelease(image.Pt(350, 300))
	require.NoError(t, err)
	assert.True(t, cropped)
	assert.Equal(t, "Image: 100x100", e.Info())
	assert.Equal(t, resized.At(50, 50), e.Current().At(0, 0))
}

func TestEditorCropRejectsTinySelection(t *testing.T) {
	e := loadedEditor(t, gradient(t, 100, 100))
	_, err := e.Render(image.Pt(800, 600))
	require.NoError(t, err)

	p := NeutralParameters()
	p.FlipV = true
	e.SetParams(p)

	require.True(t, e.ToggleCrop())
	e.PointerPress(image.Pt(400, 300))
	cropped, err := e.PointerRelease(image.Pt(401, 300))
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.False(t, cropped)

	assert.Equal(t, 1, e.History().Committed)
	assert.True(t, e.Params().FlipV, "a rejected crop leaves parameters alone")
	assert.False(t, e.Cropping())
	assert.True(t, e.Selection().Empty())
}

func TestEditorCropAppliesLiveParameters(t *testing.T) {
	base := gradient(t, 1600, 1200)
	e := loadedEditor(t, base)

	p := NeutralParameters()
	p.FlipH = true
	e.SetParams(p)

	require.NoError(t, e.CropDisplayRect(image.Rect(100, 100, 300, 200), image.Pt(800, 600)))
	assert.Equal(t, base.At(1599-200, 200), e.Current().At(0, 0))
	assert.True(t, e.Params().IsNeutral())
}

func TestEditorToggleCropClearsSelection(t *testing.T) {
	e := loadedEditor(t, gradient(t, 50, 50))

	require.True(t, e.ToggleCrop())
	e.PointerPress(image.Pt(0, 0))
	e.PointerMove(image.Pt(20, 20))
	require.False(t, e.Selection().Empty())

	assert.False(t, e.ToggleCrop())
	assert.True(t, e.Selection().Empty())

	released, err := e.PointerRelease(image.Pt(30, 30))
	require.NoError(t, err)
	assert.False(t, released)
}
