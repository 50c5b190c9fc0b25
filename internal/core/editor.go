// Editing session: history, live parameters and the crop gesture
package core

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"cv-image-editor/internal/metrics"
)

// Frame is everything the UI needs to draw one preview.
type Frame struct {
	Preview   *PixelBuffer
	Display   image.Image
	Layout    Layout
	Selection image.Rectangle // viewport coordinates, empty when nothing is selected
	Info      string
	Metrics   map[string]float64
}

// HistoryState summarizes the history for enabling undo/redo controls.
type HistoryState struct {
	Committed int
	Redo      int
}

func (s HistoryState) CanUndo() bool { return s.Committed > 1 }
func (s HistoryState) CanRedo() bool { return s.Redo > 0 }

// cropGesture tracks press → drag → release; it never touches pixels.
type cropGesture struct {
	active bool
	start  image.Point
	end    image.Point
}

func (g cropGesture) rect() image.Rectangle {
	if !g.active {
		return image.Rectangle{}
	}
	return image.Rectangle{Min: g.start, Max: g.end}.Canon()
}

// Editor is the single logical editing session behind the UI. Every failing
// operation leaves history and parameters unchanged.
type Editor struct {
	mu        sync.Mutex
	logger    logrus.FieldLogger
	history   *History
	params    TransformParameters
	evaluator *metrics.Evaluator

	cropping bool
	gesture  cropGesture
	viewport image.Point
}

func NewEditor(logger logrus.FieldLogger) *Editor {
	return &Editor{
		logger:    logger,
		history:   NewHistory(),
		params:    NeutralParameters(),
		evaluator: metrics.NewEvaluator(),
	}
}

// Load replaces the session with a freshly decoded image.
func (e *Editor) Load(img *PixelBuffer) error {
	if img == nil {
		return ErrInvalidBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.Load(img)
	e.neutralize()
	e.logger.WithField("size", img.Dimensions()).Info("Image loaded into editor")
	return nil
}

func (e *Editor) HasImage() bool {
	return e.history.Loaded()
}

// Current is the committed image the preview is computed from.
func (e *Editor) Current() *PixelBuffer {
	return e.history.Current()
}

// Info is the dimensions line shown next to the canvas.
func (e *Editor) Info() string {
	cur := e.history.Current()
	if cur == nil {
		return "No image loaded"
	}
	return "Image: " + cur.Dimensions()
}

func (e *Editor) History() HistoryState {
	return HistoryState{Committed: e.history.Len(), Redo: e.history.RedoLen()}
}

func (e *Editor) Params() TransformParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// SetParams replaces the live parameters, clamped to their ranges.
func (e *Editor) SetParams(p TransformParameters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = p.Clamped()
}

// Preview applies the live parameters to the committed image.
func (e *Editor) Preview() (*PixelBuffer, error) {
	e.mu.Lock()
	p := e.params
	e.mu.Unlock()

	cur := e.history.Current()
	if cur == nil {
		return nil, ErrNoImage
	}
	return Apply(cur, p)
}

// Render recomputes the preview and lays it out in a viewport of the given size.
func (e *Editor) Render(viewport image.Point) (*Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.history.Current()
	if cur == nil {
		return nil, ErrNoImage
	}

	preview, err := Apply(cur, e.params)
	if err != nil {
		e.logger.WithError(err).Error("Preview processing failed")
		return nil, fmt.Errorf("preview: %w", err)
	}

	layout := ComputeLayout(preview.Size(), viewport)
	e.viewport = viewport

	frame := &Frame{
		Preview:   preview,
		Display:   RenderDisplay(preview, layout),
		Layout:    layout,
		Selection: e.gesture.rect(),
		Info:      "Image: " + cur.Dimensions(),
	}
	if !e.params.IsNeutral() {
		frame.Metrics = e.compare(cur, preview)
	}

	e.logger.WithFields(logrus.Fields{
		"preview": preview.Dimensions(),
		"scale":   layout.Scale,
	}).Debug("Preview rendered")
	return frame, nil
}

// compare returns quality metrics of preview against committed, or nil when
// the sizes differ.
func (e *Editor) compare(committed, preview *PixelBuffer) map[string]float64 {
	if committed.Size() != preview.Size() {
		return nil
	}
	a, err := committed.ToMat()
	if err != nil {
		return nil
	}
	defer a.Close()
	b, err := preview.ToMat()
	if err != nil {
		return nil
	}
	defer b.Close()
	return e.evaluator.CalculateAll(a, b)
}

// Commit folds the previewed image into history and neutralizes the parameters.
// It reports whether a new snapshot was appended.
func (e *Editor) Commit() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.history.Current()
	if cur == nil {
		return false, ErrNoImage
	}

	next, err := Apply(cur, e.params)
	if err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	appended, err := e.history.Commit(next)
	if err != nil {
		return false, err
	}
	e.neutralize()

	e.logger.WithFields(logrus.Fields{
		"appended": appended,
		"history":  e.history.Len(),
	}).Info("Committed edit")
	return appended, nil
}

func (e *Editor) Undo() bool {
	return e.step("undo", e.history.Undo)
}

func (e *Editor) Redo() bool {
	return e.step("redo", e.history.Redo)
}

func (e *Editor) Reset() bool {
	return e.step("reset", e.history.Reset)
}

// step runs a history move and neutralizes parameters so the next preview
// shows the restored image without leftover adjustments.
func (e *Editor) step(name string, op func() bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.history.Loaded() {
		return false
	}
	changed := op()
	e.neutralize()

	e.logger.WithFields(logrus.Fields{
		"op":      name,
		"changed": changed,
		"history": e.history.Len(),
		"redo":    e.history.RedoLen(),
	}).Info("History step")
	return changed
}

// Resize scales the committed image (live parameters are ignored) and commits it.
func (e *Editor) Resize(w, h int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.history.Current()
	if cur == nil {
		return ErrNoImage
	}

	resized, err := Resize(cur, w, h)
	if err != nil {
		e.logger.WithError(err).Warn("Resize rejected")
		return err
	}
	if _, err := e.history.Commit(resized); err != nil {
		return err
	}
	e.neutralize()

	e.logger.WithField("size", resized.Dimensions()).Info("Image resized")
	return nil
}

// ResizeText parses the entry fields before resizing.
func (e *Editor) ResizeText(width, height string) error {
	w, h, err := ParseDimensions(width, height)
	if err != nil {
		e.logger.WithError(err).Warn("Resize rejected")
		return err
	}
	return e.Resize(w, h)
}

// ToggleCrop switches crop mode and reports the new state. Leaving crop mode
// discards any selection.
func (e *Editor) ToggleCrop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.history.Loaded() {
		return false
	}
	e.cropping = !e.cropping
	e.gesture = cropGesture{}
	return e.cropping
}

func (e *Editor) Cropping() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cropping
}

// Selection is the in-progress crop rectangle in viewport coordinates.
func (e *Editor) Selection() image.Rectangle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gesture.rect()
}

// PointerPress starts a selection at pt while in crop mode.
func (e *Editor) PointerPress(pt image.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cropping {
		return
	}
	e.gesture = cropGesture{active: true, start: pt, end: pt}
}

// PointerMove only updates the selection rectangle.
func (e *Editor) PointerMove(pt image.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cropping || !e.gesture.active {
		return
	}
	e.gesture.end = pt
}

// PointerRelease finishes the gesture and applies the crop to the previewed
// image. It reports whether a crop was committed. An invalid selection is
// discarded and returned as ErrInvalidSelection with nothing else changed.
func (e *Editor) PointerRelease(pt image.Point) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cropping || !e.gesture.active {
		return false, nil
	}
	e.gesture.end = pt
	rect := e.gesture.rect()
	e.gesture = cropGesture{}
	e.cropping = false

	cur := e.history.Current()
	if cur == nil {
		return false, ErrNoImage
	}

	// The layout follows the current preview, not the last frame drawn.
	preview, err := Apply(cur, e.params)
	if err != nil {
		return false, fmt.Errorf("crop: %w", err)
	}
	layout := ComputeLayout(preview.Size(), e.viewport)

	cropped, err := ApplyCrop(cur, e.params, rect, layout)
	if err != nil {
		fields := logrus.Fields{"selection": rect}
		if errors.Is(err, ErrInvalidSelection) {
			e.logger.WithFields(fields).Warn("Crop selection too small")
		} else {
			e.logger.WithFields(fields).WithError(err).Error("Crop failed")
		}
		return false, err
	}
	if _, err := e.history.Commit(cropped); err != nil {
		return false, err
	}
	e.neutralize()

	e.logger.WithFields(logrus.Fields{
		"selection": rect,
		"size":      cropped.Dimensions(),
	}).Info("Crop applied")
	return true, nil
}

// CropDisplayRect crops with an explicit viewport rectangle, as if the user had
// dragged it over a render of the given viewport size.
func (e *Editor) CropDisplayRect(rect image.Rectangle, viewport image.Point) error {
	if _, err := e.Render(viewport); err != nil {
		return err
	}

	e.mu.Lock()
	e.cropping = true
	e.gesture = cropGesture{active: true, start: rect.Min, end: rect.Max}
	e.mu.Unlock()

	_, err := e.PointerRelease(rect.Max)
	return err
}

func (e *Editor) neutralize() {
	e.params = NeutralParameters()
	e.cropping = false
	e.gesture = cropGesture{}
}
