// Main window: wires the editor session to the view, controls and menus
package gui

import (
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"cv-image-editor/internal/config"
	"cv-image-editor/internal/core"
	"cv-image-editor/internal/io"
)

// Application is the single editor window. Every callback runs on the fyne
// event goroutine and recomputes the preview synchronously.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger
	cfg    config.Config

	editor *core.Editor
	loader *io.ImageLoader

	view        *ImageView
	controls    *ControlPanel
	menuHandler *MenuHandler
	status      *widget.Label
}

func NewApplication(app fyne.App, cfg config.Config, logger logrus.FieldLogger) *Application {
	window := app.NewWindow("CV Image Editor")
	window.Resize(fyne.NewSize(float32(cfg.ViewportWidth)+360, float32(cfg.ViewportHeight)+80))
	window.CenterOnScreen()

	a := &Application{
		app:    app,
		window: window,
		logger: logger,
		cfg:    cfg,
	}

	a.initializeCore()
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()
	return a
}

func (a *Application) initializeCore() {
	a.editor = core.NewEditor(a.logger.WithField("component", "editor"))
	a.loader = io.NewImageLoader(a.logger.WithField("component", "io"))
	a.loader.SetJPEGQuality(a.cfg.JPEGQuality)
}

func (a *Application) initializeGUI() {
	a.view = NewImageView()
	a.controls = NewControlPanel()
	a.menuHandler = NewMenuHandler(a.window, a.editor, a.loader, a.logger)
	a.status = widget.NewLabel("Open an image to start editing (Ctrl+O)")
}

func (a *Application) setupLayout() {
	center := container.NewBorder(nil, a.status, nil, nil, a.view)

	split := container.NewHSplit(a.controls.GetContainer(), center)
	split.SetOffset(0.25)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(split)
	a.menuHandler.RegisterShortcuts()
}

func (a *Application) setupCallbacks() {
	a.controls.OnParamsChanged = func(p core.TransformParameters) {
		a.editor.SetParams(p)
		a.render()
	}
	a.controls.OnCommit = a.commit
	a.controls.OnUndo = func() { a.step("Undo", a.editor.Undo) }
	a.controls.OnRedo = func() { a.step("Redo", a.editor.Redo) }
	a.controls.OnReset = func() { a.step("Reset to original", a.editor.Reset) }
	a.controls.OnToggleCrop = a.toggleCrop
	a.controls.OnResize = a.resize

	a.menuHandler.SetEditActions(EditActions{
		Commit:     a.commit,
		Undo:       a.controls.OnUndo,
		Redo:       a.controls.OnRedo,
		Reset:      a.controls.OnReset,
		ToggleCrop: a.toggleCrop,
	})
	a.menuHandler.SetCallbacks(
		func(path string) {
			a.sync()
			a.updateStatusMessage(fmt.Sprintf("Loaded: %s", filepath.Base(path)))
		},
		func(path string) {
			a.updateStatusMessage(fmt.Sprintf("Saved: %s", filepath.Base(path)))
		},
		a.showError,
	)

	a.view.OnPress = func(pt image.Point) {
		a.editor.PointerPress(pt)
		a.view.SetSelection(a.editor.Selection())
	}
	a.view.OnMove = func(pt image.Point) {
		a.editor.PointerMove(pt)
		a.view.SetSelection(a.editor.Selection())
	}
	a.view.OnRelease = a.releaseCrop
	a.view.OnResized = func(image.Point) { a.render() }
}

func (a *Application) commit() {
	appended, err := a.editor.Commit()
	if err != nil {
		a.showError("Apply Failed", err)
		return
	}
	a.sync()
	if appended {
		a.updateStatusMessage("Adjustments applied")
	} else {
		a.updateStatusMessage("Nothing to apply")
	}
}

func (a *Application) step(name string, op func() bool) {
	if !a.editor.HasImage() {
		return
	}
	changed := op()
	a.sync()
	if changed {
		a.updateStatusMessage(name)
	}
}

func (a *Application) toggleCrop() {
	on := a.editor.ToggleCrop()
	a.controls.SetCropping(on)
	a.view.SetSelection(image.Rectangle{})
	if on {
		a.updateStatusMessage("Drag over the image to crop")
	} else if a.editor.HasImage() {
		a.updateStatusMessage("Crop cancelled")
	}
}

func (a *Application) releaseCrop(pt image.Point) {
	cropped, err := a.editor.PointerRelease(pt)
	switch {
	case errors.Is(err, core.ErrInvalidSelection):
		a.updateStatusMessage("Selection too small, crop discarded")
	case err != nil:
		a.showError("Crop Failed", err)
	case cropped:
		a.updateStatusMessage("Cropped to " + strings.TrimPrefix(a.editor.Info(), "Image: "))
	}
	a.sync()
}

func (a *Application) resize(width, height string) {
	if err := a.editor.ResizeText(width, height); err != nil {
		a.showError("Resize Failed", err)
		return
	}
	a.sync()
	a.updateStatusMessage("Resized to " + strings.TrimPrefix(a.editor.Info(), "Image: "))
}

// sync pulls the editor state back into the widgets and redraws.
func (a *Application) sync() {
	loaded := a.editor.HasImage()
	a.controls.SetLoaded(loaded)
	a.controls.SetParams(a.editor.Params())
	a.controls.SetCropping(a.editor.Cropping())
	if cur := a.editor.Current(); cur != nil {
		a.controls.SetImageSize(cur.Width(), cur.Height())
	}
	a.render()
}

func (a *Application) render() {
	if !a.editor.HasImage() {
		a.view.Clear()
		return
	}

	frame, err := a.editor.Render(a.view.Viewport())
	if err != nil {
		a.showError("Processing Error", err)
		return
	}
	a.view.SetFrame(frame)
	a.controls.SetInfo(frame.Info)
	a.controls.SetMetrics(formatMetrics(frame.Metrics))
	a.controls.SetHistory(a.editor.History())
}

func formatMetrics(m map[string]float64) string {
	if len(m) == 0 {
		return ""
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		v := m[name]
		switch {
		case math.IsInf(v, 1):
			fmt.Fprintf(&b, "%s: ∞\n", strings.ToUpper(name))
		case name == "psnr":
			fmt.Fprintf(&b, "%s: %.2f dB\n", strings.ToUpper(name), v)
		default:
			fmt.Fprintf(&b, "%s: %.2f\n", strings.ToUpper(name), v)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (a *Application) updateStatusMessage(message string) {
	a.status.SetText(message)
}

// LoadImageFromPath opens a file given on the command line.
func (a *Application) LoadImageFromPath(path string) error {
	return a.menuHandler.LoadPath(path)
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")
	a.window.ShowAndRun()
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
	a.updateStatusMessage(fmt.Sprintf("Error: %s", err.Error()))
}
