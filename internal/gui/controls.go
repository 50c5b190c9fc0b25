// Control panel: transform parameters, history buttons, crop and resize
package gui

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cv-image-editor/internal/core"
)

// labeledSlider is a slider with a value readout above it.
type labeledSlider struct {
	title  string
	format string
	slider *widget.Slider
	label  *widget.Label
}

func newLabeledSlider(title, format string, lo, hi, step float64) *labeledSlider {
	s := widget.NewSlider(lo, hi)
	s.Step = step
	ls := &labeledSlider{
		title:  title,
		format: format,
		slider: s,
		label:  widget.NewLabel(""),
	}
	ls.update(s.Value)
	return ls
}

func (ls *labeledSlider) update(v float64) {
	ls.label.SetText(fmt.Sprintf("%s: "+ls.format, ls.title, v))
}

func (ls *labeledSlider) object() fyne.CanvasObject {
	return container.NewVBox(ls.label, ls.slider)
}

// ControlPanel holds every widget that edits the live parameters or drives
// the history. Widget callbacks are suppressed while SetParams syncs the
// widgets back from the editor.
type ControlPanel struct {
	angle      *labeledSlider
	brightness *labeledSlider
	contrast   *labeledSlider
	blur       *labeledSlider
	flipH      *widget.Check
	flipV      *widget.Check
	filter     *widget.Select

	width     *widget.Entry
	height    *widget.Entry
	resizeBtn *widget.Button

	commitBtn *widget.Button
	undoBtn   *widget.Button
	redoBtn   *widget.Button
	resetBtn  *widget.Button
	cropBtn   *widget.Button

	info    *widget.Label
	metrics *widget.Label

	container fyne.CanvasObject
	syncing   bool

	OnParamsChanged func(core.TransformParameters)
	OnCommit        func()
	OnUndo          func()
	OnRedo          func()
	OnReset         func()
	OnToggleCrop    func()
	OnResize        func(width, height string)
}

func NewControlPanel() *ControlPanel {
	cp := &ControlPanel{}
	cp.initializeUI()
	cp.SetParams(core.NeutralParameters())
	cp.SetLoaded(false)
	return cp
}

func (cp *ControlPanel) initializeUI() {
	cp.angle = newLabeledSlider("Rotation", "%.0f°", core.MinAngle, core.MaxAngle, 1)
	cp.brightness = newLabeledSlider("Brightness", "%.0f", core.MinBrightness, core.MaxBrightness, 1)
	cp.contrast = newLabeledSlider("Contrast", "%.1f", core.MinContrast, core.MaxContrast, 0.1)
	cp.blur = newLabeledSlider("Blur", "%.0f", 0, core.MaxBlurRadius, 1)
	for _, ls := range []*labeledSlider{cp.angle, cp.brightness, cp.contrast, cp.blur} {
		ls.slider.OnChanged = func(v float64) {
			ls.update(v)
			cp.changed()
		}
	}

	cp.flipH = widget.NewCheck("Flip horizontal", func(bool) { cp.changed() })
	cp.flipV = widget.NewCheck("Flip vertical", func(bool) { cp.changed() })
	cp.filter = widget.NewSelect(core.FilterNames(), func(string) { cp.changed() })

	cp.width = widget.NewEntry()
	cp.width.SetPlaceHolder("width")
	cp.height = widget.NewEntry()
	cp.height.SetPlaceHolder("height")
	cp.resizeBtn = widget.NewButton("Resize", func() {
		if cp.OnResize != nil {
			cp.OnResize(cp.width.Text, cp.height.Text)
		}
	})

	cp.commitBtn = widget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), func() { call(cp.OnCommit) })
	cp.commitBtn.Importance = widget.HighImportance
	cp.undoBtn = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() { call(cp.OnUndo) })
	cp.redoBtn = widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), func() { call(cp.OnRedo) })
	cp.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() { call(cp.OnReset) })
	cp.cropBtn = widget.NewButtonWithIcon("Crop", theme.ContentCutIcon(), func() { call(cp.OnToggleCrop) })

	cp.info = widget.NewLabel("No image loaded")
	cp.metrics = widget.NewLabel("")
	cp.metrics.Wrapping = fyne.TextWrapWord

	transform := widget.NewCard("Transform", "", container.NewVBox(
		cp.angle.object(),
		container.NewGridWithColumns(2, cp.flipH, cp.flipV),
	))
	adjust := widget.NewCard("Adjust", "", container.NewVBox(
		cp.brightness.object(),
		cp.contrast.object(),
		cp.blur.object(),
		widget.NewLabel("Filter"),
		cp.filter,
	))
	history := widget.NewCard("History", "", container.NewVBox(
		cp.commitBtn,
		container.NewGridWithColumns(3, cp.undoBtn, cp.redoBtn, cp.resetBtn),
		cp.cropBtn,
	))
	resize := widget.NewCard("Resize", "", container.NewVBox(
		container.NewGridWithColumns(2, cp.width, cp.height),
		cp.resizeBtn,
	))
	status := widget.NewCard("Image", "", container.NewVBox(cp.info, cp.metrics))

	cp.container = container.NewVScroll(container.NewVBox(transform, adjust, history, resize, status))
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (cp *ControlPanel) changed() {
	if cp.syncing || cp.OnParamsChanged == nil {
		return
	}
	cp.OnParamsChanged(cp.Params())
}

// Params reads the widgets into a parameter set.
func (cp *ControlPanel) Params() core.TransformParameters {
	filter, err := core.ParseFilter(cp.filter.Selected)
	if err != nil {
		filter = core.FilterNone
	}
	return core.TransformParameters{
		Angle:      cp.angle.slider.Value,
		FlipH:      cp.flipH.Checked,
		FlipV:      cp.flipV.Checked,
		Brightness: cp.brightness.slider.Value,
		Contrast:   cp.contrast.slider.Value,
		BlurRadius: int(math.Round(cp.blur.slider.Value)),
		Filter:     filter,
	}
}

// SetParams moves the widgets to p without reporting a change.
func (cp *ControlPanel) SetParams(p core.TransformParameters) {
	cp.syncing = true
	defer func() { cp.syncing = false }()

	cp.angle.slider.SetValue(p.Angle)
	cp.angle.update(p.Angle)
	cp.brightness.slider.SetValue(p.Brightness)
	cp.brightness.update(p.Brightness)
	cp.contrast.slider.SetValue(p.Contrast)
	cp.contrast.update(p.Contrast)
	cp.blur.slider.SetValue(float64(p.BlurRadius))
	cp.blur.update(float64(p.BlurRadius))
	cp.flipH.SetChecked(p.FlipH)
	cp.flipV.SetChecked(p.FlipV)
	cp.filter.SetSelected(p.Filter.String())
}

func (cp *ControlPanel) SetLoaded(loaded bool) {
	widgets := []fyne.Disableable{
		cp.angle.slider, cp.brightness.slider, cp.contrast.slider, cp.blur.slider,
		cp.flipH, cp.flipV, cp.filter,
		cp.width, cp.height, cp.resizeBtn,
		cp.commitBtn, cp.resetBtn, cp.cropBtn,
	}
	for _, w := range widgets {
		setEnabled(w, loaded)
	}
	if !loaded {
		cp.undoBtn.Disable()
		cp.redoBtn.Disable()
		cp.info.SetText("No image loaded")
		cp.metrics.SetText("")
	}
}

func (cp *ControlPanel) SetHistory(state core.HistoryState) {
	setEnabled(cp.undoBtn, state.CanUndo())
	setEnabled(cp.redoBtn, state.CanRedo())
}

func (cp *ControlPanel) SetCropping(on bool) {
	if on {
		cp.cropBtn.SetText("Cancel crop")
		cp.cropBtn.Importance = widget.WarningImportance
	} else {
		cp.cropBtn.SetText("Crop")
		cp.cropBtn.Importance = widget.MediumImportance
	}
	cp.cropBtn.Refresh()
}

// SetImageSize prefills the resize entries with the committed dimensions.
func (cp *ControlPanel) SetImageSize(w, h int) {
	cp.width.SetText(fmt.Sprint(w))
	cp.height.SetText(fmt.Sprint(h))
}

func (cp *ControlPanel) SetInfo(text string) {
	cp.info.SetText(text)
}

func (cp *ControlPanel) SetMetrics(text string) {
	cp.metrics.SetText(text)
}

func (cp *ControlPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
