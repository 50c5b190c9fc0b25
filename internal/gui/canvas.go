// Image view widget: draws the rendered frame and forwards crop gestures
package gui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cv-image-editor/internal/core"
)

var selectionColor = color.NRGBA{R: 255, G: 215, B: 0, A: 255}

// ImageView shows a core.Frame at the offset and size its layout prescribes.
// Pointer positions are reported in viewport pixels, the coordinate space the
// editor maps crops from.
type ImageView struct {
	widget.BaseWidget

	frame     *core.Frame
	selection image.Rectangle

	dragging bool
	last     image.Point

	OnPress   func(image.Point)
	OnMove    func(image.Point)
	OnRelease func(image.Point)
	OnResized func(viewport image.Point)
}

func NewImageView() *ImageView {
	v := &ImageView{}
	v.ExtendBaseWidget(v)
	return v
}

func (v *ImageView) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))

	img := canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels
	img.Hide()

	sel := canvas.NewRectangle(color.Transparent)
	sel.StrokeColor = selectionColor
	sel.StrokeWidth = 2
	sel.Hide()

	return &imageViewRenderer{
		view:       v,
		background: bg,
		image:      img,
		selection:  sel,
		objects:    []fyne.CanvasObject{bg, img, sel},
	}
}

// Viewport is the current widget size in pixels.
func (v *ImageView) Viewport() image.Point {
	size := v.Size()
	return image.Point{X: int(size.Width), Y: int(size.Height)}
}

func (v *ImageView) SetFrame(frame *core.Frame) {
	v.frame = frame
	if frame != nil {
		v.selection = frame.Selection
	}
	v.Refresh()
}

// SetSelection redraws only the crop rectangle.
func (v *ImageView) SetSelection(rect image.Rectangle) {
	v.selection = rect
	v.Refresh()
}

func (v *ImageView) Clear() {
	v.frame = nil
	v.selection = image.Rectangle{}
	v.dragging = false
	v.Refresh()
}

func (v *ImageView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	v.dragging = true
	v.last = toPoint(ev.Position)
	if v.OnPress != nil {
		v.OnPress(v.last)
	}
}

func (v *ImageView) MouseUp(ev *desktop.MouseEvent) {
	if !v.dragging {
		return
	}
	v.release(toPoint(ev.Position))
}

func (v *ImageView) Dragged(ev *fyne.DragEvent) {
	if !v.dragging {
		return
	}
	v.last = toPoint(ev.Position)
	if v.OnMove != nil {
		v.OnMove(v.last)
	}
}

// DragEnd fires instead of, or before, MouseUp depending on the driver.
func (v *ImageView) DragEnd() {
	if !v.dragging {
		return
	}
	v.release(v.last)
}

func (v *ImageView) release(pt image.Point) {
	v.dragging = false
	if v.OnRelease != nil {
		v.OnRelease(pt)
	}
}

func toPoint(pos fyne.Position) image.Point {
	return image.Point{X: int(pos.X), Y: int(pos.Y)}
}

type imageViewRenderer struct {
	view       *ImageView
	background *canvas.Rectangle
	image      *canvas.Image
	selection  *canvas.Rectangle
	objects    []fyne.CanvasObject
	viewport   image.Point
}

func (r *imageViewRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.place()

	vp := image.Point{X: int(size.Width), Y: int(size.Height)}
	if vp != r.viewport && vp.X > 0 && vp.Y > 0 {
		r.viewport = vp
		if r.view.OnResized != nil {
			fyne.Do(func() { r.view.OnResized(vp) })
		}
	}
}

func (r *imageViewRenderer) place() {
	frame := r.view.frame
	if frame == nil || frame.Display == nil {
		r.image.Hide()
		r.selection.Hide()
		return
	}

	l := frame.Layout
	r.image.Move(fyne.NewPos(float32(l.OffsetX), float32(l.OffsetY)))
	r.image.Resize(fyne.NewSize(float32(l.DispW), float32(l.DispH)))
	r.image.Show()

	sel := r.view.selection.Intersect(l.DisplayRect())
	if sel.Empty() {
		r.selection.Hide()
		return
	}
	r.selection.Move(fyne.NewPos(float32(sel.Min.X), float32(sel.Min.Y)))
	r.selection.Resize(fyne.NewSize(float32(sel.Dx()), float32(sel.Dy())))
	r.selection.Show()
}

func (r *imageViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *imageViewRenderer) Refresh() {
	if r.view.frame != nil && r.view.frame.Display != nil {
		r.image.Image = r.view.frame.Display
	}
	r.background.FillColor = theme.Color(theme.ColorNameInputBackground)
	r.place()
	r.background.Refresh()
	r.image.Refresh()
	r.selection.Refresh()
}

func (r *imageViewRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *imageViewRenderer) Destroy() {}
