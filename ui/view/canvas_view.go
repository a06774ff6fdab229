package view

import (
	"image"

	"github.com/soocke/fin-annotator-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasView shows the rendered annotation canvas and the hover preview.
// Pointer events on the canvas are reported in canvas pixels.
type CanvasView interface {
	ShowCanvas(img image.Image)
	SetHoverPreview(img image.Image)
	Reset()
}

// PointerHandlers receive primary button gestures on the canvas.
type PointerHandlers struct {
	Down func(x, y int)
	Move func(x, y int)
	Up   func(x, y int)
}

type canvasView struct {
	canvasLabel  *LabelWidget
	previewLabel *LabelWidget
	canvasPhoto  *Img // last Tk photo for the canvas
	previewPhoto *Img // last Tk photo for the hover preview
}

const (
	placeholderW = 640
	placeholderH = 480
	previewSize  = 160
)

// NewCanvasView creates the canvas label inside parent and the hover preview
// inside previewParent, and binds pointer events.
func NewCanvasView(parent, previewParent *FrameWidget, h PointerHandlers) CanvasView {
	canvasPhoto := NewPhoto(Data(images.EncodePNG(image.NewNRGBA(image.Rect(0, 0, placeholderW, placeholderH)))))
	previewPhoto := NewPhoto(Data(images.EncodePNG(image.NewNRGBA(image.Rect(0, 0, previewSize, previewSize)))))
	canvas := parent.Label(Image(canvasPhoto), Anchor("nw"), Borderwidth(0))
	Grid(canvas, In(parent), Row(0), Column(0), Sticky("nw"))
	preview := previewParent.Label(Image(previewPhoto), Borderwidth(1), Relief("sunken"))
	Grid(preview, In(previewParent), Row(0), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.4m"))

	if h.Down != nil {
		Bind(canvas, "<ButtonPress-1>", Command(func(e *Event) { h.Down(e.X, e.Y) }))
	}
	if h.Move != nil {
		Bind(canvas, "<Motion>", Command(func(e *Event) { h.Move(e.X, e.Y) }))
	}
	if h.Up != nil {
		Bind(canvas, "<ButtonRelease-1>", Command(func(e *Event) { h.Up(e.X, e.Y) }))
	}
	return &canvasView{canvasLabel: canvas, previewLabel: preview, canvasPhoto: canvasPhoto, previewPhoto: previewPhoto}
}

// ShowCanvas replaces the canvas image. The canvas is never scaled: screen
// pixels must map 1:1 to the zoomed image for hit testing.
func (v *canvasView) ShowCanvas(img image.Image) {
	if v.canvasLabel == nil || img == nil {
		return
	}
	if v.canvasPhoto != nil {
		v.canvasPhoto.Delete()
	}
	v.canvasPhoto = NewPhoto(Data(images.EncodePNG(img)))
	v.canvasLabel.Configure(Image(v.canvasPhoto))
}

func (v *canvasView) SetHoverPreview(img image.Image) {
	if v.previewLabel == nil {
		return
	}
	if img == nil {
		img = image.NewNRGBA(image.Rect(0, 0, previewSize, previewSize))
	}
	if v.previewPhoto != nil {
		v.previewPhoto.Delete()
	}
	v.previewPhoto = NewPhoto(Data(images.EncodePNG(img)))
	v.previewLabel.Configure(Image(v.previewPhoto))
}

func (v *canvasView) Reset() {
	v.ShowCanvas(image.NewNRGBA(image.Rect(0, 0, placeholderW, placeholderH)))
	v.SetHoverPreview(nil)
}
