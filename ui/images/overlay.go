package images

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/soocke/fin-annotator-go/domain/annotation"
)

// Palette holds the overlay colours for each label.
type Palette struct {
	Good, GoodHover color.NRGBA
	Bad, BadHover   color.NRGBA
	HoverFillAlpha  uint8
	Handle          color.NRGBA
	HandleStroke    color.NRGBA
	Drawing         color.NRGBA
}

// DefaultPalette matches the legend shown in the sidebar.
var DefaultPalette = Palette{
	Good:           color.NRGBA{R: 0, G: 200, B: 0, A: 255},
	GoodHover:      color.NRGBA{R: 0, G: 255, B: 0, A: 255},
	Bad:            color.NRGBA{R: 200, G: 0, B: 0, A: 255},
	BadHover:       color.NRGBA{R: 255, G: 0, B: 0, A: 255},
	HoverFillAlpha: 50,
	Handle:         color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	HandleStroke:   color.NRGBA{R: 0, G: 0, B: 0, A: 255},
	Drawing:        color.NRGBA{R: 255, G: 255, B: 0, A: 255},
}

func (p Palette) stroke(l annotation.Label, hovered bool) color.NRGBA {
	switch {
	case l == annotation.GoodFin && hovered:
		return p.GoodHover
	case l == annotation.GoodFin:
		return p.Good
	case hovered:
		return p.BadHover
	default:
		return p.Bad
	}
}

// OverlayRenderer draws the annotation set over the zoomed image. The zoomed
// base is cached per source image and zoom level. Not safe for concurrent use.
type OverlayRenderer struct {
	Palette Palette

	src    image.Image
	zoom   int
	zoomed image.Image
}

// NewOverlayRenderer returns a renderer using DefaultPalette.
func NewOverlayRenderer() *OverlayRenderer { return &OverlayRenderer{Palette: DefaultPalette} }

// Render composes src at the editor's zoom with every box, the hover
// highlight, corner handles and the in-progress draw rectangle.
func (r *OverlayRenderer) Render(src image.Image, ed *annotation.Editor) image.Image {
	if src == nil || ed == nil {
		return src
	}
	vp := ed.Viewport()
	z := vp.Zoom()
	if r.src != src || r.zoom != z || r.zoomed == nil {
		r.src, r.zoom, r.zoomed = src, z, Zoom(src, z)
	}
	dc := gg.NewContextForImage(r.zoomed)
	fz := float64(z)
	hovered := ed.Hovered()

	for i, a := range ed.Items() {
		sr := vp.ScreenRect(a.Box)
		x, y := float64(sr.Min.X), float64(sr.Min.Y)
		w, h := float64(sr.Dx()), float64(sr.Dy())
		c := r.Palette.stroke(a.Label, i == hovered)
		if i == hovered {
			fill := c
			fill.A = r.Palette.HoverFillAlpha
			dc.SetColor(fill)
			dc.DrawRectangle(x, y, w, h)
			dc.Fill()
			dc.SetLineWidth(math.Max(4, 4*fz))
		} else {
			dc.SetLineWidth(math.Max(2, 2*fz))
		}
		dc.SetColor(c)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	}

	if it, ok := ed.At(hovered); ok && ed.ResizeEnabled() {
		dc.SetLineWidth(math.Max(2, 2*fz))
		for _, corner := range annotation.Corners {
			hr := vp.HandleRect(it.Box, corner)
			dc.DrawRectangle(float64(hr.Min.X), float64(hr.Min.Y), float64(hr.Dx()), float64(hr.Dy()))
			dc.SetColor(r.Palette.Handle)
			dc.FillPreserve()
			dc.SetColor(r.Palette.HandleStroke)
			dc.Stroke()
		}
	}

	if dr, ok := ed.Drawing(); ok {
		dc.SetLineWidth(math.Max(1, fz))
		dc.SetColor(r.Palette.Drawing)
		dc.DrawRectangle(float64(dr.Min.X), float64(dr.Min.Y), float64(dr.Dx()), float64(dr.Dy()))
		dc.Stroke()
	}
	return dc.Image()
}
