package annotation

import (
	"errors"
	"fmt"
	"image"
)

// BaseHandleSize is the side of a resize handle at zoom 1, in screen pixels.
const BaseHandleSize = 10

var (
	ErrInvalidZoom  = errors.New("zoom level must be 1 or 2")
	ErrInvalidImage = errors.New("image dimensions must be positive")
)

// Viewport maps between image pixels and the zoomed display.
// The zero value has zoom 1 and no image.
type Viewport struct {
	width, height int
	zoom          int
	displayW      int
	displayH      int
	scale         float64
}

// NewViewport returns a viewport with the given zoom and no image.
func NewViewport(zoom int) (*Viewport, error) {
	if !validZoom(zoom) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidZoom, zoom)
	}
	return &Viewport{zoom: zoom, scale: float64(zoom)}, nil
}

func validZoom(level int) bool { return level == 1 || level == 2 }

// SetImage records the base pixel size and recomputes the display size.
func (v *Viewport) SetImage(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImage, width, height)
	}
	v.width, v.height = width, height
	v.update()
	return nil
}

// SetZoom changes the zoom level. It reports whether anything changed.
func (v *Viewport) SetZoom(level int) (bool, error) {
	if !validZoom(level) {
		return false, fmt.Errorf("%w: %d", ErrInvalidZoom, level)
	}
	if v.Zoom() == level {
		return false, nil
	}
	v.zoom = level
	v.update()
	return true, nil
}

func (v *Viewport) update() {
	z := v.Zoom()
	if v.width <= 0 || v.height <= 0 {
		v.displayW, v.displayH = 0, 0
		v.scale = float64(z)
		return
	}
	v.displayW = v.width * z
	v.displayH = v.height * z
	v.scale = float64(v.displayW) / float64(v.width)
}

// Zoom returns the current zoom level (1 when unset).
func (v *Viewport) Zoom() int {
	if v.zoom == 0 {
		return 1
	}
	return v.zoom
}

// Scale returns screen pixels per image pixel.
func (v *Viewport) Scale() float64 {
	if v.scale == 0 {
		return float64(v.Zoom())
	}
	return v.scale
}

// ImageSize returns the base image dimensions.
func (v *Viewport) ImageSize() (int, int) { return v.width, v.height }

// DisplaySize returns the zoomed dimensions.
func (v *Viewport) DisplaySize() (int, int) { return v.displayW, v.displayH }

// ToImage converts a screen point to image space, truncating toward zero.
func (v *Viewport) ToImage(p image.Point) image.Point {
	s := v.Scale()
	return image.Pt(int(float64(p.X)/s), int(float64(p.Y)/s))
}

// ToScreen converts an image point to screen space, truncating toward zero.
func (v *Viewport) ToScreen(p image.Point) image.Point {
	s := v.Scale()
	return image.Pt(int(float64(p.X)*s), int(float64(p.Y)*s))
}

// HandleSize is the side of a resize handle at the current zoom.
func (v *Viewport) HandleSize() int { return BaseHandleSize * v.Zoom() }

// HandleRect returns the screen-space square centred on the box corner.
func (v *Viewport) HandleRect(b Box, c Corner) image.Rectangle {
	anchor := v.ToScreen(b.Corner(c))
	size := v.HandleSize()
	origin := anchor.Sub(image.Pt(size/2, size/2))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))}
}

// ScreenRect maps a box to the display for drawing.
func (v *Viewport) ScreenRect(b Box) image.Rectangle {
	r := b.Rect()
	return image.Rectangle{Min: v.ToScreen(r.Min), Max: v.ToScreen(r.Max)}
}
