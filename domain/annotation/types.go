package annotation

import (
	"image"
)

// Label classifies a box.
type Label int

const (
	GoodFin Label = iota
	BadFin
)

// Class ids used by the label file format and the detector.
const (
	GoodFinClassID = 1
	BadFinClassID  = 0
)

func (l Label) String() string {
	switch l {
	case GoodFin:
		return "good_fin"
	case BadFin:
		return "bad_fin"
	default:
		return "unknown"
	}
}

// ClassID returns the id written to label files.
func (l Label) ClassID() int {
	if l == GoodFin {
		return GoodFinClassID
	}
	return BadFinClassID
}

// Toggle flips GoodFin and BadFin.
func (l Label) Toggle() Label {
	if l == GoodFin {
		return BadFin
	}
	return GoodFin
}

// LabelFromClassID maps a class id to a label: 1 is GoodFin, everything else BadFin.
func LabelFromClassID(id int) Label {
	if id == GoodFinClassID {
		return GoodFin
	}
	return BadFin
}

// ParseLabel accepts the String forms; unknown input reports false.
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "good_fin", "good", "GoodFin":
		return GoodFin, true
	case "bad_fin", "bad", "BadFin":
		return BadFin, true
	default:
		return GoodFin, false
	}
}

// Box is an axis-aligned rectangle in image pixels. W and H may be negative
// while a resize gesture drags an edge past its opposite edge.
type Box struct {
	X, Y, W, H int
}

// BoxFromRect converts an image.Rectangle (canonicalised) to a Box.
func BoxFromRect(r image.Rectangle) Box {
	r = r.Canon()
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Normalized returns the same area with non-negative width and height.
func (b Box) Normalized() Box {
	if b.W < 0 {
		b.X += b.W
		b.W = -b.W
	}
	if b.H < 0 {
		b.Y += b.H
		b.H = -b.H
	}
	return b
}

// Rect returns the normalised box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	n := b.Normalized()
	return image.Rect(n.X, n.Y, n.X+n.W, n.Y+n.H)
}

// Contains reports whether p lies inside the normalised box (half-open).
func (b Box) Contains(p image.Point) bool {
	return p.In(b.Rect())
}

// TopLeft returns the stored origin.
func (b Box) TopLeft() image.Point { return image.Pt(b.X, b.Y) }

// Corner returns the image-space point of the given corner.
func (b Box) Corner(c Corner) image.Point {
	p := image.Pt(b.X, b.Y)
	if c.right() {
		p.X = b.X + b.W
	}
	if c.bottom() {
		p.Y = b.Y + b.H
	}
	return p
}

// Corner identifies one of the four resize handles.
type Corner int

const (
	NoCorner Corner = iota
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

// Corners lists the handles in hit-test order.
var Corners = [...]Corner{TopLeft, TopRight, BottomLeft, BottomRight}

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "topleft"
	case TopRight:
		return "topright"
	case BottomLeft:
		return "bottomleft"
	case BottomRight:
		return "bottomright"
	default:
		return "none"
	}
}

func (c Corner) top() bool    { return c == TopLeft || c == TopRight }
func (c Corner) bottom() bool { return c == BottomLeft || c == BottomRight }
func (c Corner) left() bool   { return c == TopLeft || c == BottomLeft }
func (c Corner) right() bool  { return c == TopRight || c == BottomRight }

// Annotation pairs a box with its label.
type Annotation struct {
	Box   Box
	Label Label
}
