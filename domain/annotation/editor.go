package annotation

import (
	"image"
	"log/slog"
)

// MinBoxSize is the exclusive lower bound, in image pixels, on both sides of
// a drawn box before it is accepted.
const MinBoxSize = 5

// State enumerates the pointer gesture states of the editor.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateDragging
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Editor owns the annotation set of one image together with its viewport and
// translates pointer events into box edits. It is not safe for concurrent use;
// all calls are expected from the UI event loop.
type Editor struct {
	vp     *Viewport
	items  []Annotation
	logger *slog.Logger

	hovered  int
	state    State
	modified bool

	resizeEnabled bool
	defaultLabel  Label

	// gesture state
	start, end image.Point // drawing, screen space
	last       image.Point // last pointer position for drag/resize deltas
	target     int
	corner     Corner
	origin     image.Point // top-left of the dragged box at pointer-down
}

// NewEditor returns an idle editor bound to vp. A nil viewport gets zoom 1.
func NewEditor(vp *Viewport, logger *slog.Logger) *Editor {
	if vp == nil {
		vp = &Viewport{}
	}
	return &Editor{vp: vp, logger: logger, hovered: -1, target: -1}
}

// Viewport exposes the coordinate mapper for rendering.
func (e *Editor) Viewport() *Viewport { return e.vp }

func (e *Editor) State() State        { return e.state }
func (e *Editor) Hovered() int        { return e.hovered }
func (e *Editor) Len() int            { return len(e.items) }
func (e *Editor) Modified() bool      { return e.modified }
func (e *Editor) ResizeEnabled() bool { return e.resizeEnabled }
func (e *Editor) DefaultLabel() Label { return e.defaultLabel }

// Items returns a copy of the annotation set in insertion order.
func (e *Editor) Items() []Annotation {
	out := make([]Annotation, len(e.items))
	copy(out, e.items)
	return out
}

// At returns the annotation at i.
func (e *Editor) At(i int) (Annotation, bool) {
	if i < 0 || i >= len(e.items) {
		return Annotation{}, false
	}
	return e.items[i], true
}

// SetResizeEnabled turns the corner handles on or off.
func (e *Editor) SetResizeEnabled(on bool) { e.resizeEnabled = on }

// SetDefaultLabel sets the label given to newly drawn boxes.
func (e *Editor) SetDefaultLabel(l Label) { e.defaultLabel = l }

// SetZoom forwards to the viewport. Box coordinates are unaffected.
func (e *Editor) SetZoom(level int) (bool, error) { return e.vp.SetZoom(level) }

// MarkSaved clears the modified flag after a successful save.
func (e *Editor) MarkSaved() { e.modified = false }

// Drawing returns the in-progress rectangle in screen space.
func (e *Editor) Drawing() (image.Rectangle, bool) {
	if e.state != StateDrawing {
		return image.Rectangle{}, false
	}
	return image.Rectangle{Min: e.start, Max: e.end}.Canon(), true
}

// OnPointerDown starts a gesture at the screen position pos.
func (e *Editor) OnPointerDown(pos image.Point) {
	if e.state != StateIdle {
		return
	}
	if e.resizeEnabled && e.hovered >= 0 {
		if c := e.cornerAt(pos, e.hovered); c != NoCorner {
			e.target, e.corner, e.last = e.hovered, c, pos
			e.transition(StateResizing)
			return
		}
	}
	if e.hovered >= 0 {
		e.target, e.last = e.hovered, pos
		e.origin = e.items[e.hovered].Box.TopLeft()
		e.transition(StateDragging)
		return
	}
	e.start, e.end = pos, pos
	e.transition(StateDrawing)
}

// OnPointerMove advances the active gesture, or updates hover when idle.
// It reports whether the canvas needs a redraw.
func (e *Editor) OnPointerMove(pos image.Point) bool {
	switch e.state {
	case StateDrawing:
		e.end = pos
		return true
	case StateDragging:
		if !e.validTarget() {
			return false
		}
		d := e.vp.ToImage(pos.Sub(e.last))
		b := &e.items[e.target].Box
		b.X += d.X
		b.Y += d.Y
		e.last = pos
		e.modified = true
		return true
	case StateResizing:
		if !e.validTarget() {
			return false
		}
		d := e.vp.ToImage(pos.Sub(e.last))
		resize(&e.items[e.target].Box, e.corner, d)
		e.last = pos
		e.modified = true
		return true
	default:
		prev := e.hovered
		e.hovered = e.HitTest(e.vp.ToImage(pos))
		return prev != e.hovered
	}
}

// OnPointerUp ends the gesture. A drawing gesture commits a box when both
// image-space sides exceed MinBoxSize; the return value reports a commit.
func (e *Editor) OnPointerUp() bool {
	added := false
	if e.state == StateDrawing {
		r := image.Rectangle{Min: e.start, Max: e.end}.Canon()
		tl, br := e.vp.ToImage(r.Min), e.vp.ToImage(r.Max)
		b := Box{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
		if b.W > MinBoxSize && b.H > MinBoxSize {
			e.Add(b, e.defaultLabel)
			added = true
		} else if e.logger != nil {
			e.logger.Debug("drawn box discarded", "w", b.W, "h", b.H)
		}
	}
	if e.state == StateDragging && e.validTarget() && e.logger != nil {
		e.logger.Debug("box moved", "index", e.target, "from", e.origin, "to", e.items[e.target].Box.TopLeft())
	}
	e.start, e.end, e.last, e.origin = image.Point{}, image.Point{}, image.Point{}, image.Point{}
	e.target, e.corner = -1, NoCorner
	e.transition(StateIdle)
	return added
}

func (e *Editor) transition(next State) {
	prev := e.state
	e.state = next
	if e.logger != nil && prev != next {
		e.logger.Debug("editor state transition", "from", prev.String(), "to", next.String())
	}
}

func (e *Editor) validTarget() bool { return e.target >= 0 && e.target < len(e.items) }

// resize moves the edges implied by corner; edges may cross.
func resize(b *Box, c Corner, d image.Point) {
	if c.top() {
		b.Y += d.Y
		b.H -= d.Y
	}
	if c.bottom() {
		b.H += d.Y
	}
	if c.left() {
		b.X += d.X
		b.W -= d.X
	}
	if c.right() {
		b.W += d.X
	}
}

func (e *Editor) cornerAt(pos image.Point, i int) Corner {
	if i < 0 || i >= len(e.items) {
		return NoCorner
	}
	b := e.items[i].Box
	for _, c := range Corners {
		if pos.In(e.vp.HandleRect(b, c)) {
			return c
		}
	}
	return NoCorner
}

// HitTest returns the lowest index whose box contains the image point, or -1.
func (e *Editor) HitTest(p image.Point) int {
	for i, a := range e.items {
		if a.Box.Contains(p) {
			return i
		}
	}
	return -1
}

// Add appends a box.
func (e *Editor) Add(b Box, l Label) {
	e.items = append(e.items, Annotation{Box: b, Label: l})
	e.modified = true
}

// Delete removes the annotation at i. Out of range is a no-op.
func (e *Editor) Delete(i int) bool {
	if i < 0 || i >= len(e.items) {
		return false
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	e.hovered = -1
	e.modified = true
	return true
}

// SetLabel overwrites the label at i.
func (e *Editor) SetLabel(i int, l Label) bool {
	if i < 0 || i >= len(e.items) {
		return false
	}
	e.items[i].Label = l
	e.modified = true
	return true
}

// ToggleLabel flips the label at i.
func (e *Editor) ToggleLabel(i int) bool {
	a, ok := e.At(i)
	if !ok {
		return false
	}
	return e.SetLabel(i, a.Label.Toggle())
}

// DeleteHovered removes the hovered box, if any.
func (e *Editor) DeleteHovered() bool { return e.Delete(e.hovered) }

// ToggleHovered flips the label of the hovered box, if any.
func (e *Editor) ToggleHovered() bool { return e.ToggleLabel(e.hovered) }

// Clear empties the set. Clearing an empty set does not mark it modified.
func (e *Editor) Clear() bool {
	if len(e.items) == 0 {
		return false
	}
	e.items = nil
	e.hovered = -1
	e.modified = true
	return true
}

// Replace installs a loaded set without marking it modified.
func (e *Editor) Replace(items []Annotation) {
	e.items = make([]Annotation, len(items))
	copy(e.items, items)
	e.hovered = -1
}

// Append adds several boxes at once, marking the set modified when non-empty.
func (e *Editor) Append(items []Annotation) {
	if len(items) == 0 {
		return
	}
	e.items = append(e.items, items...)
	e.modified = true
}
