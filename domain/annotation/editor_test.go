package annotation

import (
	"image"
	"log/slog"
	"testing"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestEditor(t *testing.T, zoom int) *Editor {
	t.Helper()
	vp, err := NewViewport(zoom)
	if err != nil {
		t.Fatalf("viewport: %v", err)
	}
	if err := vp.SetImage(1000, 800); err != nil {
		t.Fatalf("set image: %v", err)
	}
	return NewEditor(vp, discardLogger)
}

func drag(e *Editor, from image.Point, to ...image.Point) bool {
	e.OnPointerDown(from)
	for _, p := range to {
		e.OnPointerMove(p)
	}
	return e.OnPointerUp()
}

func TestEditor_DrawAddsBox(t *testing.T) {
	e := newTestEditor(t, 1)
	if !drag(e, image.Pt(100, 100), image.Pt(200, 200)) {
		t.Fatalf("expected box to be committed")
	}
	items := e.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 box, got %d", len(items))
	}
	if items[0].Box != (Box{X: 100, Y: 100, W: 100, H: 100}) {
		t.Fatalf("unexpected box %+v", items[0].Box)
	}
	if items[0].Label != GoodFin {
		t.Fatalf("expected default label, got %v", items[0].Label)
	}
	if !e.Modified() {
		t.Fatalf("adding a box must mark modified")
	}
	if e.State() != StateIdle {
		t.Fatalf("expected idle after pointer up, got %v", e.State())
	}
}

func TestEditor_DrawNormalizesReversedGesture(t *testing.T) {
	e := newTestEditor(t, 1)
	e.SetDefaultLabel(BadFin)
	drag(e, image.Pt(200, 200), image.Pt(100, 150))
	items := e.Items()
	if len(items) != 1 || items[0].Box != (Box{X: 100, Y: 150, W: 100, H: 50}) {
		t.Fatalf("unexpected result %+v", items)
	}
	if items[0].Label != BadFin {
		t.Fatalf("expected BadFin default, got %v", items[0].Label)
	}
}

func TestEditor_DrawThreshold(t *testing.T) {
	cases := []struct {
		name     string
		zoom     int
		from, to image.Point
		added    bool
	}{
		{"width five", 1, image.Pt(10, 10), image.Pt(15, 100), false},
		{"height five", 1, image.Pt(10, 10), image.Pt(100, 15), false},
		{"six by six", 1, image.Pt(10, 10), image.Pt(16, 16), true},
		{"zoomed six", 2, image.Pt(10, 10), image.Pt(22, 22), true},
		{"zoomed five", 2, image.Pt(10, 10), image.Pt(21, 21), false},
		{"click", 1, image.Pt(10, 10), image.Pt(10, 10), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := newTestEditor(t, c.zoom)
			got := drag(e, c.from, c.to)
			if got != c.added || (e.Len() == 1) != c.added {
				t.Fatalf("added=%v len=%d, want added=%v", got, e.Len(), c.added)
			}
			if !c.added && e.Modified() {
				t.Fatalf("discarded draw must not mark modified")
			}
		})
	}
}

func TestEditor_DrawingDoesNotMutateUntilRelease(t *testing.T) {
	e := newTestEditor(t, 1)
	e.OnPointerDown(image.Pt(50, 50))
	if !e.OnPointerMove(image.Pt(80, 90)) {
		t.Fatalf("drawing move should request redraw")
	}
	if e.Len() != 0 || e.Modified() {
		t.Fatalf("set mutated mid-draw")
	}
	r, ok := e.Drawing()
	if !ok || r != image.Rect(50, 50, 80, 90) {
		t.Fatalf("unexpected drawing rect %v ok=%v", r, ok)
	}
	e.OnPointerUp()
	if _, ok := e.Drawing(); ok {
		t.Fatalf("drawing rect should clear after release")
	}
}

func TestEditor_HoverPrefersFirstInserted(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Add(Box{X: 0, Y: 0, W: 50, H: 50}, GoodFin)
	e.Add(Box{X: 25, Y: 25, W: 50, H: 50}, BadFin)
	if !e.OnPointerMove(image.Pt(30, 30)) {
		t.Fatalf("hover change should request redraw")
	}
	if e.Hovered() != 0 {
		t.Fatalf("expected index 0, got %d", e.Hovered())
	}
	if e.OnPointerMove(image.Pt(31, 31)) {
		t.Fatalf("unchanged hover should not request redraw")
	}
	e.OnPointerMove(image.Pt(60, 60))
	if e.Hovered() != 1 {
		t.Fatalf("expected index 1, got %d", e.Hovered())
	}
	e.OnPointerMove(image.Pt(500, 500))
	if e.Hovered() != -1 {
		t.Fatalf("expected no hover, got %d", e.Hovered())
	}
}

func TestEditor_HoverUsesImageSpace(t *testing.T) {
	e := newTestEditor(t, 2)
	e.Add(Box{X: 0, Y: 0, W: 50, H: 50}, GoodFin)
	e.OnPointerMove(image.Pt(60, 60))
	if e.Hovered() != 0 {
		t.Fatalf("screen (60,60) at zoom 2 is image (30,30); got hover %d", e.Hovered())
	}
	e.OnPointerMove(image.Pt(110, 20))
	if e.Hovered() != -1 {
		t.Fatalf("screen (110,20) at zoom 2 is outside the box; got hover %d", e.Hovered())
	}
}

func TestEditor_DragMovesHoveredBox(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Add(Box{X: 100, Y: 100, W: 50, H: 50}, GoodFin)
	e.MarkSaved()
	e.OnPointerMove(image.Pt(120, 120))
	e.OnPointerDown(image.Pt(120, 120))
	if e.State() != StateDragging {
		t.Fatalf("expected dragging, got %v", e.State())
	}
	e.OnPointerMove(image.Pt(130, 125))
	e.OnPointerMove(image.Pt(135, 125))
	e.OnPointerUp()
	got, _ := e.At(0)
	if got.Box != (Box{X: 115, Y: 105, W: 50, H: 50}) {
		t.Fatalf("unexpected box after drag %+v", got.Box)
	}
	if !e.Modified() {
		t.Fatalf("drag must mark modified")
	}
}

func TestEditor_DragDeltaIsIncremental(t *testing.T) {
	e := newTestEditor(t, 2)
	e.Add(Box{X: 100, Y: 100, W: 50, H: 50}, GoodFin)
	e.OnPointerMove(image.Pt(240, 240))
	e.OnPointerDown(image.Pt(240, 240))
	e.OnPointerMove(image.Pt(245, 243))
	e.OnPointerMove(image.Pt(250, 246))
	e.OnPointerUp()
	got, _ := e.At(0)
	// each (5,3) screen step truncates to (2,1) image pixels
	if got.Box.X != 104 || got.Box.Y != 102 {
		t.Fatalf("expected (104,102), got (%d,%d)", got.Box.X, got.Box.Y)
	}
}

func TestEditor_ResizeCorners(t *testing.T) {
	cases := []struct {
		name   string
		down   image.Point
		move   image.Point
		expect Box
	}{
		{"topleft", image.Pt(100, 100), image.Pt(90, 80), Box{X: 90, Y: 80, W: 60, H: 70}},
		{"bottomright", image.Pt(149, 149), image.Pt(159, 169), Box{X: 100, Y: 100, W: 60, H: 70}},
		{"topright", image.Pt(149, 101), image.Pt(159, 91), Box{X: 100, Y: 90, W: 60, H: 60}},
		{"bottomleft", image.Pt(101, 149), image.Pt(91, 159), Box{X: 90, Y: 100, W: 60, H: 60}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := newTestEditor(t, 1)
			e.SetResizeEnabled(true)
			e.Add(Box{X: 100, Y: 100, W: 50, H: 50}, GoodFin)
			e.OnPointerMove(c.down)
			e.OnPointerDown(c.down)
			if e.State() != StateResizing {
				t.Fatalf("expected resizing, got %v", e.State())
			}
			e.OnPointerMove(c.move)
			e.OnPointerUp()
			got, _ := e.At(0)
			if got.Box != c.expect {
				t.Fatalf("got %+v, want %+v", got.Box, c.expect)
			}
		})
	}
}

func TestEditor_ResizeMayInvertWithoutNormalizing(t *testing.T) {
	e := newTestEditor(t, 1)
	e.SetResizeEnabled(true)
	e.Add(Box{X: 100, Y: 100, W: 50, H: 50}, GoodFin)
	e.OnPointerMove(image.Pt(149, 149))
	e.OnPointerDown(image.Pt(149, 149))
	e.OnPointerMove(image.Pt(79, 149))
	e.OnPointerUp()
	got, _ := e.At(0)
	if got.Box.W != -20 {
		t.Fatalf("expected inverted width -20, got %+v", got.Box)
	}
	if idx := e.HitTest(image.Pt(90, 120)); idx != 0 {
		t.Fatalf("inverted box should still hit-test on its normalised area, got %d", idx)
	}
}

func TestEditor_ResizeDisabledDrags(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Add(Box{X: 100, Y: 100, W: 50, H: 50}, GoodFin)
	e.OnPointerMove(image.Pt(100, 100))
	e.OnPointerDown(image.Pt(100, 100))
	if e.State() != StateDragging {
		t.Fatalf("expected dragging with resize disabled, got %v", e.State())
	}
	e.OnPointerUp()
}

func TestEditor_CornerOrderFirstMatchWins(t *testing.T) {
	e := newTestEditor(t, 1)
	e.SetResizeEnabled(true)
	e.Add(Box{X: 100, Y: 100, W: 4, H: 4}, GoodFin)
	e.OnPointerMove(image.Pt(101, 101))
	e.OnPointerDown(image.Pt(101, 101))
	e.OnPointerMove(image.Pt(102, 101))
	e.OnPointerUp()
	got, _ := e.At(0)
	if got.Box != (Box{X: 101, Y: 100, W: 3, H: 4}) {
		t.Fatalf("expected topleft resize, got %+v", got.Box)
	}
}

func TestEditor_MutationsKeepSetConsistent(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Add(Box{X: 0, Y: 0, W: 10, H: 10}, GoodFin)
	e.Add(Box{X: 20, Y: 0, W: 10, H: 10}, BadFin)
	e.Add(Box{X: 40, Y: 0, W: 10, H: 10}, GoodFin)
	e.MarkSaved()

	if e.Delete(7) || e.Delete(-1) {
		t.Fatalf("out of range delete should report false")
	}
	if e.Modified() {
		t.Fatalf("out of range delete must not mark modified")
	}
	if !e.Delete(1) {
		t.Fatalf("delete 1 failed")
	}
	items := e.Items()
	if len(items) != 2 || items[1].Box.X != 40 || items[1].Label != GoodFin {
		t.Fatalf("unexpected set after delete %+v", items)
	}
	if !e.SetLabel(1, BadFin) {
		t.Fatalf("set label failed")
	}
	if a, _ := e.At(1); a.Label != BadFin || a.Box.X != 40 {
		t.Fatalf("set label touched the wrong entry: %+v", a)
	}
	if e.SetLabel(2, GoodFin) {
		t.Fatalf("out of range set label should report false")
	}
}

func TestEditor_ClearAll(t *testing.T) {
	e := newTestEditor(t, 1)
	if e.Clear() || e.Modified() {
		t.Fatalf("clearing an empty set must be a no-op")
	}
	e.Add(Box{X: 0, Y: 0, W: 10, H: 10}, GoodFin)
	e.MarkSaved()
	if !e.Clear() || e.Len() != 0 || !e.Modified() {
		t.Fatalf("clear failed: len=%d modified=%v", e.Len(), e.Modified())
	}
}

func TestEditor_ToggleHoveredLabel(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Add(Box{X: 10, Y: 10, W: 40, H: 40}, GoodFin)
	e.MarkSaved()
	if e.ToggleHovered() {
		t.Fatalf("toggle without hover should be a no-op")
	}
	e.OnPointerMove(image.Pt(20, 20))
	if !e.ToggleHovered() {
		t.Fatalf("toggle hovered failed")
	}
	a, _ := e.At(0)
	if a.Label != BadFin || a.Box != (Box{X: 10, Y: 10, W: 40, H: 40}) || !e.Modified() {
		t.Fatalf("unexpected state after toggle: %+v modified=%v", a, e.Modified())
	}
	e.ToggleHovered()
	if a, _ := e.At(0); a.Label != GoodFin {
		t.Fatalf("second toggle should restore GoodFin")
	}
}

func TestEditor_DeleteHoveredResetsHover(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Add(Box{X: 10, Y: 10, W: 40, H: 40}, GoodFin)
	e.OnPointerMove(image.Pt(20, 20))
	if !e.DeleteHovered() {
		t.Fatalf("delete hovered failed")
	}
	if e.Hovered() != -1 || e.Len() != 0 {
		t.Fatalf("hover=%d len=%d", e.Hovered(), e.Len())
	}
}

func TestEditor_ZoomDoesNotMoveBoxes(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Add(Box{X: 0, Y: 0, W: 50, H: 50}, GoodFin)
	e.Add(Box{X: 25, Y: 25, W: 50, H: 50}, BadFin)
	before := e.Items()
	hit := e.HitTest(image.Pt(60, 60))
	if _, err := e.SetZoom(2); err != nil {
		t.Fatalf("zoom: %v", err)
	}
	after := e.Items()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("box %d changed with zoom: %+v -> %+v", i, before[i], after[i])
		}
	}
	if e.HitTest(image.Pt(60, 60)) != hit {
		t.Fatalf("hit test changed with zoom")
	}
}

func TestEditor_ReplaceDoesNotMarkModified(t *testing.T) {
	e := newTestEditor(t, 1)
	e.Replace([]Annotation{{Box: Box{X: 1, Y: 2, W: 30, H: 40}, Label: BadFin}})
	if e.Modified() || e.Len() != 1 {
		t.Fatalf("replace: modified=%v len=%d", e.Modified(), e.Len())
	}
}
