package annotation

import (
	"errors"
	"image"
	"testing"
)

func TestNewSession(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 800))
	s, err := NewSession("img.jpg", img, SessionOptions{Zoom: 2, ResizeEnabled: true, DefaultLabel: BadFin, Logger: discardLogger})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if w, h := s.Size(); w != 1000 || h != 800 {
		t.Fatalf("size %dx%d", w, h)
	}
	if w, h := s.Editor.Viewport().DisplaySize(); w != 2000 || h != 1600 {
		t.Fatalf("display %dx%d", w, h)
	}
	if !s.Editor.ResizeEnabled() || s.Editor.DefaultLabel() != BadFin {
		t.Fatalf("options not applied")
	}
	if s.Modified() {
		t.Fatalf("fresh session should be unmodified")
	}
	s.Editor.Add(Box{X: 100, Y: 100, W: 100, H: 100}, GoodFin)
	if !s.Modified() {
		t.Fatalf("add should mark session modified")
	}
	if got := Encode(s.Editor.Items(), 1000, 800); got != "1 0.15 0.1875 0.1 0.125" {
		t.Fatalf("encode labels = %q", got)
	}
	s.MarkSaved()
	if s.Modified() {
		t.Fatalf("mark saved should clear modified")
	}
}

func TestNewSession_DistinctIDs(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	a, _ := NewSession("a.png", img, SessionOptions{})
	b, _ := NewSession("a.png", img, SessionOptions{})
	if a.ID == b.ID {
		t.Fatalf("sessions share id %s", a.ID)
	}
	if a.Editor.Viewport().Zoom() != 1 {
		t.Fatalf("zero zoom should default to 1")
	}
}

func TestNewSession_RejectsEmptyImage(t *testing.T) {
	if _, err := NewSession("x.png", nil, SessionOptions{}); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestLabelClassIDs(t *testing.T) {
	if GoodFin.ClassID() != 1 || BadFin.ClassID() != 0 {
		t.Fatalf("class ids: good=%d bad=%d", GoodFin.ClassID(), BadFin.ClassID())
	}
	for id, want := range map[int]Label{1: GoodFin, 0: BadFin, 2: BadFin, -3: BadFin} {
		if got := LabelFromClassID(id); got != want {
			t.Fatalf("LabelFromClassID(%d) = %v", id, got)
		}
	}
	if l, ok := ParseLabel("bad_fin"); !ok || l != BadFin {
		t.Fatalf("parse bad_fin: %v %v", l, ok)
	}
	if _, ok := ParseLabel("fin"); ok {
		t.Fatalf("unknown label should not parse")
	}
}
