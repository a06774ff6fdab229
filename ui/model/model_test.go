package model

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/fin-annotator-go/domain/annotation"
)

func TestReviewTimer_BasicLifecycle(t *testing.T) {
	m := NewReviewTimer()
	base := time.Unix(0, 0)

	// Start at t0 and review for 5s.
	m.OnTick(true, base)
	m.OnTick(true, base.Add(5*time.Second))
	img, total := m.Values()
	if img != 5*time.Second || total != 5*time.Second {
		t.Fatalf("expected 5s image & total; got image=%v total=%v", img, total)
	}

	// Next image at 8s, review 2s.
	m.NextImage(base.Add(8 * time.Second))
	m.OnTick(true, base.Add(10*time.Second))
	img, total = m.Values()
	if img != 2*time.Second || total != 10*time.Second {
		t.Fatalf("after next image expected 2s/10s; got image=%v total=%v", img, total)
	}

	// Stop reviewing; idle ticks do not change totals.
	m.OnTick(false, base.Add(10*time.Second))
	m.OnTick(false, base.Add(30*time.Second))
	img2, total2 := m.Values()
	if img2 != img || total2 != total {
		t.Fatalf("idle tick changed durations: %v/%v -> %v/%v", img, total, img2, total2)
	}
}

func TestModeModel(t *testing.T) {
	var m ModeModel
	if m.Predicting() || m.Name() != "dataset" {
		t.Fatalf("zero value should be dataset mode")
	}
	if !m.SetPredicting(true) || !m.Predicting() || m.Name() != "predict" {
		t.Fatalf("switch to predict failed")
	}
	if m.SetPredicting(true) {
		t.Fatalf("same mode should report no change")
	}
}

func TestNavigationModel_WrapAndResolve(t *testing.T) {
	m := NewNavigationModel()
	if _, err := m.Offset(1); !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
	m.SetImages("train", []string{"/d/a.jpg", "/d/b.jpg", "/d/c.jpg"}, 7)
	if m.Index() != 0 {
		t.Fatalf("out of range start should clamp to 0, got %d", m.Index())
	}
	if i, _ := m.Offset(-1); i != 2 {
		t.Fatalf("previous from first should wrap to 2, got %d", i)
	}
	m.Move(2)
	if i, _ := m.Offset(1); i != 0 {
		t.Fatalf("next from last should wrap to 0, got %d", i)
	}
	if m.Name() != "c.jpg" {
		t.Fatalf("name = %s", m.Name())
	}
	if pos, n := m.Position(); pos != 3 || n != 3 {
		t.Fatalf("position %d of %d", pos, n)
	}
	if i, err := m.Resolve(2); err != nil || i != 1 {
		t.Fatalf("resolve 2 = %d %v", i, err)
	}
	for _, bad := range []int{0, 4, -1} {
		if _, err := m.Resolve(bad); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("resolve %d: expected out of range, got %v", bad, err)
		}
	}
}

func TestNavigationModel_SnapshotRestore(t *testing.T) {
	m := NewNavigationModel()
	m.SetImages("train", []string{"/d/a.jpg", "/d/b.jpg"}, 1)
	snap := m.Snapshot()
	m.SetImages("valid", []string{"/v/x.jpg"}, 0)
	if m.Split() != "valid" || m.Len() != 1 {
		t.Fatalf("new list not installed")
	}
	m.Restore(snap)
	if m.Split() != "train" || m.Len() != 2 || m.Index() != 1 || m.Name() != "b.jpg" {
		t.Fatalf("restore: split=%s len=%d index=%d", m.Split(), m.Len(), m.Index())
	}
}

func TestSessionModel_Replace(t *testing.T) {
	m := NewSessionModel()
	if m.ID() != uuid.Nil || m.Current() != nil {
		t.Fatalf("empty model should have no session")
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	a, _ := annotation.NewSession("a.png", img, annotation.SessionOptions{})
	b, _ := annotation.NewSession("b.png", img, annotation.SessionOptions{})
	if prev := m.Replace(a); prev != nil {
		t.Fatalf("unexpected previous session")
	}
	if prev := m.Replace(b); prev != a {
		t.Fatalf("replace should return the old session")
	}
	if !m.IsCurrent(b.ID) || m.IsCurrent(a.ID) || m.IsCurrent(uuid.Nil) {
		t.Fatalf("IsCurrent mismatch")
	}
}
