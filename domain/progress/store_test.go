package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_LastIndex(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.LastIndex(ctx, "/data", "train"); err != nil || ok {
		t.Fatalf("expected no position, ok=%v err=%v", ok, err)
	}
	if err := s.SetLastIndex(ctx, "/data", "train", 4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetLastIndex(ctx, "/data", "train", 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.SetLastIndex(ctx, "/data", "valid", 2); err != nil {
		t.Fatalf("set valid: %v", err)
	}
	idx, ok, err := s.LastIndex(ctx, "/data", "train")
	if err != nil || !ok || idx != 7 {
		t.Fatalf("train position = %d ok=%v err=%v", idx, ok, err)
	}
	idx, _, _ = s.LastIndex(ctx, "/data", "valid")
	if idx != 2 {
		t.Fatalf("valid position = %d", idx)
	}
}

func TestStore_Saves(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, ok, err := s.LastSaved(ctx, "/data/train/images/a.jpg"); err != nil || ok {
		t.Fatalf("expected no save, ok=%v err=%v", ok, err)
	}
	_ = s.RecordSave(ctx, "/data/train/images/a.jpg", 2, base)
	_ = s.RecordSave(ctx, "/data/train/images/a.jpg", 3, base.Add(time.Minute))
	_ = s.RecordSave(ctx, "/data/train/images/b.jpg", 0, base)
	_ = s.RecordSave(ctx, "/data/valid/images/c.jpg", 1, base)

	at, ok, err := s.LastSaved(ctx, "/data/train/images/a.jpg")
	if err != nil || !ok || !at.Equal(base.Add(time.Minute)) {
		t.Fatalf("last saved = %v ok=%v err=%v", at, ok, err)
	}
	n, err := s.SavedImages(ctx, "/data/train/")
	if err != nil || n != 2 {
		t.Fatalf("saved images = %d err=%v", n, err)
	}
}
