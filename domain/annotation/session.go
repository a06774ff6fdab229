package annotation

import (
	"image"
	"log/slog"

	"github.com/google/uuid"
)

// SessionOptions carries the canvas settings that survive navigation.
type SessionOptions struct {
	Zoom          int
	ResizeEnabled bool
	DefaultLabel  Label
	Logger        *slog.Logger
}

// Session is everything that belongs to the image currently on screen.
// Navigating builds a new Session instead of mutating the old one.
type Session struct {
	ID        uuid.UUID
	ImagePath string
	Image     image.Image
	Editor    *Editor
}

// NewSession prepares an empty annotation set for img.
func NewSession(path string, img image.Image, opts SessionOptions) (*Session, error) {
	zoom := opts.Zoom
	if zoom == 0 {
		zoom = 1
	}
	vp, err := NewViewport(zoom)
	if err != nil {
		return nil, err
	}
	var w, h int
	if img != nil {
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}
	if err := vp.SetImage(w, h); err != nil {
		return nil, err
	}
	logger := opts.Logger
	id := uuid.New()
	if logger != nil {
		logger = logger.With("session", id.String())
	}
	ed := NewEditor(vp, logger)
	ed.SetResizeEnabled(opts.ResizeEnabled)
	ed.SetDefaultLabel(opts.DefaultLabel)
	return &Session{ID: id, ImagePath: path, Image: img, Editor: ed}, nil
}

// Size returns the image pixel dimensions.
func (s *Session) Size() (int, int) {
	if s == nil || s.Editor == nil {
		return 0, 0
	}
	return s.Editor.Viewport().ImageSize()
}

// Modified reports unsaved changes.
func (s *Session) Modified() bool { return s != nil && s.Editor != nil && s.Editor.Modified() }

// MarkSaved clears the modified flag.
func (s *Session) MarkSaved() {
	if s != nil && s.Editor != nil {
		s.Editor.MarkSaved()
	}
}
