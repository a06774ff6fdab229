package model

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/soocke/fin-annotator-go/domain/annotation"
)

// SessionModel holds the session shown on the canvas. Navigation swaps the
// whole session at once; the prediction worker only ever reads the ID.
// The zero value holds no session and is usable.
type SessionModel struct {
	current atomic.Pointer[annotation.Session]
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// Current returns the active session or nil.
func (m *SessionModel) Current() *annotation.Session {
	if m == nil {
		return nil
	}
	return m.current.Load()
}

// Replace installs s and returns the session it replaced.
func (m *SessionModel) Replace(s *annotation.Session) *annotation.Session {
	if m == nil {
		return nil
	}
	return m.current.Swap(s)
}

// ID returns the active session id, or uuid.Nil.
func (m *SessionModel) ID() uuid.UUID {
	if s := m.Current(); s != nil {
		return s.ID
	}
	return uuid.Nil
}

// IsCurrent reports whether id belongs to the active session.
func (m *SessionModel) IsCurrent(id uuid.UUID) bool {
	return id != uuid.Nil && m.ID() == id
}
