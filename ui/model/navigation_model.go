package model

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	ErrNoImages        = errors.New("no images loaded")
	ErrIndexOutOfRange = errors.New("image number out of range")
)

// NavigationModel is the ordered image list of one split and the cursor into
// it. Accessed only from the UI thread.
type NavigationModel struct {
	split string
	paths []string
	index int
}

// NewNavigationModel returns an empty model.
func NewNavigationModel() *NavigationModel { return &NavigationModel{} }

// SetImages installs a new list and clamps start into range.
func (m *NavigationModel) SetImages(split string, paths []string, start int) {
	m.split = split
	m.paths = append([]string(nil), paths...)
	if start < 0 || start >= len(m.paths) {
		start = 0
	}
	m.index = start
}

// NavState is a saved list and cursor, see Snapshot.
type NavState struct {
	split string
	paths []string
	index int
}

// Snapshot captures the list and cursor so a failed switch can be undone.
func (m *NavigationModel) Snapshot() NavState {
	return NavState{split: m.split, paths: m.paths, index: m.index}
}

// Restore reinstalls a snapshot taken earlier.
func (m *NavigationModel) Restore(s NavState) {
	m.split, m.paths, m.index = s.split, s.paths, s.index
}

func (m *NavigationModel) Split() string { return m.split }
func (m *NavigationModel) Len() int      { return len(m.paths) }
func (m *NavigationModel) Index() int    { return m.index }

// Current returns the path under the cursor.
func (m *NavigationModel) Current() (string, bool) {
	if len(m.paths) == 0 {
		return "", false
	}
	return m.paths[m.index], true
}

// Name returns the base name of the current image.
func (m *NavigationModel) Name() string {
	p, ok := m.Current()
	if !ok {
		return ""
	}
	return filepath.Base(p)
}

// Offset returns the index reached by moving delta steps, wrapping at both ends.
func (m *NavigationModel) Offset(delta int) (int, error) {
	n := len(m.paths)
	if n == 0 {
		return 0, ErrNoImages
	}
	return ((m.index+delta)%n + n) % n, nil
}

// Resolve converts a 1-based image number to an index.
func (m *NavigationModel) Resolve(number int) (int, error) {
	n := len(m.paths)
	if n == 0 {
		return 0, ErrNoImages
	}
	if number < 1 || number > n {
		return 0, fmt.Errorf("%w: enter a number between 1 and %d", ErrIndexOutOfRange, n)
	}
	return number - 1, nil
}

// PathAt returns the path at index i.
func (m *NavigationModel) PathAt(i int) (string, bool) {
	if i < 0 || i >= len(m.paths) {
		return "", false
	}
	return m.paths[i], true
}

// Move sets the cursor. Out-of-range indices are ignored.
func (m *NavigationModel) Move(i int) bool {
	if i < 0 || i >= len(m.paths) {
		return false
	}
	m.index = i
	return true
}

// Position returns the 1-based position and the list length.
func (m *NavigationModel) Position() (int, int) {
	if len(m.paths) == 0 {
		return 0, 0
	}
	return m.index + 1, len(m.paths)
}
