package presenter

import (
	"time"

	"github.com/soocke/fin-annotator-go/domain/annotation"
)

// EditorStateSource provides the gesture state of the active editor.
type EditorStateSource interface {
	CurrentState() (annotation.State, bool)
}

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// EditorStatePresenter mirrors the editor gesture state into the view.
type EditorStatePresenter struct {
	src     EditorStateSource
	view    StateView
	latest  string
	started bool
}

func NewEditorStatePresenter(src EditorStateSource, view StateView) *EditorStatePresenter {
	return &EditorStatePresenter{src: src, view: view}
}

// Tick updates the label when the state changed since the last tick.
func (p *EditorStatePresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	text := "<no image>"
	if s, ok := p.src.CurrentState(); ok {
		text = s.String()
	}
	if p.started && text == p.latest {
		return
	}
	p.started = true
	p.latest = text
	p.view.SetStateLabel("State: " + text)
}
