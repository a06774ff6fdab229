package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// Each tick drains detector results, flushes the canvas, advances the
// review timer and state label, then invokes the scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Predict   *PredictionPresenter
	Annotator *AnnotatorPresenter
	Review    *ReviewPresenter
	State     *EditorStatePresenter
	Schedule  func()
}

func NewLoop(predict *PredictionPresenter, annotator *AnnotatorPresenter, review *ReviewPresenter, state *EditorStatePresenter, schedule func()) *Loop {
	return &Loop{Predict: predict, Annotator: annotator, Review: review, State: state, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Predict != nil {
		l.Predict.ProcessResults()
	}
	if l.Annotator != nil {
		l.Annotator.Flush()
	}
	if l.Review != nil {
		l.Review.Tick(now)
	}
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
