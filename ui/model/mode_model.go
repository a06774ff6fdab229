package model

import (
	"sync/atomic"
)

// ModeModel tracks whether boxes come from the detector (prediction mode) or
// from the dataset label files. The zero value is dataset mode.
// Concurrency-safe via atomic Bool because the prediction worker reads it.
type ModeModel struct{ predicting atomic.Bool }

// Predicting reports whether prediction mode is active.
func (m *ModeModel) Predicting() bool {
	if m == nil {
		return false
	}
	return m.predicting.Load()
}

// SetPredicting stores the mode and reports whether it changed.
func (m *ModeModel) SetPredicting(b bool) bool {
	if m == nil {
		return false
	}
	return m.predicting.Swap(b) != b
}

// Name returns "predict" or "dataset".
func (m *ModeModel) Name() string {
	if m.Predicting() {
		return "predict"
	}
	return "dataset"
}
