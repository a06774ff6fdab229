package model

import (
	"time"
)

// ReviewTimer tracks the time spent on the current image and the total time
// spent reviewing. It is decoupled from the UI; presenters should poll Values()
// and update views. The zero value is ready to use.
type ReviewTimer struct {
	active      bool
	imageStart  time.Time
	imageTime   time.Duration
	accumulated time.Duration
}

// NewReviewTimer returns a pointer to a ready-to-use ReviewTimer.
func NewReviewTimer() *ReviewTimer { return &ReviewTimer{} }

// OnTick advances the timer. reviewing is false while no image is loaded.
func (m *ReviewTimer) OnTick(reviewing bool, now time.Time) {
	if m == nil {
		return
	}
	if reviewing {
		if !m.active {
			m.active = true
			m.imageStart = now
			m.imageTime = 0
		}
		m.imageTime = now.Sub(m.imageStart)
	} else if m.active {
		m.imageTime = now.Sub(m.imageStart)
		m.accumulated += m.imageTime
		m.active = false
	}
}

// NextImage closes the running image interval and starts a new one at now.
func (m *ReviewTimer) NextImage(now time.Time) {
	if m == nil {
		return
	}
	if m.active {
		m.accumulated += now.Sub(m.imageStart)
	}
	m.active = true
	m.imageStart = now
	m.imageTime = 0
}

// Values returns the time on the current image and the total review time.
// The total includes the running image interval.
func (m *ReviewTimer) Values() (image, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	image = m.imageTime
	total = m.accumulated
	if m.active {
		total += image
	}
	return
}
