package presenter

import (
	"time"

	"github.com/soocke/fin-annotator-go/ui/model"
)

// ReviewSource reports whether an image is on screen and when it was saved.
type ReviewSource interface {
	Reviewing() bool
	LastSaved() time.Time
}

// ReviewView displays time spent on the current image and in total.
type ReviewView interface {
	SetReview(image, total time.Duration, lastSaved time.Time)
}

// ReviewPresenter pushes review durations from the timer to the view.
type ReviewPresenter struct {
	timer *model.ReviewTimer
	src   ReviewSource
	view  ReviewView
}

// NewReviewPresenter returns a new ReviewPresenter.
func NewReviewPresenter(timer *model.ReviewTimer, src ReviewSource, view ReviewView) *ReviewPresenter {
	return &ReviewPresenter{timer: timer, src: src, view: view}
}

// Tick advances the timer and refreshes the view.
func (p *ReviewPresenter) Tick(now time.Time) {
	if p == nil || p.timer == nil || p.src == nil || p.view == nil {
		return
	}
	p.timer.OnTick(p.src.Reviewing(), now)
	img, total := p.timer.Values()
	p.view.SetReview(img, total, p.src.LastSaved())
}
