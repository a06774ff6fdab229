package view

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// ReviewStats shows how long the current image has been on screen, the
// total review time and when the image was last saved.
type ReviewStats interface {
	SetReview(image, total time.Duration, lastSaved time.Time)
}

type reviewStats struct {
	imageLbl *LabelWidget
	totalLbl *LabelWidget
	savedLbl *LabelWidget
	saved    string
}

// NewReviewStats grids the three labels into parent starting at row.
func NewReviewStats(parent *FrameWidget, row int) ReviewStats {
	s := &reviewStats{
		imageLbl: parent.Label(Width(14), Anchor("w")),
		totalLbl: parent.Label(Width(14), Anchor("w")),
		savedLbl: parent.Label(Width(30), Anchor("w")),
	}
	Grid(s.imageLbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, In(parent), Row(row), Column(1), Sticky("w"), Padx("0.2m"))
	Grid(s.savedLbl, In(parent), Row(row+1), Column(0), Columnspan(2), Sticky("w"), Padx("0.2m"))
	s.imageLbl.Configure(Txt("Image: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.savedLbl.Configure(Txt("Last saved: never"))
	return s
}

func (s *reviewStats) SetReview(image, total time.Duration, lastSaved time.Time) {
	if s == nil || s.imageLbl == nil {
		return
	}
	s.imageLbl.Configure(Txt("Image: " + clock(image)))
	s.totalLbl.Configure(Txt("Total: " + clock(total)))
	saved := "Last saved: never"
	if !lastSaved.IsZero() {
		saved = "Last saved: " + humanize.Time(lastSaved)
	}
	// humanize output only changes every few seconds
	if saved != s.saved {
		s.saved = saved
		s.savedLbl.Configure(Txt(saved))
	}
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	min, sec := seconds/60, seconds%60
	return fmt.Sprintf("%02d:%02d", min, sec)
}
