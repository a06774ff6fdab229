package images

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ExtractROI crops the region r grown by pad pixels on every side, clamped
// to the frame. The result is at least 1x1 and starts at (0,0).
// It returns the crop and the rectangle it covers in frame coordinates.
func ExtractROI(frame image.Image, r image.Rectangle, pad int) (*image.NRGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	if pad < 0 {
		pad = 0
	}
	b := frame.Bounds()
	roi := r.Canon().Inset(-pad).Intersect(b)
	if roi.Empty() {
		// keep a single pixel nearest to the request
		x := clamp(r.Min.X, b.Min.X, b.Max.X-1)
		y := clamp(r.Min.Y, b.Min.Y, b.Max.Y-1)
		roi = image.Rect(x, y, x+1, y+1)
	}
	return imaging.Crop(frame, roi), roi, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
