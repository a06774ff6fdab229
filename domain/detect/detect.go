// Package detect talks to the fin detection model and converts its output
// into editable annotations.
package detect

import (
	"context"
	"errors"
	"image"

	"github.com/soocke/fin-annotator-go/domain/annotation"
)

// DefaultConfidence is the minimum score a detection needs to be shown.
const DefaultConfidence = 0.4

// ErrNoDetector is returned when prediction is requested without a model.
var ErrNoDetector = errors.New("no detector configured")

// Detection is one predicted box in image pixels, corner form.
type Detection struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	ClassID    int     `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Box converts the corners to a pixel box, truncating toward zero.
func (d Detection) Box() annotation.Box {
	return annotation.Box{
		X: int(d.X1),
		Y: int(d.Y1),
		W: int(d.X2 - d.X1),
		H: int(d.Y2 - d.Y1),
	}
}

// Request describes one image to run inference on.
type Request struct {
	ImagePath  string
	Confidence float64
}

// Detector runs the model on an image. Implementations must honour ctx.
type Detector interface {
	Detect(ctx context.Context, req Request) ([]Detection, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, req Request) ([]Detection, error)

func (f DetectorFunc) Detect(ctx context.Context, req Request) ([]Detection, error) {
	return f(ctx, req)
}

// ToAnnotations keeps detections scoring at least minConfidence and maps
// class 1 to GoodFin, every other class to BadFin.
func ToAnnotations(dets []Detection, minConfidence float64) []annotation.Annotation {
	out := make([]annotation.Annotation, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < minConfidence {
			continue
		}
		out = append(out, annotation.Annotation{
			Box:   d.Box(),
			Label: annotation.LabelFromClassID(d.ClassID),
		})
	}
	return out
}

// ClipToImage drops detections lying completely outside bounds.
func ClipToImage(dets []Detection, bounds image.Rectangle) []Detection {
	out := dets[:0:0]
	for _, d := range dets {
		if d.Box().Rect().Overlaps(bounds) {
			out = append(out, d)
		}
	}
	return out
}
