package annotation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedLine is wrapped by every LineError.
var ErrMalformedLine = errors.New("malformed label line")

// snapTolerance absorbs float noise left by the decimal round trip so that
// encoded integer boxes decode to the same pixels.
const snapTolerance = 1e-6

// LineError reports the 1-based line that failed to decode.
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v %d (%q): %s", ErrMalformedLine, e.Line, e.Text, e.Reason)
}

func (e *LineError) Unwrap() error { return ErrMalformedLine }

// EncodeLines renders one "<class> <xc> <yc> <w> <h>" line per annotation,
// with centre and size normalised by the image dimensions.
func EncodeLines(items []Annotation, imageW, imageH int) []string {
	lines := make([]string, 0, len(items))
	fw, fh := float64(imageW), float64(imageH)
	for _, a := range items {
		b := a.Box
		xc := (float64(b.X) + float64(b.W)/2) / fw
		yc := (float64(b.Y) + float64(b.H)/2) / fh
		w := float64(b.W) / fw
		h := float64(b.H) / fh
		lines = append(lines, strings.Join([]string{
			strconv.Itoa(a.Label.ClassID()),
			formatFloat(xc),
			formatFloat(yc),
			formatFloat(w),
			formatFloat(h),
		}, " "))
	}
	return lines
}

// Encode joins EncodeLines with single newlines and no trailing newline.
func Encode(items []Annotation, imageW, imageH int) string {
	return strings.Join(EncodeLines(items, imageW, imageH), "\n")
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// DecodeLines parses label lines back into pixel boxes. Blank lines are
// skipped. Any malformed line fails the whole decode and no annotations are
// returned.
func DecodeLines(lines []string, imageW, imageH int) ([]Annotation, error) {
	if imageW <= 0 || imageH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImage, imageW, imageH)
	}
	fw, fh := float64(imageW), float64(imageH)
	var out []Annotation
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, &LineError{Line: i + 1, Text: line, Reason: fmt.Sprintf("expected 5 values, got %d", len(fields))}
		}
		var v [5]float64
		for j, f := range fields {
			n, err := strconv.ParseFloat(f, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, &LineError{Line: i + 1, Text: line, Reason: fmt.Sprintf("value %d is not a number: %q", j+1, f)}
			}
			v[j] = n
		}
		xc, yc, w, h := v[1], v[2], v[3], v[4]
		box := Box{
			X: truncPixel(xc*fw - w*fw/2),
			Y: truncPixel(yc*fh - h*fh/2),
			W: truncPixel(w * fw),
			H: truncPixel(h * fh),
		}
		out = append(out, Annotation{Box: box, Label: labelFromFloat(v[0])})
	}
	return out, nil
}

// Decode splits text on newlines and calls DecodeLines.
func Decode(text string, imageW, imageH int) ([]Annotation, error) {
	return DecodeLines(strings.Split(text, "\n"), imageW, imageH)
}

func labelFromFloat(id float64) Label {
	if id == GoodFinClassID {
		return GoodFin
	}
	return BadFin
}

// truncPixel truncates toward zero after snapping near-integers.
func truncPixel(v float64) int {
	if r := math.Round(v); math.Abs(v-r) < snapTolerance {
		return int(r)
	}
	return int(v)
}
