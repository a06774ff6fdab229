package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/soocke/fin-annotator-go/domain/annotation"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestEncodePNG_Decodes(t *testing.T) {
	data := EncodePNG(solid(3, 2, color.White))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}

func TestZoom_NearestNeighbourBlocks(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{B: 255, A: 255})
	got := Zoom(src, 2)
	if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 2 {
		t.Fatalf("zoomed bounds %v", got.Bounds())
	}
	for _, p := range []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if r, _, b := rgbAt(got, p.X, p.Y); r != 255 || b != 0 {
			t.Fatalf("pixel %v should be red", p)
		}
	}
	if _, _, b := rgbAt(got, 3, 1); b != 255 {
		t.Fatalf("pixel (3,1) should be blue")
	}
	if Zoom(src, 1) != image.Image(src) {
		t.Fatalf("zoom 1 should return the source")
	}
}

func TestScaleToFit(t *testing.T) {
	src := solid(400, 200, color.White)
	got := ScaleToFit(src, 100, 100)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 50 {
		t.Fatalf("fit bounds %v", got.Bounds())
	}
	if ScaleToFit(src, 500, 500) != image.Image(src) {
		t.Fatalf("image that fits should be returned unchanged")
	}
}

func TestExtractROI_PadsAndClamps(t *testing.T) {
	frame := solid(100, 100, color.White)
	roi, rect, err := ExtractROI(frame, image.Rect(40, 40, 60, 60), 5)
	if err != nil {
		t.Fatalf("roi: %v", err)
	}
	if rect != image.Rect(35, 35, 65, 65) {
		t.Fatalf("unexpected rect %v", rect)
	}
	if roi.Bounds() != image.Rect(0, 0, 30, 30) {
		t.Fatalf("crop bounds %v", roi.Bounds())
	}

	_, rect, _ = ExtractROI(frame, image.Rect(90, -10, 120, 5), 3)
	if rect != image.Rect(87, 0, 100, 8) {
		t.Fatalf("expected clamp to frame, got %v", rect)
	}
}

func TestExtractROI_OutsideKeepsOnePixel(t *testing.T) {
	frame := solid(10, 10, color.White)
	_, rect, err := ExtractROI(frame, image.Rect(50, 50, 60, 60), 0)
	if err != nil {
		t.Fatalf("roi: %v", err)
	}
	if rect != image.Rect(9, 9, 10, 10) {
		t.Fatalf("expected 1x1 at the corner, got %v", rect)
	}
	if _, _, err := ExtractROI(nil, rect, 0); err == nil {
		t.Fatalf("expected error for nil frame")
	}
}

func newEditor(t *testing.T, zoom int) *annotation.Editor {
	t.Helper()
	vp, err := annotation.NewViewport(zoom)
	if err != nil {
		t.Fatalf("viewport: %v", err)
	}
	if err := vp.SetImage(100, 100); err != nil {
		t.Fatalf("set image: %v", err)
	}
	return annotation.NewEditor(vp, nil)
}

func TestOverlayRenderer_DrawsLabelsAndHover(t *testing.T) {
	base := solid(100, 100, color.Black)
	ed := newEditor(t, 1)
	ed.Add(annotation.Box{X: 10, Y: 10, W: 40, H: 40}, annotation.GoodFin)
	ed.Add(annotation.Box{X: 60, Y: 60, W: 30, H: 30}, annotation.BadFin)

	r := NewOverlayRenderer()
	out := r.Render(base, ed)
	if out.Bounds().Dx() != 100 {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if rr, g, _ := rgbAt(out, 10, 30); g < 150 || rr > 50 {
		t.Fatalf("good fin edge should be green, got r=%d g=%d", rr, g)
	}
	if rr, g, _ := rgbAt(out, 60, 75); rr < 150 || g > 50 {
		t.Fatalf("bad fin edge should be red, got r=%d g=%d", rr, g)
	}
	if rr, g, b := rgbAt(out, 30, 30); rr != 0 || g != 0 || b != 0 {
		t.Fatalf("interior of unhovered box should be untouched, got %d,%d,%d", rr, g, b)
	}

	ed.OnPointerMove(image.Pt(30, 30))
	out = r.Render(base, ed)
	if _, g, _ := rgbAt(out, 30, 30); g < 30 || g > 70 {
		t.Fatalf("hovered interior should carry a translucent fill, got g=%d", g)
	}
}

func TestOverlayRenderer_HandlesAndDrawing(t *testing.T) {
	base := solid(100, 100, color.Black)
	ed := newEditor(t, 1)
	ed.SetResizeEnabled(true)
	ed.Add(annotation.Box{X: 20, Y: 20, W: 50, H: 50}, annotation.GoodFin)
	ed.OnPointerMove(image.Pt(40, 40))

	out := NewOverlayRenderer().Render(base, ed)
	// handle centre at the top-left corner (20,20), side 10: interior is white
	if rr, g, b := rgbAt(out, 17, 17); rr < 200 || g < 200 || b < 200 {
		t.Fatalf("expected white handle at (17,17), got %d,%d,%d", rr, g, b)
	}

	ed2 := newEditor(t, 1)
	ed2.OnPointerDown(image.Pt(10, 10))
	ed2.OnPointerMove(image.Pt(50, 50))
	out = NewOverlayRenderer().Render(base, ed2)
	if rr, g, b := rgbAt(out, 10, 30); rr < 100 || g < 100 || b > 50 {
		t.Fatalf("expected yellow drawing edge, got %d,%d,%d", rr, g, b)
	}
}

func TestOverlayRenderer_ZoomedOutputSize(t *testing.T) {
	base := solid(100, 100, color.Black)
	ed := newEditor(t, 2)
	out := NewOverlayRenderer().Render(base, ed)
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 200 {
		t.Fatalf("expected 200x200, got %v", out.Bounds())
	}
}
