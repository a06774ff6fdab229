package images

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	_ = enc.Encode(&buf, img)
	return buf.Bytes()
}

// Zoom returns src scaled by an integer level with nearest-neighbour
// sampling so that every image pixel maps to a level x level block.
// Level 1 returns src unchanged.
func Zoom(src image.Image, level int) image.Image {
	if src == nil || level <= 1 {
		return src
	}
	b := src.Bounds()
	return imaging.Resize(src, b.Dx()*level, b.Dy()*level, imaging.NearestNeighbor)
}

// ScaleToFit scales src so that it fits within maxW x maxH preserving aspect
// ratio. If src already fits it is returned as is.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, maxW, maxH, imaging.Box)
}
