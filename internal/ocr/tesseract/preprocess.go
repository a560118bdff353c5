package tesseract

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Preprocess prepares a scanned page for recognition. A zero threshold
// returns img untouched; otherwise the page is converted to grayscale and
// binarized so that pixels at or above threshold become white.
//
// Scans with a tinted or uneven background tend to produce spurious symbols
// around the margins; a threshold around 160-200 usually removes them.
func Preprocess(img image.Image, threshold uint8) image.Image {
	if threshold == 0 {
		return img
	}
	return segment.Threshold(effect.Grayscale(img), threshold)
}
