package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropRows extracts the full-width horizontal band [y0, y1) of img.
//
// Rows are relative to the image's top edge, so y0 = 0 is always the first
// row regardless of img.Bounds().Min. The result is an independent copy
// whose bounds start at (0, 0).
func CropRows(img image.Image, y0, y1 int) (*image.NRGBA, error) {
	bounds := img.Bounds()
	height := bounds.Dy()

	if y0 < 0 || y1 > height {
		return nil, fmt.Errorf("crop rows %d-%d outside image height %d", y0, y1, height)
	}
	if y0 >= y1 {
		return nil, fmt.Errorf("invalid crop rows: y0 must be < y1 (got %d, %d)", y0, y1)
	}

	rect := image.Rect(bounds.Min.X, bounds.Min.Y+y0, bounds.Max.X, bounds.Min.Y+y1)
	return imaging.Crop(img, rect), nil
}
