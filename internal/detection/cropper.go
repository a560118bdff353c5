package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/exam-builder/internal/imaging"
)

// ErrDegenerateCropRegion is returned when a computed exercise region has no
// height left after margins are applied.
var ErrDegenerateCropRegion = errors.New("degenerate crop region")

// Region is the vertical extent of one exercise, in bottom-origin page
// pixels. Top is greater than Bottom.
type Region struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Margins are the empirical pixel offsets applied around each region.
type Margins struct {
	// Top moves the upper crop edge this many pixels down from the cut so the
	// previous exercise's descenders are not included.
	Top int

	// Bottom moves the lower crop edge this many pixels up from the next cut
	// so the following heading's ascenders are not included.
	Bottom int

	// Trailing is subtracted from the closing coordinate of the last region.
	Trailing int
}

// DefaultMargins are tuned for 500 DPI renders of the assignment sheets.
var DefaultMargins = Margins{Top: 20, Bottom: 70, Trailing: 100}

// Cropper converts cut coordinates into exercise fragments.
type Cropper struct {
	Margins Margins
}

// NewCropper returns a Cropper with DefaultMargins.
func NewCropper() *Cropper {
	return &Cropper{Margins: DefaultMargins}
}

// Regions pairs consecutive homework cuts and closes the last exercise at
// the tutorial cut, or at lastBottom when the sheet has no tutorial part.
// Either closing coordinate is reduced by the trailing margin.
func (c *Cropper) Regions(cuts *Cuts, lastBottom int) []Region {
	if cuts == nil || len(cuts.Homework) == 0 {
		return nil
	}

	regions := make([]Region, 0, len(cuts.Homework))
	for i := 0; i+1 < len(cuts.Homework); i++ {
		regions = append(regions, Region{Top: cuts.Homework[i], Bottom: cuts.Homework[i+1]})
	}

	closing := lastBottom
	if cuts.Tutorial != nil {
		closing = *cuts.Tutorial
	}
	regions = append(regions, Region{
		Top:    cuts.Homework[len(cuts.Homework)-1],
		Bottom: closing - c.Margins.Trailing,
	})
	return regions
}

// Rows converts a region into a top-left origin row range [y0, y1) for a
// page of the given height, applying the top and bottom margins and clamping
// to the page.
func (c *Cropper) Rows(r Region, height int) (y0, y1 int) {
	y0 = clamp(height-r.Top+c.Margins.Top, 0, height)
	y1 = clamp(height-r.Bottom-c.Margins.Bottom, 0, height)
	return y0, y1
}

// Crop slices one full-width fragment per region out of page. Fragments are
// returned in region order.
func (c *Cropper) Crop(page image.Image, regions []Region) ([]image.Image, error) {
	height := page.Bounds().Dy()

	fragments := make([]image.Image, 0, len(regions))
	for i, r := range regions {
		y0, y1 := c.Rows(r, height)
		if y1 <= y0 {
			return nil, fmt.Errorf("exercise %d (cuts %d..%d): %w", i+1, r.Top, r.Bottom, ErrDegenerateCropRegion)
		}
		frag, err := imaging.CropRows(page, y0, y1)
		if err != nil {
			return nil, fmt.Errorf("exercise %d: %w", i+1, err)
		}
		fragments = append(fragments, frag)
	}
	return fragments, nil
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
