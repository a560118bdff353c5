package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// NewCanvas returns a width x height image filled with bg.
func NewCanvas(width, height int, bg color.Color) *image.NRGBA {
	return imaging.New(width, height, bg)
}

// PasteAt copies src onto dst in place with its top-left corner at (x, y),
// replacing the covered pixels. Parts of src outside dst are dropped.
func PasteAt(dst *image.NRGBA, src image.Image, x, y int) {
	b := src.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(dst, r, src, b.Min, draw.Src)
}

// Stitch stacks pages vertically onto a single canvas as wide as the widest
// page. With stride 0 each page starts right below the previous one;
// otherwise page i starts at row i*stride. Uncovered area is filled with bg.
func Stitch(pages []image.Image, stride int, bg color.Color) (*image.NRGBA, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to stitch")
	}
	if stride < 0 {
		return nil, fmt.Errorf("invalid page stride %d", stride)
	}

	offsets := make([]int, len(pages))
	width, height := 0, 0
	y := 0
	for i, p := range pages {
		b := p.Bounds()
		if stride > 0 {
			y = i * stride
		}
		offsets[i] = y
		if b.Dx() > width {
			width = b.Dx()
		}
		if y+b.Dy() > height {
			height = y + b.Dy()
		}
		y += b.Dy()
	}

	canvas := NewCanvas(width, height, bg)
	for i, p := range pages {
		PasteAt(canvas, p, 0, offsets[i])
	}
	return canvas, nil
}
