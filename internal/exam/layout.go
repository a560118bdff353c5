package exam

import "image"

// Bands holds the fixed vertical space reserved for text.
type Bands struct {
	// Title is the height of the block holding the title and instructions.
	Title int
	// Label is the height reserved above each fragment for its label.
	Label int
	// EmptyWidth is the canvas width used when no fragment is selected.
	EmptyWidth int
}

// DefaultBands matches the layout the exams have always used. 4134px is
// the width of an A4 page rendered at 500 DPI.
var DefaultBands = Bands{Title: 700, Label: 150, EmptyWidth: 4134}

// Layout is the canvas geometry of an exam.
type Layout struct {
	Width  int
	Height int
	// Offsets[i] is the top row of the label band of fragment i. The
	// fragment itself starts Bands.Label rows lower.
	Offsets []int
}

// ComputeLayout places fragments of the given sizes below the title band,
// each preceded by a label band, all left aligned.
func ComputeLayout(sizes []image.Point, bands Bands) Layout {
	l := Layout{
		Height:  bands.Title + len(sizes)*bands.Label,
		Offsets: make([]int, len(sizes)),
	}

	offset := bands.Title
	for i, s := range sizes {
		if i > 0 {
			offset += sizes[i-1].Y + bands.Label
		}
		l.Offsets[i] = offset
		l.Height += s.Y
		if s.X > l.Width {
			l.Width = s.X
		}
	}

	if len(sizes) == 0 {
		l.Width = bands.EmptyWidth
	}
	return l
}

// FragmentTop returns the top row of fragment i.
func (l Layout) FragmentTop(i int, bands Bands) int {
	return l.Offsets[i] + bands.Label
}
