// Package source locates assignment sheets on disk and renders them into a
// single full-sheet raster.
//
// Sheets are PDFs rendered with MuPDF (go-fitz) or pre-rendered PNG/JPEG
// scans. Multi-page sheets are stitched top to bottom so that exercises which
// cross a page break end up in one contiguous raster.
package source

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ironsheep/exam-builder/internal/imaging"
)

// ErrMissingSourceFile is returned when a sheet's source document does not
// exist.
var ErrMissingSourceFile = errors.New("missing source file")

// DefaultPattern is the file name convention of the assignment sheets.
const DefaultPattern = "Assignment %02d.pdf"

// Rasterizer renders a sheet into one stitched page image.
type Rasterizer interface {
	Rasterize(sheet int) (image.Image, error)
}

// Options configures a Sheets rasterizer.
type Options struct {
	// Dir is the directory holding the sheet documents.
	Dir string

	// Pattern is a fmt pattern taking the 1-based sheet index.
	Pattern string

	// DPI is the PDF render resolution.
	DPI float64

	// PageStride places page i at row i*PageStride when positive.
	PageStride int
}

// Sheets is the file-backed Rasterizer.
type Sheets struct {
	opts Options
}

// NewSheets returns a Sheets rasterizer. Zero options fall back to the
// assignment naming convention and 500 DPI.
func NewSheets(opts Options) *Sheets {
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if opts.DPI <= 0 {
		opts.DPI = 500
	}
	return &Sheets{opts: opts}
}

// Path returns the source document path for a 1-based sheet index.
func (s *Sheets) Path(sheet int) string {
	return filepath.Join(s.opts.Dir, fmt.Sprintf(s.opts.Pattern, sheet))
}

// Rasterize renders every page of the sheet and stitches them vertically on
// a white background.
func (s *Sheets) Rasterize(sheet int) (image.Image, error) {
	path := s.Path(sheet)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("sheet %02d (%s): %w", sheet, path, ErrMissingSourceFile)
		}
		return nil, fmt.Errorf("sheet %02d: %w", sheet, err)
	}

	var pages []image.Image
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		pages, err = renderPDF(path, s.opts.DPI)
	default:
		var img image.Image
		img, err = imaging.Load(path)
		pages = []image.Image{img}
	}
	if err != nil {
		return nil, fmt.Errorf("sheet %02d: %w", sheet, err)
	}

	page, err := imaging.Stitch(pages, s.opts.PageStride, color.White)
	if err != nil {
		return nil, fmt.Errorf("sheet %02d: %w", sheet, err)
	}
	return page, nil
}

// renderPDF rasterizes every page of the PDF at path.
func renderPDF(path string, dpi float64) ([]image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
