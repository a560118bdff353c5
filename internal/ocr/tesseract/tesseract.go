// Package tesseract recognizes characters with the Tesseract engine through
// gosseract/v2. It needs cgo and the Tesseract libraries; the rest of
// exam-builder only depends on the ocr.BoxExtractor interface.
//
// Tesseract's iterator API reports top-left origin rectangles; they are
// flipped using the page height to the bottom-left origin of ocr.CharBox.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// A non-default tessdata directory can be given with Options.TessdataPrefix.
package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/exam-builder/internal/ocr"
)

// Options configures the Tesseract extractor.
type Options struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty means Tesseract's compiled-in default or $TESSDATA_PREFIX.
	TessdataPrefix string

	// Threshold binarizes the raster before recognition when non-zero.
	// See Preprocess.
	Threshold uint8
}

// Tesseract is an ocr.BoxExtractor backed by the gosseract client.
type Tesseract struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract extractor. An empty language
// defaults to English.
func New(opts Options) *Tesseract {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	return &Tesseract{opts: opts, clientFactory: gosseract.NewClient}
}

// ExtractBoxes performs symbol-level OCR on img and returns one ocr.CharBox per
// recognized character in reading order.
//
// Tesseract's iterator reports rectangles with a top-left origin; they are
// converted to bottom-left origin using the image height. Blank symbols are
// dropped.
func (t *Tesseract) ExtractBoxes(img image.Image) ([]ocr.CharBox, error) {
	prepared := Preprocess(img, t.opts.Threshold)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode page for OCR: %w", err)
	}

	client := t.clientFactory()
	defer client.Close()

	if t.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.opts.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(t.opts.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	symbols, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	height := prepared.Bounds().Dy()
	origin := prepared.Bounds().Min
	boxes := make([]ocr.CharBox, 0, len(symbols))
	for _, s := range symbols {
		word := strings.TrimSpace(s.Word)
		if word == "" {
			continue
		}
		minX := s.Box.Min.X - origin.X
		minY := s.Box.Min.Y - origin.Y
		maxX := s.Box.Max.X - origin.X
		maxY := s.Box.Max.Y - origin.Y
		boxes = append(boxes, ocr.CharBox{
			Char:   []rune(word)[0],
			Left:   minX,
			Bottom: height - maxY,
			Right:  maxX,
			Top:    height - minY,
		})
	}

	return boxes, nil
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
