// Package sheet cuts an assignment sheet into per-exercise fragments.
//
// An Extractor runs the whole pipeline for one sheet: render the source
// document, recognize characters, find the exercise headings, crop one
// fragment per exercise and write the fragments to the store. It always
// regenerates every fragment of the sheet, never a single one.
//
// Fragments are written as exercises 1..n and nothing is deleted. When a
// sheet yields fewer exercises than before, the higher-numbered fragments of
// the earlier run stay in the store; Extract logs any count that differs from
// Expected so such sheets can be cleaned up by hand.
package sheet

import (
	"context"
	"fmt"
	"log"

	"github.com/ironsheep/exam-builder/internal/detection"
	"github.com/ironsheep/exam-builder/internal/ocr"
	"github.com/ironsheep/exam-builder/internal/source"
	"github.com/ironsheep/exam-builder/internal/store"
)

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Extractor turns sheets into stored fragments.
type Extractor struct {
	Source source.Rasterizer
	OCR    ocr.BoxExtractor

	// Boxes, when set, supplies the extractor for a sheet and takes
	// precedence over OCR. See ocr.BoxFiles.
	Boxes func(sheet int) ocr.BoxExtractor

	Detector *detection.Detector
	Cropper  *detection.Cropper
	Store    store.Store

	// Expected is the number of exercises every sheet should yield. A
	// different count is logged. Zero disables the check.
	Expected int

	// Log receives progress lines. Nil disables logging.
	Log Logger
}

// Extract regenerates all fragments of a 1-based sheet and returns how many
// exercises were written.
func (e *Extractor) Extract(ctx context.Context, sheet int) (int, error) {
	page, err := e.Source.Rasterize(sheet)
	if err != nil {
		return 0, err
	}
	e.logf("sheet %02d: rasterized %dx%d", sheet, page.Bounds().Dx(), page.Bounds().Dy())

	boxes, err := e.extractor(sheet).ExtractBoxes(page)
	if err != nil {
		return 0, fmt.Errorf("sheet %02d: %w", sheet, err)
	}
	e.logf("sheet %02d: %d characters recognized", sheet, len(boxes))

	cuts, err := e.Detector.Detect(boxes)
	if err != nil {
		return 0, fmt.Errorf("sheet %02d: %w", sheet, err)
	}

	regions := e.Cropper.Regions(cuts, boxes[len(boxes)-1].Bottom)
	fragments, err := e.Cropper.Crop(page, regions)
	if err != nil {
		return 0, fmt.Errorf("sheet %02d: %w", sheet, err)
	}

	for i, frag := range fragments {
		key := store.Key{Sheet: sheet, Exercise: i + 1}
		if err := e.Store.Write(ctx, key, frag); err != nil {
			return 0, fmt.Errorf("sheet %02d: write fragment: %w", sheet, err)
		}
	}
	e.logf("sheet %02d: %d exercises extracted", sheet, len(fragments))
	if e.Expected > 0 && len(fragments) != e.Expected {
		e.warnf("sheet %02d: found %d exercises, expected %d; stored fragments above %d are left untouched",
			sheet, len(fragments), e.Expected, len(fragments))
	}

	return len(fragments), nil
}

// EnsureAll extracts every listed sheet whose first fragment is not stored
// yet. It stops at the first failure.
func (e *Extractor) EnsureAll(ctx context.Context, sheets []int) error {
	for _, s := range sheets {
		ok, err := e.Store.Exists(ctx, store.Key{Sheet: s, Exercise: 1})
		if err != nil {
			return err
		}
		if ok {
			e.logf("sheet %02d: already extracted", s)
			continue
		}
		if _, err := e.Extract(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) extractor(sheet int) ocr.BoxExtractor {
	if e.Boxes != nil {
		return e.Boxes(sheet)
	}
	return e.OCR
}

// warnf goes to Log when set and to the standard logger otherwise.
func (e *Extractor) warnf(format string, v ...interface{}) {
	if e.Log != nil {
		e.Log.Printf("WARNING: "+format, v...)
		return
	}
	log.Printf("WARNING: "+format, v...)
}

func (e *Extractor) logf(format string, v ...interface{}) {
	if e.Log != nil {
		e.Log.Printf(format, v...)
	}
}
