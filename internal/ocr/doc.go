// Package ocr describes per-character observations of a sheet raster.
//
// The exercise detector works on single characters rather than words, so a
// BoxExtractor reports symbol-level bounding boxes in the same shape
// Tesseract's box files use: one character with its left, bottom, right and
// top edges. The Tesseract engine itself lives in the tesseract subpackage,
// which is the only part of the module that needs cgo.
//
// # Coordinate System
//
// Unlike the imaging package, CharBox coordinates have their origin at the
// BOTTOM-left corner of the page:
//   - Left/Right: horizontal pixel position, increasing rightward
//   - Bottom/Top: vertical pixel position measured up from the bottom edge
//
// # Recorded Output
//
// ParseBoxes reads the text format produced by `tesseract ... makebox` and
// pytesseract's image_to_boxes. BoxFile replays such a file as an extractor,
// and BoxFiles maps sheet numbers to recorded files, which keeps boundary
// detection reproducible without a Tesseract install.
package ocr
