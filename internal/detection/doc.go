// Package detection locates exercise boundaries on an assignment sheet and
// cuts the sheet into one fragment per exercise.
//
// # Boundary Detection
//
// Exercise headings are found by scanning the OCR character stream with a
// window of three consecutive characters:
//
//  1. A window starting with "Hom" marks a homework heading; the bottom edge
//     of its "H" becomes a cut.
//  2. A window whose second and third characters are "Tu" marks the start of
//     the tutorial part; the bottom edge of the first character (the one
//     before the heading) closes the last homework exercise and the scan
//     stops.
//
// Matching only a short prefix tolerates OCR misreading the rest of the
// word. Markers are data (see Marker) so the phrases, prefix lengths and an
// optional mismatch tolerance can be configured.
//
// # Coordinate System
//
// Cuts and regions use the OCR convention: pixels measured up from the
// bottom edge of the page. Cropper.Rows converts them to image rows.
//
// # Cropping
//
// Consecutive cuts delimit one exercise each; the last exercise is closed
// by the tutorial cut or by the last recognized character, minus a trailing
// margin. Every crop keeps the full page width. Empirical margins keep the
// neighbouring headings' ascenders and descenders out of the fragment; a
// region that has no height left after margins is an error.
package detection
