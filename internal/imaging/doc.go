// Package imaging provides the raster operations used to cut sheets into
// exercise fragments and to assemble exams from them.
//
// It is a thin layer over github.com/disintegration/imaging that fixes the
// conventions the rest of the module relies on: crops always keep the full
// page width, results are independent *image.NRGBA copies based at (0,0),
// and pasted images replace (rather than blend with) the canvas pixels.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with the origin at the
// top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Row ranges are half-open: [y0, y1)
//
// Callers holding bottom-origin OCR coordinates must convert them first
// (see detection.Cropper.Rows).
//
// # Colors
//
// Colors in configuration are CSS hex strings parsed with go-colorful.
package imaging
