package ocr

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
)

// CharBox is a single recognized character and its bounding box in page
// pixels, origin at the bottom-left corner.
type CharBox struct {
	Char   rune `json:"char"`
	Left   int  `json:"left"`
	Bottom int  `json:"bottom"`
	Right  int  `json:"right"`
	Top    int  `json:"top"`
}

// BoxExtractor produces character observations for a page raster in
// reading order (left to right, top to bottom).
type BoxExtractor interface {
	ExtractBoxes(img image.Image) ([]CharBox, error)
}

// ParseBoxes reads Tesseract box-file text. Each non-empty line has the form
//
//	<char> <left> <bottom> <right> <top> [page]
//
// Coordinates are already bottom-origin and are returned unchanged.
func ParseBoxes(r io.Reader) ([]CharBox, error) {
	var boxes []CharBox
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("box line %d: expected at least 5 fields, got %d", lineNo, len(fields))
		}

		var coords [4]int
		for i := 0; i < 4; i++ {
			v, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return nil, fmt.Errorf("box line %d: invalid coordinate %q: %w", lineNo, fields[i+1], err)
			}
			coords[i] = v
		}

		boxes = append(boxes, CharBox{
			Char:   []rune(fields[0])[0],
			Left:   coords[0],
			Bottom: coords[1],
			Right:  coords[2],
			Top:    coords[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read boxes: %w", err)
	}
	return boxes, nil
}

// BoxFile is a BoxExtractor that ignores the image and replays a recorded
// box file from disk.
type BoxFile struct {
	Path string
}

// ExtractBoxes parses the box file at f.Path.
func (f BoxFile) ExtractBoxes(image.Image) ([]CharBox, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open box file: %w", err)
	}
	defer fh.Close()
	return ParseBoxes(fh)
}

// BoxFiles maps a sheet number to the BoxFile named by pattern, a format
// string such as "boxes/Assignment %02d.box".
func BoxFiles(pattern string) func(sheet int) BoxExtractor {
	return func(sheet int) BoxExtractor {
		return BoxFile{Path: fmt.Sprintf(pattern, sheet)}
	}
}

// Static is a BoxExtractor returning a fixed observation sequence.
type Static []CharBox

// ExtractBoxes returns a copy of s.
func (s Static) ExtractBoxes(image.Image) ([]CharBox, error) {
	return append([]CharBox(nil), s...), nil
}
