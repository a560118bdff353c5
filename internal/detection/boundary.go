package detection

import (
	"errors"

	"github.com/ironsheep/exam-builder/internal/ocr"
)

// ErrNoExercisesFound is returned when a sheet contains no exercise marker.
var ErrNoExercisesFound = errors.New("no exercises found")

// windowSize is the number of consecutive observations examined at once.
const windowSize = 3

// Marker is a literal heading phrase detected by a partial prefix match.
//
// OCR frequently garbles the tail of a word, so only the first Prefix
// characters of Phrase are compared, starting Offset observations into the
// scan window. Up to Tolerance of those characters may differ.
type Marker struct {
	Phrase    string
	Prefix    int
	Offset    int
	Tolerance int
}

// HomeworkMarker matches "Hom" at the start of the window.
var HomeworkMarker = Marker{Phrase: "Homework", Prefix: 3}

// TutorialMarker matches "Tu" one observation into the window, leaving the
// first observation as the character that precedes the heading.
var TutorialMarker = Marker{Phrase: "Tutorial", Prefix: 2, Offset: 1}

// matches reports whether window satisfies the marker.
func (m Marker) matches(window []ocr.CharBox) bool {
	phrase := []rune(m.Phrase)
	n := m.Prefix
	if n > len(phrase) {
		n = len(phrase)
	}
	if n <= 0 || m.Offset+n > len(window) {
		return false
	}

	mismatches := 0
	for i := 0; i < n; i++ {
		if window[m.Offset+i].Char != phrase[i] {
			mismatches++
			if mismatches > m.Tolerance {
				return false
			}
		}
	}
	return true
}

// Cuts holds the vertical cut coordinates detected on one sheet, in
// bottom-origin page pixels.
type Cuts struct {
	// Homework holds the bottom edge of each exercise heading, top of page first.
	Homework []int `json:"homework"`

	// Tutorial is the bottom edge of the character preceding the first
	// tutorial heading, or nil when the sheet has none.
	Tutorial *int `json:"tutorial,omitempty"`
}

// Detector finds exercise boundaries in an OCR character stream.
type Detector struct {
	Homework Marker
	Tutorial Marker
}

// NewDetector returns a Detector using the default markers.
func NewDetector() *Detector {
	return &Detector{Homework: HomeworkMarker, Tutorial: TutorialMarker}
}

// Detect scans boxes with a sliding window of three observations.
//
// Each window that matches the homework marker records the bottom of its
// first observation. The first window matching the tutorial marker records
// the bottom of its first observation (the character before the heading) and
// ends the scan, since tutorial exercises are never extracted. Homework
// matches are tested before tutorial matches at every position.
func (d *Detector) Detect(boxes []ocr.CharBox) (*Cuts, error) {
	cuts := &Cuts{}

	for i := 0; i+windowSize <= len(boxes); i++ {
		window := boxes[i : i+windowSize]
		if d.Homework.matches(window) {
			cuts.Homework = append(cuts.Homework, window[0].Bottom)
		} else if d.Tutorial.matches(window) {
			tut := window[0].Bottom
			cuts.Tutorial = &tut
			break
		}
	}

	if len(cuts.Homework) == 0 {
		return nil, ErrNoExercisesFound
	}
	return cuts, nil
}
