package detection

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ironsheep/exam-builder/internal/ocr"
)

// word lays out text as consecutive boxes sharing one baseline.
func word(text string, bottom int) []ocr.CharBox {
	boxes := make([]ocr.CharBox, 0, len(text))
	for i, r := range text {
		boxes = append(boxes, ocr.CharBox{Char: r, Left: i * 10, Bottom: bottom, Right: i*10 + 8, Top: bottom + 12})
	}
	return boxes
}

func stream(parts ...[]ocr.CharBox) []ocr.CharBox {
	var out []ocr.CharBox
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestDetect_HomeworkThenTutorial(t *testing.T) {
	boxes := stream(
		word("Homework", 500),
		word("Sort", 450),
		word("Homework", 300),
		word("z", 200),
		word("Tutorial", 180),
		word("Homework", 100),
	)

	cuts, err := NewDetector().Detect(boxes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !reflect.DeepEqual(cuts.Homework, []int{500, 300}) {
		t.Errorf("homework cuts: got %v, want [500 300]", cuts.Homework)
	}
	if cuts.Tutorial == nil || *cuts.Tutorial != 200 {
		t.Errorf("tutorial cut: got %v, want 200", cuts.Tutorial)
	}
}

func TestDetect_NoTutorial(t *testing.T) {
	boxes := stream(word("Homework", 900), word("Homework", 600), word("end", 100))

	cuts, err := NewDetector().Detect(boxes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !reflect.DeepEqual(cuts.Homework, []int{900, 600}) {
		t.Errorf("homework cuts: got %v, want [900 600]", cuts.Homework)
	}
	if cuts.Tutorial != nil {
		t.Errorf("tutorial cut: got %d, want none", *cuts.Tutorial)
	}
}

func TestDetect_NoExercises(t *testing.T) {
	tests := []struct {
		name  string
		boxes []ocr.CharBox
	}{
		{"empty", nil},
		{"too short", word("Ho", 10)},
		{"no marker", word("Exercise", 10)},
		{"tutorial first", stream(word("a", 50), word("Tutorial", 40), word("Homework", 30))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDetector().Detect(tt.boxes)
			if !errors.Is(err, ErrNoExercisesFound) {
				t.Errorf("got %v, want ErrNoExercisesFound", err)
			}
		})
	}
}

func TestDetect_PartialMatch(t *testing.T) {
	// OCR garbled everything after the third letter
	boxes := stream(word("Homxvvrk", 700), word("Hom3", 400), word("tail", 10))

	cuts, err := NewDetector().Detect(boxes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !reflect.DeepEqual(cuts.Homework, []int{700, 400}) {
		t.Errorf("homework cuts: got %v, want [700 400]", cuts.Homework)
	}
}

func TestDetect_CaseSensitive(t *testing.T) {
	_, err := NewDetector().Detect(word("homework", 10))
	if !errors.Is(err, ErrNoExercisesFound) {
		t.Errorf("lowercase heading should not match, got %v", err)
	}
}

func TestDetect_Tolerance(t *testing.T) {
	boxes := stream(word("Hcm", 800), word("Homework", 500), word("end", 100))

	strict := NewDetector()
	cuts, err := strict.Detect(boxes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(cuts.Homework) != 1 {
		t.Errorf("strict detector: got %v, want one cut", cuts.Homework)
	}

	lenient := NewDetector()
	lenient.Homework.Tolerance = 1
	cuts, err = lenient.Detect(boxes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(cuts.Homework) == 0 || cuts.Homework[0] != 800 {
		t.Errorf("lenient detector should accept one mismatch, got %v", cuts.Homework)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	boxes := stream(word("Homework", 900), word("x", 800), word("Homework", 600), word("y", 300), word("Tutorial", 200))

	first, err := NewDetector().Detect(boxes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := NewDetector().Detect(boxes)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: got %+v, want %+v", i, again, first)
		}
	}
}

func TestMarker_Matches(t *testing.T) {
	tests := []struct {
		name   string
		marker Marker
		window []ocr.CharBox
		want   bool
	}{
		{"homework prefix", HomeworkMarker, word("Hom", 0), true},
		{"homework wrong third", HomeworkMarker, word("Hoa", 0), false},
		{"tutorial offset", TutorialMarker, word("xTu", 0), true},
		{"tutorial at start", TutorialMarker, word("Tut", 0), false},
		{"prefix longer than phrase", Marker{Phrase: "Ab", Prefix: 5}, word("Abc", 0), true},
		{"zero prefix never matches", Marker{Phrase: "Ab"}, word("Abc", 0), false},
		{"window too short", Marker{Phrase: "Abcd", Prefix: 4}, word("Abc", 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.marker.matches(tt.window); got != tt.want {
				t.Errorf("matches: got %v, want %v", got, tt.want)
			}
		})
	}
}
