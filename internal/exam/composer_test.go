package exam

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ironsheep/exam-builder/internal/store"
)

// keyColor gives every fragment a distinct solid colour.
func keyColor(k store.Key) color.NRGBA {
	return color.NRGBA{R: uint8(k.Sheet * 20), G: uint8(k.Exercise * 40), B: 10, A: 255}
}

func createFragment(k store.Key, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	c := keyColor(k)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// fakeSheets writes perSheet fragments for each extracted sheet.
type fakeSheets struct {
	store    store.Store
	perSheet int
	calls    []int
	err      error
}

func (f *fakeSheets) Extract(ctx context.Context, sheet int) (int, error) {
	f.calls = append(f.calls, sheet)
	if f.err != nil {
		return 0, f.err
	}
	for e := 1; e <= f.perSheet; e++ {
		k := store.Key{Sheet: sheet, Exercise: e}
		if err := f.store.Write(ctx, k, createFragment(k, 1000, 200)); err != nil {
			return 0, err
		}
	}
	return f.perSheet, nil
}

func newTestComposer(t *testing.T, s store.Store, gen Generator, seed int64, pool Pool) *Composer {
	t.Helper()
	fonts, err := LoadFonts("", "")
	if err != nil {
		t.Fatalf("LoadFonts failed: %v", err)
	}
	return NewComposer(s, gen, rand.New(rand.NewSource(seed)), fonts, pool)
}

func TestComposer_Compose(t *testing.T) {
	s := store.NewMemoryStore()
	gen := &fakeSheets{store: s, perSheet: 2}
	c := newTestComposer(t, s, gen, 3, Pool{Sheets: 3, ExercisesPerSheet: 2})

	exam, err := c.Compose(context.Background(), 4, "Algorithms")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(exam.Keys) != 4 {
		t.Fatalf("keys: got %d, want 4", len(exam.Keys))
	}
	seen := make(map[store.Key]bool)
	for _, k := range exam.Keys {
		if seen[k] {
			t.Errorf("%s appears twice", k)
		}
		seen[k] = true
	}
	if exam.Minutes != 100 {
		t.Errorf("minutes: got %d, want 100", exam.Minutes)
	}

	b := exam.Image.Bounds()
	if b.Dx() != 1000 || b.Dy() != 700+4*150+4*200 {
		t.Fatalf("canvas: got %dx%d, want 1000x%d", b.Dx(), b.Dy(), 700+4*150+4*200)
	}

	// Fragments appear in selection order below their labels
	for i, k := range exam.Keys {
		top := 700 + i*(150+200) + 150
		got := exam.Image.NRGBAAt(990, top+100)
		if got != keyColor(k) {
			t.Errorf("problem %d at row %d: got %v, want colour of %s", i+1, top+100, got, k)
		}
		label := inkBounds(exam.Image, image.Rect(0, top-150, 1000, top), color.White)
		if label.Empty() {
			t.Errorf("problem %d has no label", i+1)
		}
	}
}

func TestComposer_Compose_Zero(t *testing.T) {
	s := store.NewMemoryStore()
	c := newTestComposer(t, s, nil, 1, Pool{Sheets: 12, ExercisesPerSheet: 4})

	exam, err := c.Compose(context.Background(), 0, "Title only")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if len(exam.Keys) != 0 {
		t.Errorf("keys: got %v, want none", exam.Keys)
	}
	if b := exam.Image.Bounds(); b.Dx() != 4134 || b.Dy() != 700 {
		t.Errorf("canvas: got %dx%d, want 4134x700", b.Dx(), b.Dy())
	}
	if exam.Name("png") != "exam.png" {
		t.Errorf("name: got %q, want exam.png", exam.Name("png"))
	}
}

func TestComposer_Compose_InsufficientPool(t *testing.T) {
	s := store.NewMemoryStore()
	gen := &fakeSheets{store: s, perSheet: 4}
	c := newTestComposer(t, s, gen, 1, Pool{Sheets: 2, ExercisesPerSheet: 4})

	_, err := c.Compose(context.Background(), 9, "Too many")
	if !errors.Is(err, ErrInsufficientPool) {
		t.Fatalf("got %v, want ErrInsufficientPool", err)
	}
	if len(gen.calls) != 0 {
		t.Errorf("no sheet should be extracted, got %v", gen.calls)
	}
}

func TestComposer_Compose_WholePool(t *testing.T) {
	s := store.NewMemoryStore()
	gen := &fakeSheets{store: s, perSheet: 2}
	c := newTestComposer(t, s, gen, 5, Pool{Sheets: 2, ExercisesPerSheet: 2})

	exam, err := c.Compose(context.Background(), 4, "All")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if len(exam.Keys) != 4 {
		t.Errorf("keys: got %d, want 4", len(exam.Keys))
	}
	// One extraction per sheet, every later key is found in the store
	if len(gen.calls) != 2 {
		t.Errorf("extract calls: got %v, want one per sheet", gen.calls)
	}
}

func TestComposer_Compose_UsesStoredFragments(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	for sheet := 1; sheet <= 2; sheet++ {
		for e := 1; e <= 3; e++ {
			k := store.Key{Sheet: sheet, Exercise: e}
			if err := s.Write(ctx, k, createFragment(k, 500, 100)); err != nil {
				t.Fatalf("seed failed: %v", err)
			}
		}
	}
	gen := &fakeSheets{store: s, perSheet: 3}
	c := newTestComposer(t, s, gen, 9, Pool{Sheets: 2, ExercisesPerSheet: 3})

	if _, err := c.Compose(ctx, 6, "Cached"); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if len(gen.calls) != 0 {
		t.Errorf("stored fragments should not be regenerated, got %v", gen.calls)
	}
}

func TestComposer_Compose_GenerationFailures(t *testing.T) {
	sentinel := errors.New("rasterizer exploded")

	tests := []struct {
		name     string
		perSheet int
		genErr   error
		want     error
	}{
		{"extractor fails", 1, sentinel, sentinel},
		{"fragment still missing", 0, nil, store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			gen := &fakeSheets{store: s, perSheet: tt.perSheet, err: tt.genErr}
			c := newTestComposer(t, s, gen, 1, Pool{Sheets: 1, ExercisesPerSheet: 1})

			_, err := c.Compose(context.Background(), 1, "Broken")
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComposer_Compose_Seeded(t *testing.T) {
	pool := Pool{Sheets: 12, ExercisesPerSheet: 4}

	var runs [][]store.Key
	for i := 0; i < 2; i++ {
		s := store.NewMemoryStore()
		c := newTestComposer(t, s, &fakeSheets{store: s, perSheet: 4}, 2024, pool)
		exam, err := c.Compose(context.Background(), 3, "Seeded")
		if err != nil {
			t.Fatalf("Compose failed: %v", err)
		}
		runs = append(runs, exam.Keys)
	}
	if !reflect.DeepEqual(runs[0], runs[1]) {
		t.Errorf("same seed gave %v and %v", runs[0], runs[1])
	}
}

func TestExam_Name(t *testing.T) {
	e := &Exam{Keys: []store.Key{{Sheet: 1, Exercise: 2}, {Sheet: 5, Exercise: 3}, {Sheet: 12, Exercise: 1}}}

	tests := []struct {
		ext  string
		want string
	}{
		{"png", "exam_S01E2_S05E3_S12E1.png"},
		{".jpg", "exam_S01E2_S05E3_S12E1.jpg"},
		{"", "exam_S01E2_S05E3_S12E1.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := e.Name(tt.ext); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExam_Save(t *testing.T) {
	k := store.Key{Sheet: 3, Exercise: 1}
	e := &Exam{Keys: []store.Key{k}, Image: createFragment(k, 20, 10)}
	dir := filepath.Join(t.TempDir(), "exams")

	path, err := e.Save(dir, "png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "exam_S03E1.png" {
		t.Errorf("path: got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exam file not written: %v", err)
	}
}

func TestExam_Save_PDF(t *testing.T) {
	s := store.NewMemoryStore()
	gen := &fakeSheets{store: s, perSheet: 1}
	c := newTestComposer(t, s, gen, 1, Pool{Sheets: 2, ExercisesPerSheet: 1})

	e, err := c.Compose(context.Background(), 2, "Printable")
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if e.DPI != 500 {
		t.Errorf("DPI: got %v, want 500", e.DPI)
	}

	path, err := e.Save(t.TempDir(), "pdf")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Ext(path) != ".pdf" {
		t.Errorf("path: got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exam: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("exam is not a PDF: %q", data[:min(len(data), 8)])
	}
}
