// Package exam composes randomized exams from stored exercise fragments.
//
// Composing an exam draws distinct exercises from the pool of all sheets,
// cuts any sheet whose fragments are not stored yet, and renders a single
// image: a title band with the title and working instructions, followed by
// every fragment under a "Problem k" label.
//
// # Layout
//
//	+-----------------------------+  0
//	|            Title            |
//	| Number of problems: n       |
//	| Working time: m minutes     |
//	+-----------------------------+  Bands.Title
//	| Problem 1                   |
//	+-----------------------------+  + Bands.Label
//	| fragment 1                  |
//	+-----------------------------+
//	| Problem 2                   |
//	...
//
// The canvas is as wide as the widest fragment. Fragments are left aligned.
package exam

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/ironsheep/exam-builder/internal/imaging"
	"github.com/ironsheep/exam-builder/internal/store"
)

// Generator regenerates every fragment of a sheet.
type Generator interface {
	Extract(ctx context.Context, sheet int) (int, error)
}

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Pool describes the exercises available for selection.
type Pool struct {
	Sheets            int
	ExercisesPerSheet int
}

// Size returns the number of exercises in the pool.
func (p Pool) Size() int {
	if p.Sheets <= 0 || p.ExercisesPerSheet <= 0 {
		return 0
	}
	return p.Sheets * p.ExercisesPerSheet
}

// Exam is a composed exam.
type Exam struct {
	// Keys lists the fragments in the order they appear.
	Keys    []store.Key
	Title   string
	Minutes int
	Image   *image.NRGBA

	// DPI is the resolution of the fragments, used to size PDF pages.
	DPI float64
}

// Name returns the artifact file name, e.g. "exam_S01E2_S05E3.png". Every
// fragment is named so the matching solutions can be looked up.
func (e *Exam) Name(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "png"
	}
	parts := make([]string, 0, len(e.Keys)+1)
	parts = append(parts, "exam")
	for _, k := range e.Keys {
		parts = append(parts, k.String())
	}
	return strings.Join(parts, "_") + "." + ext
}

// Save writes the exam into dir using the given extension and returns the
// path written. "pdf" produces a single printable page; any other extension
// is encoded as an image.
func (e *Exam) Save(dir, ext string) (string, error) {
	path := filepath.Join(dir, e.Name(ext))
	save := func() error { return imaging.Save(path, e.Image) }
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		save = func() error { return imaging.SavePDF(path, e.Image, e.DPI) }
	}
	if err := save(); err != nil {
		return "", fmt.Errorf("save exam: %w", err)
	}
	return path, nil
}

// Composer builds exams. Store, Rand and Fonts are required; a nil
// Generator makes missing fragments an error.
type Composer struct {
	Store     store.Store
	Generator Generator
	Rand      *rand.Rand
	Fonts     *Fonts

	Pool              Pool
	MinutesPerProblem int
	Bands             Bands
	Style             Style
	// DPI the fragments were rendered at.
	DPI float64

	// Log receives progress lines. Nil disables logging.
	Log Logger
}

// NewComposer returns a Composer with the default layout and style.
func NewComposer(s store.Store, gen Generator, r *rand.Rand, fonts *Fonts, pool Pool) *Composer {
	return &Composer{
		Store:             s,
		Generator:         gen,
		Rand:              r,
		Fonts:             fonts,
		Pool:              pool,
		MinutesPerProblem: 25,
		Bands:             DefaultBands,
		Style:             DefaultStyle,
		DPI:               500,
	}
}

// Compose selects problemCount distinct exercises and renders the exam.
func (c *Composer) Compose(ctx context.Context, problemCount int, title string) (*Exam, error) {
	ids, err := Select(c.Rand, problemCount, c.Pool.Size())
	if err != nil {
		return nil, err
	}

	keys := make([]store.Key, len(ids))
	for i, id := range ids {
		keys[i] = Resolve(id, c.Pool.ExercisesPerSheet)
	}
	c.logf("selected %v", keys)

	fragments, err := c.fragments(ctx, keys)
	if err != nil {
		return nil, err
	}

	img, err := c.Render(title, fragments)
	if err != nil {
		return nil, err
	}

	return &Exam{
		Keys:    keys,
		Title:   title,
		Minutes: problemCount * c.MinutesPerProblem,
		Image:   img,
		DPI:     c.DPI,
	}, nil
}

// fragments reads every key, cutting a sheet first when its fragment is
// missing.
func (c *Composer) fragments(ctx context.Context, keys []store.Key) ([]image.Image, error) {
	out := make([]image.Image, len(keys))
	for i, key := range keys {
		ok, err := c.Store.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if !ok {
			if c.Generator == nil {
				return nil, fmt.Errorf("%s: %w", key, store.ErrNotFound)
			}
			c.logf("%s missing, extracting sheet %02d", key, key.Sheet)
			if _, err := c.Generator.Extract(ctx, key.Sheet); err != nil {
				return nil, fmt.Errorf("extract for %s: %w", key, err)
			}
		}

		img, err := c.Store.Read(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", key, err)
		}
		out[i] = img
	}
	return out, nil
}

// Render draws the title band and pastes the fragments in order.
func (c *Composer) Render(title string, fragments []image.Image) (*image.NRGBA, error) {
	sizes := make([]image.Point, len(fragments))
	for i, f := range fragments {
		sizes[i] = f.Bounds().Size()
	}
	layout := ComputeLayout(sizes, c.Bands)

	r, err := newRenderer(c.Fonts, c.Style)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	canvas := imaging.NewCanvas(layout.Width, layout.Height, c.Style.Background)
	for i, f := range fragments {
		imaging.PasteAt(canvas, f, 0, layout.FragmentTop(i, c.Bands))
	}

	p := pen{dst: canvas, ink: image.NewUniform(c.Style.Ink)}
	r.header(p, title, len(fragments), len(fragments)*c.MinutesPerProblem)
	for i := range fragments {
		r.problemLabel(p, i+1, layout.Offsets[i])
	}
	c.logf("rendered %dx%d exam with %d problems", layout.Width, layout.Height, len(fragments))

	return canvas, nil
}

func (c *Composer) logf(format string, v ...interface{}) {
	if c.Log != nil {
		c.Log.Printf(format, v...)
	}
}
