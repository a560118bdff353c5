package exam

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrRenderResourceMissing is returned when a configured font cannot be
// read or parsed.
var ErrRenderResourceMissing = errors.New("render resource missing")

// Typeface is a parsed TrueType font usable for both drawing and shaping.
type Typeface struct {
	Name   string
	font   *opentype.Font
	shaped *gotext.Face
}

// LoadTypeface reads the font at path. An empty path selects fallback, one
// of the Go fonts compiled into the binary.
func LoadTypeface(path string, fallback []byte) (*Typeface, error) {
	name := path
	data := fallback
	if path == "" {
		name = "builtin"
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("font %s: %v: %w", path, err, ErrRenderResourceMissing)
		}
		data = b
	}
	return ParseTypeface(name, data)
}

// ParseTypeface parses TrueType or OpenType font data.
func ParseTypeface(name string, data []byte) (*Typeface, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %v: %w", name, err, ErrRenderResourceMissing)
	}
	shaped, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font %s: %v: %w", name, err, ErrRenderResourceMissing)
	}
	return &Typeface{Name: name, font: f, shaped: shaped}, nil
}

// Fonts are the two weights used on an exam.
type Fonts struct {
	Bold    *Typeface
	Regular *Typeface
}

// LoadFonts loads the bold and regular faces, using the bundled Go fonts for
// empty paths.
func LoadFonts(boldPath, regularPath string) (*Fonts, error) {
	bold, err := LoadTypeface(boldPath, gobold.TTF)
	if err != nil {
		return nil, err
	}
	regular, err := LoadTypeface(regularPath, goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &Fonts{Bold: bold, Regular: regular}, nil
}

// Face returns a drawing face at size pixels per em.
func (t *Typeface) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font %s at %.0fpx: %w", t.Name, size, err)
	}
	return face, nil
}

// Advance returns the shaped width of s at size pixels per em, rounded up.
func (t *Typeface) Advance(s string, size float64) int {
	runes := []rune(s)
	out := (&shaping.HarfbuzzShaper{}).Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      t.shaped,
		Size:      fixed.Int26_6(size * 64),
		Script:    language.Latin,
		Language:  language.DefaultLanguage(),
	})
	return out.Advance.Ceil()
}

// Style positions and sizes the text on an exam. Coordinates are the top
// left corner of the text in pixels.
type Style struct {
	Background color.Color
	Ink        color.Color

	TitleSize       float64
	InstructionSize float64
	LabelSize       float64

	// TitleTop is the top of the centred title.
	TitleTop int
	// Left is the left edge of instructions and labels.
	Left int
	// InstructionTop is the top of the first instruction line.
	InstructionTop int
	// LineGap is added to the line height between instruction lines.
	LineGap int
	// LabelTop is the distance from a label band's top to its label.
	LabelTop int
}

// DefaultStyle is black on white with the classic exam positions.
var DefaultStyle = Style{
	Background:      color.White,
	Ink:             color.Black,
	TitleSize:       120,
	InstructionSize: 80,
	LabelSize:       100,
	TitleTop:        50,
	Left:            200,
	InstructionTop:  300,
	LineGap:         50,
	LabelTop:        15,
}

// pen draws text in one colour onto a canvas.
type pen struct {
	dst *image.NRGBA
	ink *image.Uniform
}

// text draws s with its top left corner at (x, top) and returns the x
// coordinate right after it.
func (p pen) text(face font.Face, s string, x, top int) int {
	d := &font.Drawer{
		Dst:  p.dst,
		Src:  p.ink,
		Face: face,
		Dot:  fixed.P(x, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return d.Dot.X.Ceil()
}

// renderer holds the faces used for one exam.
type renderer struct {
	fonts       *Fonts
	style       Style
	title       font.Face
	instruction font.Face
	number      font.Face
	label       font.Face
}

func newRenderer(fonts *Fonts, style Style) (*renderer, error) {
	r := &renderer{fonts: fonts, style: style}
	var err error
	if r.title, err = fonts.Bold.Face(style.TitleSize); err != nil {
		return nil, err
	}
	if r.instruction, err = fonts.Bold.Face(style.InstructionSize); err != nil {
		r.Close()
		return nil, err
	}
	if r.number, err = fonts.Regular.Face(style.InstructionSize); err != nil {
		r.Close()
		return nil, err
	}
	if r.label, err = fonts.Bold.Face(style.LabelSize); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the faces.
func (r *renderer) Close() {
	for _, f := range []font.Face{r.title, r.instruction, r.number, r.label} {
		if f != nil {
			f.Close()
		}
	}
}

// header draws the centred title and the two instruction lines.
func (r *renderer) header(p pen, title string, problems, minutes int) {
	width := p.dst.Bounds().Dx()
	w := r.fonts.Bold.Advance(title, r.style.TitleSize)
	p.text(r.title, title, (width-w)/2, r.style.TitleTop)

	top := r.style.InstructionTop
	x := p.text(r.instruction, "Number of problems: ", r.style.Left, top)
	p.text(r.number, strconv.Itoa(problems), x, top)

	top += r.instruction.Metrics().Height.Ceil() + r.style.LineGap
	x = p.text(r.instruction, "Working time: ", r.style.Left, top)
	p.text(r.number, strconv.Itoa(minutes)+" minutes", x, top)
}

// problemLabel draws "Problem k" inside the label band starting at offset.
func (r *renderer) problemLabel(p pen, k, offset int) {
	p.text(r.label, "Problem "+strconv.Itoa(k), r.style.Left, offset+r.style.LabelTop)
}
