// Package config collects the settings of exam-builder.
//
// Settings are resolved in order, later sources winning:
//
//  1. built-in defaults (Default)
//  2. a .env file, when present
//  3. EXAM_* environment variables
//  4. command line flags (RegisterFlags)
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

// Config holds every recognized option.
type Config struct {
	// Exercise pool
	Sheets            int
	ExercisesPerSheet int

	// Exam
	Problems          int
	Title             string
	MinutesPerProblem int
	Seed              int64

	// Source documents
	SourceDir     string
	SourcePattern string
	DPI           float64
	PageStride    int

	// Fragment store
	StoreBackend string
	FragmentDir  string
	BoltPath     string
	DatabaseURL  string

	// Exam output
	ExamDir    string
	ExamFormat string

	// OCR
	Language       string
	TessdataPrefix string
	OCRThreshold   int
	// BoxPattern names recorded box files per sheet, e.g.
	// "boxes/Assignment %02d.box". When set, Tesseract is not used.
	BoxPattern string

	// Markers
	HomeworkPhrase    string
	HomeworkPrefix    int
	HomeworkTolerance int
	TutorialPhrase    string
	TutorialPrefix    int
	TutorialTolerance int

	// Crop margins in pixels
	CropTop      int
	CropBottom   int
	CropTrailing int

	// Layout in pixels
	TitleBand  int
	LabelBand  int
	EmptyWidth int

	// Text offsets in pixels
	TitleTop       int
	TextLeft       int
	InstructionTop int
	LineGap        int
	LabelTop       int

	// Text
	TitleFontSize       float64
	InstructionFontSize float64
	LabelFontSize       float64
	BoldFont            string
	RegularFont         string
	Background          string
	Ink                 string

	LogLevel string
}

// Default returns the settings the exams have always been built with.
func Default() *Config {
	return &Config{
		Sheets:            12,
		ExercisesPerSheet: 4,

		Problems:          5,
		Title:             "Efficient Algorithms and Datastructures 1",
		MinutesPerProblem: 25,

		SourceDir:     "sheet_pdfs",
		SourcePattern: "Assignment %02d.pdf",
		DPI:           500,

		StoreBackend: StoreFile,
		FragmentDir:  "pngs",
		BoltPath:     "pngs/fragments.db",

		ExamDir:    "exams",
		ExamFormat: "png",

		Language: "eng",

		HomeworkPhrase: "Homework",
		HomeworkPrefix: 3,
		TutorialPhrase: "Tutorial",
		TutorialPrefix: 2,

		CropTop:      20,
		CropBottom:   70,
		CropTrailing: 100,

		TitleBand:  700,
		LabelBand:  150,
		EmptyWidth: 4134,

		TitleTop:       50,
		TextLeft:       200,
		InstructionTop: 300,
		LineGap:        50,
		LabelTop:       15,

		TitleFontSize:       120,
		InstructionFontSize: 80,
		LabelFontSize:       100,
		Background:          "#ffffff",
		Ink:                 "#000000",

		LogLevel: "info",
	}
}

// Load returns the defaults overridden by envFile (skipped when it does not
// exist) and the environment. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env collects the first parse error while reading variables.
type env struct {
	err error
}

func (e *env) str(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (e *env) num(key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *env) num64(key string, dst *int64) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *env) float(key string, dst *float64) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = f
}

func (e *env) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (c *Config) applyEnv() error {
	e := &env{}

	e.num("EXAM_SHEETS", &c.Sheets)
	e.num("EXAM_EXERCISES_PER_SHEET", &c.ExercisesPerSheet)

	e.num("EXAM_PROBLEMS", &c.Problems)
	e.str("EXAM_TITLE", &c.Title)
	e.num("EXAM_MINUTES_PER_PROBLEM", &c.MinutesPerProblem)
	e.num64("EXAM_SEED", &c.Seed)

	e.str("EXAM_SOURCE_DIR", &c.SourceDir)
	e.str("EXAM_SOURCE_PATTERN", &c.SourcePattern)
	e.float("EXAM_DPI", &c.DPI)
	e.num("EXAM_PAGE_STRIDE", &c.PageStride)

	e.str("EXAM_STORE", &c.StoreBackend)
	e.str("EXAM_FRAGMENT_DIR", &c.FragmentDir)
	e.str("EXAM_BOLT_PATH", &c.BoltPath)
	e.str("DATABASE_URL", &c.DatabaseURL)

	e.str("EXAM_OUTPUT_DIR", &c.ExamDir)
	e.str("EXAM_OUTPUT_FORMAT", &c.ExamFormat)

	e.str("EXAM_OCR_LANG", &c.Language)
	e.str("TESSDATA_PREFIX", &c.TessdataPrefix)
	e.num("EXAM_OCR_THRESHOLD", &c.OCRThreshold)
	e.str("EXAM_BOX_PATTERN", &c.BoxPattern)

	e.str("EXAM_HOMEWORK_MARKER", &c.HomeworkPhrase)
	e.num("EXAM_HOMEWORK_PREFIX", &c.HomeworkPrefix)
	e.num("EXAM_HOMEWORK_TOLERANCE", &c.HomeworkTolerance)
	e.str("EXAM_TUTORIAL_MARKER", &c.TutorialPhrase)
	e.num("EXAM_TUTORIAL_PREFIX", &c.TutorialPrefix)
	e.num("EXAM_TUTORIAL_TOLERANCE", &c.TutorialTolerance)

	e.num("EXAM_CROP_TOP", &c.CropTop)
	e.num("EXAM_CROP_BOTTOM", &c.CropBottom)
	e.num("EXAM_CROP_TRAILING", &c.CropTrailing)

	e.num("EXAM_TITLE_BAND", &c.TitleBand)
	e.num("EXAM_LABEL_BAND", &c.LabelBand)
	e.num("EXAM_EMPTY_WIDTH", &c.EmptyWidth)

	e.num("EXAM_TITLE_TOP", &c.TitleTop)
	e.num("EXAM_TEXT_LEFT", &c.TextLeft)
	e.num("EXAM_INSTRUCTION_TOP", &c.InstructionTop)
	e.num("EXAM_LINE_GAP", &c.LineGap)
	e.num("EXAM_LABEL_TOP", &c.LabelTop)

	e.float("EXAM_TITLE_FONT_SIZE", &c.TitleFontSize)
	e.float("EXAM_INSTRUCTION_FONT_SIZE", &c.InstructionFontSize)
	e.float("EXAM_LABEL_FONT_SIZE", &c.LabelFontSize)
	e.str("EXAM_BOLD_FONT", &c.BoldFont)
	e.str("EXAM_REGULAR_FONT", &c.RegularFont)
	e.str("EXAM_BACKGROUND", &c.Background)
	e.str("EXAM_INK", &c.Ink)

	e.str("EXAM_LOG_LEVEL", &c.LogLevel)

	return e.err
}

// RegisterFlags binds the most used options to fs, using the current values
// as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Sheets, "sheets", c.Sheets, "number of assignment sheets")
	fs.IntVar(&c.ExercisesPerSheet, "per-sheet", c.ExercisesPerSheet, "homework exercises per sheet")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed, 0 for time based")

	fs.StringVar(&c.SourceDir, "sources", c.SourceDir, "directory holding the sheet documents")
	fs.StringVar(&c.SourcePattern, "pattern", c.SourcePattern, "sheet file name pattern")
	fs.Float64Var(&c.DPI, "dpi", c.DPI, "PDF rendering resolution")

	fs.StringVar(&c.StoreBackend, "store", c.StoreBackend, "fragment store: file, bolt or postgres")
	fs.StringVar(&c.FragmentDir, "fragments", c.FragmentDir, "fragment directory for the file store")
	fs.StringVar(&c.BoltPath, "bolt", c.BoltPath, "database file for the bolt store")
	fs.StringVar(&c.DatabaseURL, "database-url", c.DatabaseURL, "PostgreSQL connection string")

	fs.StringVar(&c.Language, "lang", c.Language, "Tesseract language")
	fs.StringVar(&c.BoxPattern, "boxes", c.BoxPattern, "recorded box file pattern, replaces Tesseract when set")
}

// RegisterExamFlags binds the options that only apply to composing exams.
func (c *Config) RegisterExamFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Problems, "n", c.Problems, "number of problems")
	fs.StringVar(&c.Title, "title", c.Title, "exam title")
	fs.IntVar(&c.MinutesPerProblem, "minutes", c.MinutesPerProblem, "working minutes per problem")
	fs.StringVar(&c.ExamDir, "out", c.ExamDir, "output directory")
	fs.StringVar(&c.ExamFormat, "format", c.ExamFormat, "output format: png, jpg or pdf")
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}

	positive("sheets", float64(c.Sheets))
	positive("exercises per sheet", float64(c.ExercisesPerSheet))
	positive("dpi", c.DPI)
	positive("title font size", c.TitleFontSize)
	positive("instruction font size", c.InstructionFontSize)
	positive("label font size", c.LabelFontSize)
	positive("homework prefix", float64(c.HomeworkPrefix))
	positive("tutorial prefix", float64(c.TutorialPrefix))
	positive("empty width", float64(c.EmptyWidth))

	nonNegative("problems", c.Problems)
	nonNegative("minutes per problem", c.MinutesPerProblem)
	nonNegative("page stride", c.PageStride)
	nonNegative("title band", c.TitleBand)
	nonNegative("label band", c.LabelBand)
	nonNegative("homework tolerance", c.HomeworkTolerance)
	nonNegative("tutorial tolerance", c.TutorialTolerance)
	nonNegative("title top", c.TitleTop)
	nonNegative("text left", c.TextLeft)
	nonNegative("instruction top", c.InstructionTop)
	nonNegative("line gap", c.LineGap)
	nonNegative("label top", c.LabelTop)

	// A tolerance of the whole prefix would accept any window.
	if c.HomeworkTolerance >= c.HomeworkPrefix {
		errs = append(errs, fmt.Errorf("homework tolerance %d must be below the prefix length %d", c.HomeworkTolerance, c.HomeworkPrefix))
	}
	if c.TutorialTolerance >= c.TutorialPrefix {
		errs = append(errs, fmt.Errorf("tutorial tolerance %d must be below the prefix length %d", c.TutorialTolerance, c.TutorialPrefix))
	}

	if c.OCRThreshold < 0 || c.OCRThreshold > 255 {
		errs = append(errs, fmt.Errorf("ocr threshold must be within 0-255, got %d", c.OCRThreshold))
	}
	if c.HomeworkPhrase == "" || c.TutorialPhrase == "" {
		errs = append(errs, errors.New("marker phrases must not be empty"))
	}

	switch c.StoreBackend {
	case StoreFile, StoreBolt:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("postgres store needs DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}

	switch strings.ToLower(c.ExamFormat) {
	case "png", "jpg", "jpeg", "pdf":
	default:
		errs = append(errs, fmt.Errorf("unsupported output format %q", c.ExamFormat))
	}

	return errors.Join(errs...)
}
