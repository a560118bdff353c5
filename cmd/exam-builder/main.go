package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/ironsheep/exam-builder/internal/config"
	"github.com/ironsheep/exam-builder/internal/detection"
	"github.com/ironsheep/exam-builder/internal/exam"
	"github.com/ironsheep/exam-builder/internal/imaging"
	"github.com/ironsheep/exam-builder/internal/ocr"
	"github.com/ironsheep/exam-builder/internal/ocr/tesseract"
	"github.com/ironsheep/exam-builder/internal/sheet"
	"github.com/ironsheep/exam-builder/internal/source"
	"github.com/ironsheep/exam-builder/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("exam-builder - cut assignment sheets into exercises and compose random exams")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  exam-builder extract [flags] [sheet...]   Cut sheets into exercise fragments")
	fmt.Println("  exam-builder compose [flags]              Compose a random exam")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'exam-builder <command> -h' for the flags of a command.")
	fmt.Println()
	fmt.Println("Settings are also read from .env and EXAM_* environment variables, e.g.:")
	fmt.Println("  EXAM_SHEETS=12 EXAM_EXERCISES_PER_SHEET=4 EXAM_STORE=bolt")
	fmt.Println("  EXAM_BOX_PATTERN=<pattern>    Replay recorded OCR box files instead of Tesseract")
	fmt.Println("  EXAM_LOG_LEVEL=debug    Enable debug logging")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("exam-builder %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Tesseract:  %s\n", tesseract.Version())
		return
	case "--help", "-h", "help":
		usage()
		return
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "extract":
		err = runExtract(ctx, cfg, os.Args[2:])
	case "compose":
		err = runCompose(ctx, cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// parseFlags adds the shared flags to fs, parses args and validates the
// resulting configuration.
func parseFlags(cfg *config.Config, fs *flag.FlagSet, args []string) error {
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Debug() {
		log.Printf("exam-builder v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}
	return nil
}

func runExtract(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	force := fs.Bool("force", false, "cut sheets again even if fragments are stored")
	if err := parseFlags(cfg, fs, args); err != nil {
		return err
	}

	sheets, err := sheetList(fs.Args(), cfg.Sheets)
	if err != nil {
		return err
	}

	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ex := newExtractor(cfg, s)
	if !*force {
		return ex.EnsureAll(ctx, sheets)
	}
	for _, n := range sheets {
		count, err := ex.Extract(ctx, n)
		if err != nil {
			return err
		}
		log.Printf("Sheet %02d: %d exercises", n, count)
	}
	return nil
}

func runCompose(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	cfg.RegisterExamFlags(fs)
	if err := parseFlags(cfg, fs, args); err != nil {
		return err
	}

	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	fonts, err := exam.LoadFonts(cfg.BoldFont, cfg.RegularFont)
	if err != nil {
		return err
	}
	style, err := styleFromConfig(cfg)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	c := exam.NewComposer(s, newExtractor(cfg, s), rand.New(rand.NewSource(seed)), fonts, exam.Pool{
		Sheets:            cfg.Sheets,
		ExercisesPerSheet: cfg.ExercisesPerSheet,
	})
	c.MinutesPerProblem = cfg.MinutesPerProblem
	c.Bands = exam.Bands{Title: cfg.TitleBand, Label: cfg.LabelBand, EmptyWidth: cfg.EmptyWidth}
	c.Style = style
	c.DPI = cfg.DPI
	if cfg.Debug() {
		c.Log = log.Default()
		log.Printf("Seed %d", seed)
		log.Printf("Ink %s on %s", imaging.HexColor(style.Ink), imaging.HexColor(style.Background))
	}

	e, err := c.Compose(ctx, cfg.Problems, cfg.Title)
	if err != nil {
		return err
	}
	path, err := e.Save(cfg.ExamDir, cfg.ExamFormat)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// styleFromConfig resolves the colours, font sizes and text offsets.
func styleFromConfig(cfg *config.Config) (exam.Style, error) {
	bg, err := imaging.ParseColor(cfg.Background)
	if err != nil {
		return exam.Style{}, fmt.Errorf("background: %w", err)
	}
	ink, err := imaging.ParseColor(cfg.Ink)
	if err != nil {
		return exam.Style{}, fmt.Errorf("ink: %w", err)
	}
	return exam.Style{
		Background:      bg,
		Ink:             ink,
		TitleSize:       cfg.TitleFontSize,
		InstructionSize: cfg.InstructionFontSize,
		LabelSize:       cfg.LabelFontSize,
		TitleTop:        cfg.TitleTop,
		Left:            cfg.TextLeft,
		InstructionTop:  cfg.InstructionTop,
		LineGap:         cfg.LineGap,
		LabelTop:        cfg.LabelTop,
	}, nil
}

func newExtractor(cfg *config.Config, s store.Store) *sheet.Extractor {
	ex := &sheet.Extractor{
		Source: source.NewSheets(source.Options{
			Dir:        cfg.SourceDir,
			Pattern:    cfg.SourcePattern,
			DPI:        cfg.DPI,
			PageStride: cfg.PageStride,
		}),
		Detector: &detection.Detector{
			Homework: detection.Marker{
				Phrase:    cfg.HomeworkPhrase,
				Prefix:    cfg.HomeworkPrefix,
				Offset:    detection.HomeworkMarker.Offset,
				Tolerance: cfg.HomeworkTolerance,
			},
			Tutorial: detection.Marker{
				Phrase:    cfg.TutorialPhrase,
				Prefix:    cfg.TutorialPrefix,
				Offset:    detection.TutorialMarker.Offset,
				Tolerance: cfg.TutorialTolerance,
			},
		},
		Cropper: &detection.Cropper{Margins: detection.Margins{
			Top:      cfg.CropTop,
			Bottom:   cfg.CropBottom,
			Trailing: cfg.CropTrailing,
		}},
		Store:    s,
		Expected: cfg.ExercisesPerSheet,
	}
	if cfg.BoxPattern != "" {
		ex.Boxes = ocr.BoxFiles(cfg.BoxPattern)
	} else {
		ex.OCR = tesseract.New(tesseract.Options{
			Language:       cfg.Language,
			TessdataPrefix: cfg.TessdataPrefix,
			Threshold:      uint8(cfg.OCRThreshold),
		})
	}
	if cfg.Debug() {
		ex.Log = log.Default()
	}
	return ex
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBolt:
		b, err := store.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { b.Close() }, nil
	case config.StorePostgres:
		p, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil
	default:
		return store.NewFileStore(cfg.FragmentDir), func() {}, nil
	}
}

// sheetList parses sheet numbers, defaulting to 1..count.
func sheetList(args []string, count int) ([]int, error) {
	if len(args) == 0 {
		sheets := make([]int, count)
		for i := range sheets {
			sheets[i] = i + 1
		}
		return sheets, nil
	}

	sheets := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid sheet number %q", a)
		}
		sheets = append(sheets, n)
	}
	return sheets, nil
}
