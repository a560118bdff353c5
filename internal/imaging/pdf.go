package imaging

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// SavePDF writes img as a single-page PDF to path, creating parent
// directories as needed. The page is sized so img prints at dpi; a
// non-positive dpi maps one pixel to one point.
func SavePDF(path string, img image.Image, dpi float64) error {
	if dpi <= 0 {
		dpi = 72
	}
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}

	b := img.Bounds()
	w := float64(b.Dx()) * 72 / dpi
	h := float64(b.Dy()) * 72 / dpi

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", opts, bytes.NewReader(data))
	pdf.ImageOptions("page", 0, 0, w, h, false, opts, 0, "")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
