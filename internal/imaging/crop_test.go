package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCropRows(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := CropRows(img, 0, 50)
	if err != nil {
		t.Fatalf("CropRows failed: %v", err)
	}

	if result.Bounds().Dx() != 100 || result.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 100x50", result.Bounds().Dx(), result.Bounds().Dy())
	}
	if result.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds should start at origin, got %v", result.Bounds().Min)
	}
}

func TestCropRows_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	// Bottom half: blue on the left, white on the right
	result, err := CropRows(img, 50, 100)
	if err != nil {
		t.Fatalf("CropRows failed: %v", err)
	}

	r, g, b, _ := result.At(10, 10).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("left pixel: got (%d,%d,%d), want blue", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = result.At(90, 10).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("right pixel: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestCropRows_OffsetBounds(t *testing.T) {
	base := createPatternImage(100, 100)
	// SubImage keeps absolute coordinates; rows must stay relative.
	sub := base.SubImage(image.Rect(0, 50, 100, 100))

	result, err := CropRows(sub, 0, 10)
	if err != nil {
		t.Fatalf("CropRows failed: %v", err)
	}

	r, g, b, _ := result.At(10, 0).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("first row of sub-image: got (%d,%d,%d), want blue", r>>8, g>>8, b>>8)
	}
}

func TestCropRows_Invalid(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name   string
		y0, y1 int
	}{
		{"y0 negative", -1, 50},
		{"y1 too large", 0, 101},
		{"empty band", 50, 50},
		{"inverted band", 60, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CropRows(img, tt.y0, tt.y1)
			if err == nil {
				t.Error("CropRows should fail for invalid rows")
			}
		})
	}
}
