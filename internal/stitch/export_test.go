package stitch

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/kiesman99/slidestitch/internal/pyramid"
	"github.com/kiesman99/slidestitch/internal/stitcher"
	"github.com/kiesman99/slidestitch/pkg/slide"
)

func openTestSlide(t *testing.T) (*slide.Slide, *image.NRGBA) {
	t.Helper()

	src := image.NewNRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}

	d := pyramid.New(src, &pyramid.Options{TileSize: 32})
	s := slide.New()
	if err := stitcher.Attach(s, d, d, &stitcher.Options{Layers: d.Layers()}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, src
}

func TestExport_PNGToWriter(t *testing.T) {
	s, src := openTestSlide(t)

	var stdout, stderr bytes.Buffer
	e := NewExporter(s, &Options{X: 10, Y: 20, Width: 30, Height: 15})
	e.SetOutput(&stdout, &stderr)

	if err := e.Export(); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 15 {
		t.Errorf("dimensions: got %v, want 30x15", img.Bounds())
	}

	r, g, b, _ := img.At(0, 0).RGBA()
	wr, wg, wb, _ := src.At(10, 20).RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("first pixel: got %d,%d,%d, want %d,%d,%d", r, g, b, wr, wg, wb)
	}

	if !strings.Contains(stderr.String(), "==Raster Size: 30x15") {
		t.Errorf("progress output: got %q", stderr.String())
	}
}

func TestExport_TIFFToFile(t *testing.T) {
	s, _ := openTestSlide(t)

	out := filepath.Join(t.TempDir(), "region.tif")
	e := NewExporter(s, &Options{Output: out, Format: FormatTIFF, Layer: 1})
	e.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	if err := e.Export(); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("output is not a TIFF: %v", err)
	}
	if img.Bounds().Dx() != 60 || img.Bounds().Dy() != 40 {
		t.Errorf("dimensions: got %v, want the full 60x40 layer", img.Bounds())
	}
}

func TestRegion_Defaults(t *testing.T) {
	s, _ := openTestSlide(t)

	w, h, err := NewExporter(s, &Options{X: 20, Y: 40}).Region()
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if w != 100 || h != 40 {
		t.Errorf("region: got %dx%d, want 100x40", w, h)
	}

	w, h, err = NewExporter(s, &Options{X: 20, Y: 40, Layer: 1}).Region()
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if w != 50 || h != 20 {
		t.Errorf("layer 1 region: got %dx%d, want 50x20", w, h)
	}
}

func TestRegion_Errors(t *testing.T) {
	s, _ := openTestSlide(t)

	if _, _, err := NewExporter(s, &Options{X: 500}).Region(); err == nil {
		t.Error("Region should fail for an origin past the layer")
	}
	if _, _, err := NewExporter(s, &Options{Width: 20000, Height: 20000}).Region(); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Region: got %v, want ErrTooLarge", err)
	}
	if _, _, err := NewExporter(s, &Options{Layer: 9}).Region(); !errors.Is(err, stitcher.ErrInvalidLayer) {
		t.Errorf("Region: got %v, want ErrInvalidLayer", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"tiff", FormatTIFF, false},
		{"tif", FormatTIFF, false},
		{"geotiff", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q): got %d, %v", tt.name, got, err)
		}
	}
}
