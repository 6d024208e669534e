package cmd

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/kiesman99/slidestitch/internal/tiledb"
)

func writeTestImage(t *testing.T, dir string) (string, image.Image) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 90, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 90; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}

	path := filepath.Join(dir, "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path, img
}

func TestIsContainer(t *testing.T) {
	tests := map[string]bool{
		"scan.tiles": true,
		"scan.DB":    true,
		"scan.png":   false,
		"scan":       false,
	}
	for path, want := range tests {
		if got := isContainer(path); got != want {
			t.Errorf("isContainer(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestOpenSlide(t *testing.T) {
	dir := t.TempDir()
	imgPath, img := writeTestImage(t, dir)

	dbPath := filepath.Join(dir, "source.tiles")
	if err := tiledb.Build(dbPath, img, &tiledb.BuildOptions{TileSize: 32, Overlap: 4}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tests := []struct {
		path          string
		width, height int
	}{
		{imgPath, 90, 50},
		// four 32px tiles sharing 4px columns, two rows
		{dbPath, 116, 60},
	}

	for _, tt := range tests {
		t.Run(filepath.Ext(tt.path), func(t *testing.T) {
			viper.Set("input", tt.path)
			defer viper.Set("input", "")

			s, err := openSlide()
			if err != nil {
				t.Fatalf("openSlide failed: %v", err)
			}
			defer s.Close()

			w, h, err := s.Dimensions(0)
			if err != nil {
				t.Fatal(err)
			}
			if w != tt.width || h != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, w, h)
			}

			buf := make([]uint32, 1)
			if err := s.ReadRegion(buf, 10, 20, 0, 1, 1); err != nil {
				t.Fatal(err)
			}
			if want := uint32(0xFF000000 | 10<<16 | 20<<8 | 7); buf[0] != want {
				t.Errorf("Expected pixel %#08x, got %#08x", want, buf[0])
			}
		})
	}
}

func TestOpenSlide_NoInput(t *testing.T) {
	viper.Set("input", "")
	if _, err := openSlide(); err == nil {
		t.Error("Expected error without input")
	}
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writeTestImage(t, dir)

	viper.Set("input", imgPath)
	defer viper.Set("input", "")

	var out bytes.Buffer
	infoCmd.SetOut(&out)
	defer infoCmd.SetOut(nil)

	if err := runInfo(infoCmd, nil); err != nil {
		t.Fatalf("runInfo failed: %v", err)
	}

	for _, want := range []string{"Layers: 1", "0: 90x50 (downsample 1)", "Comment: source.png"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
		}
	}
}
