package pyramid

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiesman99/slidestitch/internal/stitcher"
	"github.com/kiesman99/slidestitch/pkg/slide"
	"github.com/kiesman99/slidestitch/pkg/tile"
)

func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func TestNew_Layers(t *testing.T) {
	d := New(createPatternImage(600, 300), &Options{TileSize: 128})

	want := [][2]int{{600, 300}, {300, 150}, {150, 75}, {75, 37}}
	if len(d.Layers()) != len(want) {
		t.Fatalf("layer count: got %d, want %d", len(d.Layers()), len(want))
	}

	for i, w := range want {
		dir, err := d.Directory(i)
		if err != nil {
			t.Fatalf("Directory(%d) failed: %v", i, err)
		}
		if dir.ImageWidth != w[0] || dir.ImageHeight != w[1] {
			t.Errorf("layer %d: got %dx%d, want %dx%d", i, dir.ImageWidth, dir.ImageHeight, w[0], w[1])
		}
		if dir.TileWidth != 128 || dir.TileHeight != 128 {
			t.Errorf("layer %d: tile %dx%d, want 128x128", i, dir.TileWidth, dir.TileHeight)
		}
	}
}

func TestNew_MaxLayers(t *testing.T) {
	d := New(createPatternImage(600, 300), &Options{TileSize: 128, MaxLayers: 2})
	if got := len(d.Layers()); got != 2 {
		t.Errorf("layer count: got %d, want 2", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	d := New(createPatternImage(10, 10), nil)
	dir, err := d.Directory(0)
	if err != nil {
		t.Fatalf("Directory failed: %v", err)
	}
	if dir.TileWidth != DefaultTileSize {
		t.Errorf("tile size: got %d, want %d", dir.TileWidth, DefaultTileSize)
	}
	if len(d.Layers()) != 1 {
		t.Errorf("layer count: got %d, want 1", len(d.Layers()))
	}
}

func TestReadTile_EdgeTile(t *testing.T) {
	d := New(createPatternImage(20, 10), &Options{TileSize: 16})

	r, err := d.NewTileReader(0)
	if err != nil {
		t.Fatalf("NewTileReader failed: %v", err)
	}
	defer r.Close()

	buf := make([]uint32, 16*16)
	if err := r.ReadTile(buf, 16, 0); err != nil {
		t.Fatalf("ReadTile failed: %v", err)
	}

	if got, want := buf[0], tile.NativeFromColor(color.NRGBA{R: 16, G: 0, B: 16, A: 255}); got != want {
		t.Errorf("first pixel: got %#08x, want %#08x", got, want)
	}
	if buf[4] != 0 {
		t.Errorf("pixel beyond the image: got %#08x, want 0", buf[4])
	}
	if err := r.ReadTile(make([]uint32, 4), 0, 0); err == nil {
		t.Error("ReadTile should fail for a short buffer")
	}
}

func TestSlide_ReadRegion(t *testing.T) {
	src := createPatternImage(300, 200)
	d := New(src, &Options{TileSize: 64, Description: "pattern"})

	s := slide.New()
	if err := stitcher.Attach(s, d, d, &stitcher.Options{Layers: d.Layers()}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer s.Close()

	w, h, err := s.Dimensions(0)
	if err != nil {
		t.Fatalf("Dimensions failed: %v", err)
	}
	if w != 300 || h != 200 {
		t.Fatalf("dimensions: got %dx%d, want 300x200", w, h)
	}

	dst := make([]uint32, w*h)
	if err := s.ReadRegion(dst, 0, 0, 0, w, h); err != nil {
		t.Fatalf("ReadRegion failed: %v", err)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if got, want := tile.ARGB(dst[y*w+x]), src.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel %d,%d: got %v, want %v", x, y, got, want)
			}
		}
	}

	comment, err := s.Comment()
	if err != nil || comment != "pattern" {
		t.Errorf("Comment: got %q, %v", comment, err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, createPatternImage(40, 30)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	d, err := Open(path, &Options{TileSize: 16})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	dir, _ := d.Directory(0)
	if dir.ImageWidth != 40 || dir.ImageHeight != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", dir.ImageWidth, dir.ImageHeight)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.png"), nil); err == nil {
		t.Error("Open should fail for a missing file")
	}
}

func TestClose(t *testing.T) {
	d := New(createPatternImage(10, 10), nil)
	d.Close()
	if _, err := d.Directory(0); err == nil {
		t.Error("Directory should fail after Close")
	}
}
