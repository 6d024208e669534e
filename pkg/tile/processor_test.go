package tile

import (
	"image"
	"image/color"
	"testing"
)

func TestNativeFromColor(t *testing.T) {
	got := NativeFromColor(color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})
	if got != 0xff332211 {
		t.Errorf("NativeFromColor: got %#08x, want %#08x", got, uint32(0xff332211))
	}
}

func TestPackNative_OutsideBoundsIsZero(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	dst := make([]uint32, 9)
	for i := range dst {
		dst[i] = 0xdeadbeef
	}
	PackNative(dst, img, 0, 0, 3, 3)

	want := []uint32{
		0xffffffff, 0xffffffff, 0,
		0xffffffff, 0xffffffff, 0,
		0, 0, 0,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("pixel %d: got %#08x, want %#08x", i, dst[i], want[i])
		}
	}
}

func TestEncodeDecode_PNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := Encode(img, FormatPNG, 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.Bounds().Dx() != 4 || decoded.Bounds().Dy() != 3 {
		t.Errorf("dimensions: got %v, want 4x3", decoded.Bounds())
	}
	if got := NativeFromColor(decoded.At(1, 2)); got != 0xff1e140a {
		t.Errorf("pixel: got %#08x", got)
	}
}

func TestDecode_Unrecognized(t *testing.T) {
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Error("Decode should fail for unknown data")
	}
}

func TestToNRGBA(t *testing.T) {
	img := ToNRGBA([]uint32{0x80112233}, 1, 1)
	want := color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x80}
	if got := img.NRGBAAt(0, 0); got != want {
		t.Errorf("ToNRGBA: got %v, want %v", got, want)
	}
	if got := ARGB(0x80112233); got != want {
		t.Errorf("ARGB: got %v, want %v", got, want)
	}
}

func TestDirectory_TileCount(t *testing.T) {
	tx, ty := Directory{ImageWidth: 1000, ImageHeight: 512, TileWidth: 256, TileHeight: 256}.TileCount()
	if tx != 3 || ty != 2 {
		t.Errorf("TileCount: got %dx%d, want 3x2", tx, ty)
	}
}
