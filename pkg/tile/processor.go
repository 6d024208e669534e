package tile

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/tiff"
)

// Tile blob formats
const (
	FormatPNG = iota
	FormatJPEG
)

var (
	pngMagic    = []byte{0x89, 0x50, 0x4E, 0x47}
	jpegMagic   = []byte{0xFF, 0xD8}
	tiffMagicLE = []byte{0x49, 0x49, 0x2A, 0x00}
	tiffMagicBE = []byte{0x4D, 0x4D, 0x00, 0x2A}
)

// Decode detects the blob format and decodes it
func Decode(data []byte) (image.Image, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return png.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, jpegMagic):
		return jpeg.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, tiffMagicLE), bytes.HasPrefix(data, tiffMagicBE):
		return tiff.Decode(bytes.NewReader(data))
	}

	return nil, fmt.Errorf("unrecognized image format")
}

// Encode writes img as a PNG or JPEG blob
func Encode(img image.Image, format, quality int) ([]byte, error) {
	var output bytes.Buffer

	switch format {
	case FormatPNG:
		if err := png.Encode(&output, img); err != nil {
			return nil, err
		}
	case FormatJPEG:
		if err := jpeg.Encode(&output, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown tile format: %d", format)
	}

	return output.Bytes(), nil
}

// PackNative packs img into dst as 0xAABBGGRR pixels, reading a w x h block
// whose top-left corner is (x, y) in img's coordinate space. Pixels outside
// img's bounds are written as zero.
func PackNative(dst []uint32, img image.Image, x, y, w, h int) {
	bounds := img.Bounds()

	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			p := image.Pt(bounds.Min.X+x+i, bounds.Min.Y+y+j)
			if !p.In(bounds) {
				dst[j*w+i] = 0
				continue
			}
			dst[j*w+i] = NativeFromColor(img.At(p.X, p.Y))
		}
	}
}

// NativeFromColor packs c as 0xAABBGGRR
func NativeFromColor(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return uint32(n.A)<<24 | uint32(n.B)<<16 | uint32(n.G)<<8 | uint32(n.R)
}

// ARGB unpacks a 0xAARRGGBB pixel
func ARGB(p uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(p >> 16),
		G: uint8(p >> 8),
		B: uint8(p),
		A: uint8(p >> 24),
	}
}

// ToNRGBA converts a w x h buffer of 0xAARRGGBB pixels to an image
func ToNRGBA(buf []uint32, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := buf[y*w+x]
			idx := img.PixOffset(x, y)
			img.Pix[idx] = uint8(p >> 16)  // R
			img.Pix[idx+1] = uint8(p >> 8) // G
			img.Pix[idx+2] = uint8(p)      // B
			img.Pix[idx+3] = uint8(p >> 24)
		}
	}

	return img
}
