package stitch

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/tiff"

	"github.com/kiesman99/slidestitch/pkg/slide"
	"github.com/kiesman99/slidestitch/pkg/tile"
)

// Output format constants
const (
	FormatPNG = iota
	FormatTIFF
)

// maxPixels bounds the size of an exported region
const maxPixels = 10000 * 10000

var (
	ErrTooLarge    = errors.New("requested region too large")
	ErrEmptyRegion = errors.New("requested region is empty")
)

// Options describes one region export
type Options struct {
	Output string
	Format int

	// X and Y are in layer-0 pixels; Width and Height in layer pixels.
	// A zero Width or Height extends the region to the layer's edge.
	X, Y          int
	Layer         int
	Width, Height int
}

// Exporter reads regions from a slide and writes them out as images
type Exporter struct {
	slide   *slide.Slide
	options *Options
	stdout  io.Writer
	stderr  io.Writer
}

// NewExporter creates a new exporter instance
func NewExporter(s *slide.Slide, opts *Options) *Exporter {
	return &Exporter{
		slide:   s,
		options: opts,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// SetOutput redirects output written to standard output and progress
// messages.
func (e *Exporter) SetOutput(stdout, stderr io.Writer) {
	e.stdout = stdout
	e.stderr = stderr
}

// Region resolves the region size, filling zero sizes from the layer's
// dimensions.
func (e *Exporter) Region() (int, int, error) {
	o := e.options

	lw, lh, err := e.slide.Dimensions(o.Layer)
	if err != nil {
		return 0, 0, err
	}
	ds, err := e.slide.Downsample(o.Layer)
	if err != nil {
		return 0, 0, err
	}

	w, h := o.Width, o.Height
	if w == 0 {
		w = lw - int(float64(o.X)/ds)
	}
	if h == 0 {
		h = lh - int(float64(o.Y)/ds)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d at %d,%d", ErrEmptyRegion, w, h, o.X, o.Y)
	}
	if int64(w)*int64(h) > maxPixels {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return w, h, nil
}

// Read returns the requested region as an image
func (e *Exporter) Read() (*image.NRGBA, error) {
	o := e.options

	w, h, err := e.Region()
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(e.stderr, "==Layer: %d of %d\n", o.Layer, e.slide.LayerCount())
	fmt.Fprintf(e.stderr, "==Origin (layer 0): %d,%d\n", o.X, o.Y)
	fmt.Fprintf(e.stderr, "==Raster Size: %dx%d\n", w, h)

	buf := make([]uint32, w*h)
	if err := e.slide.ReadRegion(buf, o.X, o.Y, o.Layer, w, h); err != nil {
		return nil, fmt.Errorf("failed to read region: %w", err)
	}

	return tile.ToNRGBA(buf, w, h), nil
}

// Export reads the region and writes it to the configured output
func (e *Exporter) Export() error {
	o := e.options

	if o.Output == "" {
		if f, ok := e.stdout.(*os.File); ok {
			if stat, _ := f.Stat(); stat != nil && (stat.Mode()&os.ModeCharDevice) != 0 {
				return fmt.Errorf("didn't specify output file and standard output is a terminal")
			}
		}
	}

	img, err := e.Read()
	if err != nil {
		return err
	}

	var output io.Writer
	if o.Output == "" {
		output = e.stdout
		fmt.Fprintf(e.stderr, "Output: stdout\n")
	} else {
		fmt.Fprintf(e.stderr, "Output: %s\n", o.Output)
		file, err := os.Create(o.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		output = file
	}

	if err := Encode(output, img, o.Format); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// Encode writes img in the given output format
func Encode(w io.Writer, img image.Image, format int) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("unknown format: %d", format)
	}
}

// ParseFormat maps a format name to its constant
func ParseFormat(name string) (int, error) {
	switch name {
	case "png":
		return FormatPNG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("unknown format: %s", name)
	}
}
