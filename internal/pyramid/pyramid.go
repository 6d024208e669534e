/*
Package pyramid implements an in-memory tiled decoder built from a single
image.

Layer 0 is the source image; each further layer halves the previous one
until it fits in a single tile or the requested layer count is reached.
Tiles have no overlap.
*/
package pyramid

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/kiesman99/slidestitch/pkg/tile"
)

const DefaultTileSize = 256

var errClosed = errors.New("pyramid: decoder closed")

// Options controls how the pyramid is built
type Options struct {
	TileSize int
	// MaxLayers caps the layer count; 0 builds down to a single tile.
	MaxLayers   int
	Description string
}

// Decoder serves tiles from a stack of progressively halved images. It
// implements tile.Source and is safe for concurrent use.
type Decoder struct {
	layers      []*image.NRGBA
	tileSize    int
	description string
}

// New builds a pyramid from img
func New(img image.Image, opts *Options) *Decoder {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.TileSize <= 0 {
		o.TileSize = DefaultTileSize
	}

	return &Decoder{
		layers:      Levels(img, o.TileSize, o.MaxLayers),
		tileSize:    o.TileSize,
		description: o.Description,
	}
}

// Levels returns img followed by successive halvings of it, stopping once a
// level fits in one tileSize square or maxLayers levels exist.
func Levels(img image.Image, tileSize, maxLayers int) []*image.NRGBA {
	levels := []*image.NRGBA{imaging.Clone(img)}

	for maxLayers <= 0 || len(levels) < maxLayers {
		prev := levels[len(levels)-1]
		b := prev.Bounds()
		if b.Dx() <= tileSize && b.Dy() <= tileSize {
			break
		}
		levels = append(levels, imaging.Resize(prev, max(1, b.Dx()/2), max(1, b.Dy()/2), imaging.Box))
	}

	return levels
}

// Open decodes the image at path and builds a pyramid from it
func Open(path string, opts *Options) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return New(img, opts), nil
}

// Layers returns the directory index of every layer, largest first
func (d *Decoder) Layers() []int {
	layers := make([]int, len(d.layers))
	for i := range layers {
		layers[i] = i
	}
	return layers
}

func (d *Decoder) layer(index int) (*image.NRGBA, error) {
	if d.layers == nil {
		return nil, errClosed
	}
	if index < 0 || index >= len(d.layers) {
		return nil, fmt.Errorf("pyramid: no directory %d", index)
	}
	return d.layers[index], nil
}

func (d *Decoder) Directory(index int) (tile.Directory, error) {
	img, err := d.layer(index)
	if err != nil {
		return tile.Directory{}, err
	}
	return tile.Directory{
		ImageWidth:  img.Bounds().Dx(),
		ImageHeight: img.Bounds().Dy(),
		TileWidth:   d.tileSize,
		TileHeight:  d.tileSize,
	}, nil
}

func (d *Decoder) Description() (string, error) {
	return d.description, nil
}

func (d *Decoder) Close() error {
	d.layers = nil
	return nil
}

func (d *Decoder) NewTileReader(dir int) (tile.TileReader, error) {
	img, err := d.layer(dir)
	if err != nil {
		return nil, err
	}
	return &reader{img: img, size: d.tileSize}, nil
}

type reader struct {
	img  *image.NRGBA
	size int
}

func (r *reader) ReadTile(dst []uint32, x, y int) error {
	if len(dst) < r.size*r.size {
		return fmt.Errorf("pyramid: tile buffer holds %d pixels, need %d", len(dst), r.size*r.size)
	}
	tile.PackNative(dst, r.img, x, y, r.size, r.size)
	return nil
}

func (r *reader) Close() error {
	r.img = nil
	return nil
}
