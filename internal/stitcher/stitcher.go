package stitcher

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/kiesman99/slidestitch/pkg/slide"
	"github.com/kiesman99/slidestitch/pkg/tile"
)

var (
	ErrInvalidLayer    = errors.New("stitcher: layer out of range")
	ErrInvalidRegion   = errors.New("stitcher: negative region origin or size")
	ErrBufferTooSmall  = errors.New("stitcher: destination buffer too small")
	ErrOverlapTooLarge = errors.New("stitcher: overlap must be smaller than the tile size")
	ErrNoLayers        = errors.New("stitcher: no layers")
)

// Options contains the per-layer tables bound into a Stitcher
type Options struct {
	// Overlaps is indexed by layer; missing entries mean no overlap.
	Overlaps []tile.Overlap

	// Layers maps each layer index to a decoder directory index.
	Layers []int

	Logger *log.Logger
}

// Stitcher assembles arbitrary regions of a layered tile grid. It implements
// slide.Ops.
type Stitcher struct {
	decoder  tile.Decoder
	readers  tile.ReaderFactory
	overlaps []tile.Overlap
	layers   []int
	logger   *log.Logger
}

// New binds a decoder, its tile readers and the layer tables. Every
// configured overlap is checked against its layer's tile size.
func New(dec tile.Decoder, readers tile.ReaderFactory, opts *Options) (*Stitcher, error) {
	if len(opts.Layers) == 0 {
		return nil, ErrNoLayers
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Stitcher{
		decoder:  dec,
		readers:  readers,
		overlaps: opts.Overlaps,
		layers:   opts.Layers,
		logger:   logger,
	}

	for layer := range s.layers {
		ov := s.Overlap(layer)
		if ov.X == 0 && ov.Y == 0 {
			continue
		}
		dir, err := s.directory(layer)
		if err != nil {
			return nil, err
		}
		if ov.X < 0 || ov.Y < 0 || ov.X >= dir.TileWidth || ov.Y >= dir.TileHeight {
			return nil, fmt.Errorf("%w: layer %d overlap %dx%d, tile %dx%d",
				ErrOverlapTooLarge, layer, ov.X, ov.Y, dir.TileWidth, dir.TileHeight)
		}
	}

	return s, nil
}

// Attach creates a Stitcher and binds it to s. When s is nil the decoder is
// validated and closed straight away. Attach owns dec: it is closed on error.
// Attaching to an already bound slide panics.
func Attach(s *slide.Slide, dec tile.Decoder, readers tile.ReaderFactory, opts *Options) error {
	st, err := New(dec, readers, opts)
	if err != nil {
		dec.Close()
		return err
	}

	if s == nil {
		return st.Close()
	}

	s.Bind(st, len(st.layers))
	return nil
}

// LayerCount returns the number of layers.
func (s *Stitcher) LayerCount() int {
	return len(s.layers)
}

func (s *Stitcher) validLayer(layer int) bool {
	return layer >= 0 && layer < len(s.layers)
}

func (s *Stitcher) directory(layer int) (tile.Directory, error) {
	dir, err := s.decoder.Directory(s.layers[layer])
	if err != nil {
		return tile.Directory{}, fmt.Errorf("stitcher: layer %d: %w", layer, err)
	}
	if dir.TileWidth <= 0 || dir.TileHeight <= 0 {
		return tile.Directory{}, fmt.Errorf("stitcher: layer %d: invalid tile size %dx%d", layer, dir.TileWidth, dir.TileHeight)
	}
	return dir, nil
}

// ReadRegion fills dst with the w x h window whose top-left corner is (x, y)
// in layer-0 coordinates. Pixels falling outside the layer's image are left
// as they were.
func (s *Stitcher) ReadRegion(dst []uint32, x, y, layer, w, h int) (err error) {
	if !s.validLayer(layer) {
		return ErrInvalidLayer
	}
	if x < 0 || y < 0 || w < 0 || h < 0 {
		return ErrInvalidRegion
	}
	if len(dst) < w*h {
		return fmt.Errorf("%w: have %d pixels, need %d", ErrBufferTooSmall, len(dst), w*h)
	}
	if w == 0 || h == 0 {
		return nil
	}

	downsample, err := slide.Downsample(s, layer)
	if err != nil {
		return err
	}
	dsX := int(float64(x) / downsample)
	dsY := int(float64(y) / downsample)

	dir, err := s.directory(layer)
	if err != nil {
		return err
	}
	tw, th := dir.TileWidth, dir.TileHeight
	ov := s.Overlap(layer)

	// Range of raw tile-grid pixels to cover
	startX, startY := mapToRaw(ov, tw, th, dsX, dsY)
	endX, endY := mapToRaw(ov, tw, th, dsX+w, dsY+h)

	if endX >= dir.ImageWidth {
		endX = dir.ImageWidth - 1
	}
	if endY >= dir.ImageHeight {
		endY = dir.ImageHeight - 1
	}
	if startX > endX || startY > endY {
		return nil
	}

	reader, err := s.readers.NewTileReader(s.layers[layer])
	if err != nil {
		return fmt.Errorf("stitcher: opening tile reader: %w", err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("stitcher: closing tile reader: %w", cerr)
		}
	}()

	buf := make([]uint32, tw*th)
	lastX := (endX/tw + 1) * tw
	lastY := (endY/th + 1) * th
	decoded := 0

	for srcY, dstY := startY, 0; srcY < lastY; srcY, dstY = srcY+th, dstY+th-ov.Y {
		for srcX, dstX := startX, 0; srcX < lastX; srcX, dstX = srcX+tw, dstX+tw-ov.X {
			roundX := (srcX / tw) * tw
			roundY := (srcY / th) * th
			offX := srcX - roundX
			offY := srcY - roundY

			if err := reader.ReadTile(buf, roundX, roundY); err != nil {
				return fmt.Errorf("stitcher: reading tile at %d,%d: %w", roundX, roundY, err)
			}

			copyRGBATile(buf, tw,
				min(tw, dir.ImageWidth-roundX), min(th, dir.ImageHeight-roundY),
				dst, dstX-offX, dstY-offY, w, h)
			decoded++
		}
	}

	s.logger.Printf("layer %d: region %dx%d at %d,%d: raw %d,%d to %d,%d, %d tiles decoded",
		layer, w, h, x, y, startX, startY, endX, endY, decoded)

	return nil
}

// Dimensions returns the logical, overlap-corrected size of layer. Overlap
// math is applied only on an axis with non-zero overlap and assumes the
// image is divided exactly by its tiles; other axes report the raw size.
func (s *Stitcher) Dimensions(layer int) (int, int, error) {
	if !s.validLayer(layer) {
		return 0, 0, ErrInvalidLayer
	}

	dir, err := s.directory(layer)
	if err != nil {
		return 0, 0, err
	}

	tx, ty := dir.TileCount()
	ov := s.Overlap(layer)

	w := dir.ImageWidth
	if ov.X != 0 {
		w = tx*dir.TileWidth - ov.X*(tx-1)
	}

	h := dir.ImageHeight
	if ov.Y != 0 {
		h = ty*dir.TileHeight - ov.Y*(ty-1)
	}

	return w, h, nil
}

// Comment returns the decoder's image description.
func (s *Stitcher) Comment() (string, error) {
	return s.decoder.Description()
}

// Close releases the decoder and the layer tables.
func (s *Stitcher) Close() error {
	err := s.decoder.Close()
	s.overlaps = nil
	s.layers = nil
	return err
}
