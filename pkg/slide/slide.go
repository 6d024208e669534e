/*
Package slide implements the owning handle for a pyramidal, tile-based image.

A Slide is bound once to a set of operations provided by a backend (see
internal/stitcher) together with its layer count. Layers are indexed from 0,
the full resolution, to LayerCount()-1.
*/
package slide

import (
	"errors"
)

// ErrNotBound is returned by a Slide with no operations attached.
var ErrNotBound = errors.New("slide: no operations bound")

// Ops is the pluggable operation set of a Slide.
type Ops interface {
	// ReadRegion fills dst, a w*h buffer of 0xAARRGGBB pixels, from the
	// window whose top-left corner is (x, y) in layer-0 coordinates.
	ReadRegion(dst []uint32, x, y, layer, w, h int) error
	Dimensions(layer int) (int, int, error)
	Comment() (string, error)
	Close() error
}

// Slide is the handle for an opened image.
//
// A Slide is safe for concurrent use when its Ops are.
type Slide struct {
	ops        Ops
	layerCount int
}

// New returns an unbound Slide.
func New() *Slide {
	return &Slide{}
}

// Bind attaches ops to s. Binding a Slide twice is a programming error and
// panics.
func (s *Slide) Bind(ops Ops, layerCount int) {
	if s.ops != nil {
		panic("slide: operations already bound")
	}
	s.ops = ops
	s.layerCount = layerCount
}

// Bound reports whether operations have been attached.
func (s *Slide) Bound() bool {
	return s.ops != nil
}

// LayerCount returns the number of resolution layers.
func (s *Slide) LayerCount() int {
	return s.layerCount
}

// ReadRegion reads a w x h window at layer into dst.
func (s *Slide) ReadRegion(dst []uint32, x, y, layer, w, h int) error {
	if s.ops == nil {
		return ErrNotBound
	}
	return s.ops.ReadRegion(dst, x, y, layer, w, h)
}

// Dimensions returns the logical width and height of layer.
func (s *Slide) Dimensions(layer int) (int, int, error) {
	if s.ops == nil {
		return 0, 0, ErrNotBound
	}
	return s.ops.Dimensions(layer)
}

// Downsample returns how many layer-0 pixels one pixel of layer spans
// horizontally.
func (s *Slide) Downsample(layer int) (float64, error) {
	return Downsample(s, layer)
}

// Comment returns the image description.
func (s *Slide) Comment() (string, error) {
	if s.ops == nil {
		return "", ErrNotBound
	}
	return s.ops.Comment()
}

// Close releases the operations and everything they own. It must be called
// exactly once per bound Slide.
func (s *Slide) Close() error {
	if s.ops == nil {
		return ErrNotBound
	}
	err := s.ops.Close()
	s.ops = nil
	s.layerCount = 0
	return err
}

// Dimensioner is anything that reports per-layer dimensions.
type Dimensioner interface {
	Dimensions(layer int) (int, int, error)
}

// Downsample computes the ratio of layer 0's width to layer's width.
func Downsample(d Dimensioner, layer int) (float64, error) {
	w0, _, err := d.Dimensions(0)
	if err != nil {
		return 0, err
	}
	w, _, err := d.Dimensions(layer)
	if err != nil {
		return 0, err
	}
	if w == 0 {
		return 0, errors.New("slide: layer has zero width")
	}
	return float64(w0) / float64(w), nil
}
