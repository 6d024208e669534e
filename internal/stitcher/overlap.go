package stitcher

import (
	"github.com/kiesman99/slidestitch/pkg/tile"
)

// Overlap returns the configured overlap of layer, zero when none is set.
func (s *Stitcher) Overlap(layer int) tile.Overlap {
	if layer >= 0 && layer < len(s.overlaps) {
		return s.overlaps[layer]
	}
	return tile.Overlap{}
}

// MapToRaw converts a logical layer coordinate into the layer's raw,
// overlap-inflated tile grid.
func (s *Stitcher) MapToRaw(layer, x, y int) (int, int, error) {
	if !s.validLayer(layer) {
		return 0, 0, ErrInvalidLayer
	}
	dir, err := s.directory(layer)
	if err != nil {
		return 0, 0, err
	}
	rx, ry := mapToRaw(s.Overlap(layer), dir.TileWidth, dir.TileHeight, x, y)
	return rx, ry, nil
}

// mapToRaw requires ov.X < tw and ov.Y < th.
func mapToRaw(ov tile.Overlap, tw, th, x, y int) (int, int) {
	return x + (x/(tw-ov.X))*ov.X, y + (y/(th-ov.Y))*ov.Y
}
