/*
Package stitcher assembles arbitrary windows of a pyramidal tile grid.

Each layer of a slide maps to one directory of a tile.Decoder. Tiles in a
directory may share Overlap pixels with their neighbours; a logical
coordinate c maps into the raw grid as

	c + (c / (tile - overlap)) * overlap

ReadRegion walks the raw tiles covering a window, decodes each with a
tile.TileReader opened for that call only, and places tile k of a row at
k*(tile - overlap) in the destination so adjacent tiles are un-overlapped.

A Stitcher holds no per-call state; it is safe for concurrent use when its
decoder and reader factory are.
*/
package stitcher
