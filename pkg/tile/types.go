package tile

// Directory describes one image directory (resolution layer) of a tiled
// decoder. All sizes are in raw pixels of that directory's tile grid.
type Directory struct {
	ImageWidth  int
	ImageHeight int
	TileWidth   int
	TileHeight  int
}

// TileCount returns the number of whole tiles along each axis.
func (d Directory) TileCount() (int, int) {
	if d.TileWidth <= 0 || d.TileHeight <= 0 {
		return 0, 0
	}
	return d.ImageWidth / d.TileWidth, d.ImageHeight / d.TileHeight
}

// Overlap is the number of raw pixels adjacent tiles share on each axis.
type Overlap struct {
	X, Y int
}

// Decoder is a tiled image decoder with one or more directories.
//
// The directory index is an explicit argument on every call, so a Decoder
// keeps no current-directory cursor between calls.
type Decoder interface {
	Directory(index int) (Directory, error)
	Description() (string, error)
	Close() error
}

// TileReader decodes tiles of a single directory. Each ReadTile call fills
// dst with exactly TileWidth*TileHeight pixels packed as 0xAABBGGRR, top-left
// oriented, for the tile whose raw origin is (x, y).
type TileReader interface {
	ReadTile(dst []uint32, x, y int) error
	Close() error
}

// ReaderFactory opens tile readers. A reader is scoped to one region read.
type ReaderFactory interface {
	NewTileReader(dir int) (TileReader, error)
}

// Source is a Decoder that also provides its own tile readers.
type Source interface {
	Decoder
	ReaderFactory
}
