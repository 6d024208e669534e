package tiledb

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/disintegration/imaging"

	"github.com/kiesman99/slidestitch/internal/pyramid"
	"github.com/kiesman99/slidestitch/pkg/tile"
)

// BuildOptions controls how a container is written
type BuildOptions struct {
	TileSize  int
	Overlap   int
	MaxLayers int
	// Format is tile.FormatPNG or tile.FormatJPEG
	Format      int
	Quality     int
	Description string
	Logger      *log.Logger
}

// Build writes img into a new container at file. Every layer uses the same
// tile size and overlap; with a non-zero overlap tile k of a row covers the
// logical pixels [k*(size-overlap), k*(size-overlap)+size) and the raw layer
// size is a whole number of tiles.
func Build(file string, img image.Image, opts *BuildOptions) error {
	var o BuildOptions
	if opts != nil {
		o = *opts
	}
	if o.TileSize <= 0 {
		o.TileSize = pyramid.DefaultTileSize
	}
	if o.Overlap < 0 || o.Overlap >= o.TileSize {
		return fmt.Errorf("tiledb: overlap %d must be in [0, %d)", o.Overlap, o.TileSize)
	}
	if o.Quality <= 0 {
		o.Quality = 90
	}
	logger := o.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if _, err := os.Stat(file); err == nil {
		return fmt.Errorf("tiledb: %s already exists", file)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("tiledb: %w", err)
	}

	db, err := open(file)
	if err != nil {
		return fmt.Errorf("tiledb: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", descriptionKey, o.Description); err != nil {
		return err
	}

	insertDir, err := tx.Prepare("INSERT INTO directory (id, image_width, image_height, tile_width, tile_height, overlap_x, overlap_y) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer insertDir.Close()

	insertTile, err := tx.Prepare("INSERT INTO tile (directory_id, x, y, data) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer insertTile.Close()

	size, overlap := o.TileSize, o.Overlap
	step := size - overlap

	for id, level := range pyramid.Levels(img, size, o.MaxLayers) {
		b := level.Bounds()
		nx, ny := tileCount(b.Dx(), size, overlap), tileCount(b.Dy(), size, overlap)

		rawW, rawH := b.Dx(), b.Dy()
		if overlap > 0 {
			rawW, rawH = nx*size, ny*size
		}

		if _, err := insertDir.Exec(id, rawW, rawH, size, size, overlap, overlap); err != nil {
			return err
		}

		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				r := image.Rect(i*step, j*step, i*step+size, j*step+size)
				block := imaging.Paste(imaging.New(size, size, color.NRGBA{}), imaging.Crop(level, r), image.Pt(0, 0))

				data, err := tile.Encode(block, o.Format, o.Quality)
				if err != nil {
					return fmt.Errorf("tiledb: encoding tile %d,%d of layer %d: %w", i, j, id, err)
				}
				if _, err := insertTile.Exec(id, i*size, j*size, data); err != nil {
					return err
				}
			}
		}

		logger.Printf("layer %d: %dx%d, raw %dx%d, %dx%d tiles", id, b.Dx(), b.Dy(), rawW, rawH, nx, ny)
	}

	return tx.Commit()
}

// tileCount returns how many tiles of size, advancing by size-overlap, are
// needed to cover n pixels.
func tileCount(n, size, overlap int) int {
	if n <= size {
		return 1
	}
	step := size - overlap
	return (n - overlap + step - 1) / step
}
