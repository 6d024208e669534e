/*
Package tiledb implements a tiled decoder backed by a SQLite container.

A container holds one row per directory (resolution layer) with its raw image
size, tile size and overlap, one encoded PNG or JPEG blob per tile keyed by
the tile's raw origin, and a small name/value metadata table carrying the
image description.
*/
package tiledb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kiesman99/slidestitch/pkg/tile"
)

const descriptionKey = "description"

var schema = []string{
	"CREATE TABLE IF NOT EXISTS metadata (name TEXT PRIMARY KEY NOT NULL, value TEXT NOT NULL)",
	"CREATE TABLE IF NOT EXISTS directory (id INTEGER PRIMARY KEY NOT NULL, image_width INTEGER NOT NULL, image_height INTEGER NOT NULL, tile_width INTEGER NOT NULL, tile_height INTEGER NOT NULL, overlap_x INTEGER NOT NULL DEFAULT 0, overlap_y INTEGER NOT NULL DEFAULT 0)",
	"CREATE TABLE IF NOT EXISTS tile (directory_id INTEGER NOT NULL, x INTEGER NOT NULL, y INTEGER NOT NULL, data BLOB NOT NULL, PRIMARY KEY (directory_id, x, y), FOREIGN KEY(directory_id) REFERENCES directory(id))",
}

// ErrNoDirectory is returned for a directory the container does not hold
var ErrNoDirectory = errors.New("tiledb: no such directory")

type directory struct {
	id int
	tile.Directory
	overlap tile.Overlap
}

// DB is an open tile container. It implements tile.Source and is safe for
// concurrent use.
type DB struct {
	db   *sql.DB
	dirs map[int]directory
	// directory ids ordered from the largest image to the smallest
	order []int
}

func open(file string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Open opens an existing container
func Open(file string) (*DB, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("tiledb: %w", err)
	}

	db, err := open(file)
	if err != nil {
		return nil, fmt.Errorf("tiledb: %w", err)
	}

	t := &DB{
		db:   db,
		dirs: make(map[int]directory),
	}
	if err := t.loadDirectories(); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *DB) loadDirectories() error {
	rows, err := t.db.Query("SELECT id, image_width, image_height, tile_width, tile_height, overlap_x, overlap_y FROM directory ORDER BY image_width DESC, image_height DESC, id")
	if err != nil {
		return fmt.Errorf("tiledb: reading directories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d directory
		if err := rows.Scan(&d.id, &d.ImageWidth, &d.ImageHeight, &d.TileWidth, &d.TileHeight, &d.overlap.X, &d.overlap.Y); err != nil {
			return fmt.Errorf("tiledb: reading directories: %w", err)
		}
		t.dirs[d.id] = d
		t.order = append(t.order, d.id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("tiledb: reading directories: %w", err)
	}

	if len(t.order) == 0 {
		return errors.New("tiledb: container has no directories")
	}
	return nil
}

// Layers returns directory ids ordered from the largest layer to the smallest
func (t *DB) Layers() []int {
	return append([]int(nil), t.order...)
}

// Overlaps returns the overlap of each layer, in Layers order
func (t *DB) Overlaps() []tile.Overlap {
	overlaps := make([]tile.Overlap, len(t.order))
	for i, id := range t.order {
		overlaps[i] = t.dirs[id].overlap
	}
	return overlaps
}

func (t *DB) Directory(index int) (tile.Directory, error) {
	d, ok := t.dirs[index]
	if !ok {
		return tile.Directory{}, fmt.Errorf("%w: %d", ErrNoDirectory, index)
	}
	return d.Directory, nil
}

func (t *DB) Description() (string, error) {
	var value string
	switch err := t.db.QueryRow("SELECT value FROM metadata WHERE name = ?", descriptionKey).Scan(&value); err {
	case sql.ErrNoRows:
		return "", nil
	case nil:
		return value, nil
	default:
		return "", err
	}
}

func (t *DB) Close() error {
	return t.db.Close()
}

func (t *DB) NewTileReader(dir int) (tile.TileReader, error) {
	d, ok := t.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoDirectory, dir)
	}

	stmt, err := t.db.Prepare("SELECT data FROM tile WHERE directory_id = ? AND x = ? AND y = ?")
	if err != nil {
		return nil, fmt.Errorf("tiledb: %w", err)
	}

	return &reader{stmt: stmt, dir: d}, nil
}

type reader struct {
	stmt *sql.Stmt
	dir  directory
}

// ReadTile decodes the tile at raw origin (x, y). A tile missing from the
// container reads as fully transparent.
func (r *reader) ReadTile(dst []uint32, x, y int) error {
	tw, th := r.dir.TileWidth, r.dir.TileHeight
	if len(dst) < tw*th {
		return fmt.Errorf("tiledb: tile buffer holds %d pixels, need %d", len(dst), tw*th)
	}

	var data []byte
	switch err := r.stmt.QueryRow(r.dir.id, x, y).Scan(&data); err {
	case sql.ErrNoRows:
		clear(dst[:tw*th])
		return nil
	case nil:
	default:
		return fmt.Errorf("tiledb: tile %d,%d: %w", x, y, err)
	}

	img, err := tile.Decode(data)
	if err != nil {
		return fmt.Errorf("tiledb: tile %d,%d: %w", x, y, err)
	}

	tile.PackNative(dst, img, 0, 0, tw, th)
	return nil
}

func (r *reader) Close() error {
	return r.stmt.Close()
}
