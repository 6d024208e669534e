package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kiesman99/slidestitch/internal/pyramid"
	"github.com/kiesman99/slidestitch/internal/stitcher"
	"github.com/kiesman99/slidestitch/internal/tiledb"
	"github.com/kiesman99/slidestitch/pkg/slide"
)

// isContainer reports whether path names a tile container rather than a
// plain image.
func isContainer(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tiles", ".db":
		return true
	}
	return false
}

func logger() *log.Logger {
	if viper.GetBool("verbose") {
		return log.New(os.Stderr, "slidestitch: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// openSlide opens the configured input and binds it to a new slide
func openSlide() (*slide.Slide, error) {
	path := viper.GetString("input")
	if path == "" {
		return nil, fmt.Errorf("no input slide given (use --input)")
	}

	s := slide.New()
	opts := &stitcher.Options{Logger: logger()}

	if isContainer(path) {
		db, err := tiledb.Open(path)
		if err != nil {
			return nil, err
		}
		opts.Layers = db.Layers()
		opts.Overlaps = db.Overlaps()
		if err := stitcher.Attach(s, db, db, opts); err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return s, nil
	}

	d, err := pyramid.Open(path, &pyramid.Options{Description: filepath.Base(path)})
	if err != nil {
		return nil, err
	}
	opts.Layers = d.Layers()
	if err := stitcher.Attach(s, d, d, opts); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return s, nil
}
