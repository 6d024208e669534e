package cmd

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/slidestitch/internal/pyramid"
	"github.com/kiesman99/slidestitch/internal/tiledb"
	"github.com/kiesman99/slidestitch/pkg/tile"
)

var buildCmd = &cobra.Command{
	Use:   "build <image>",
	Short: "Build a tile container from an image",
	Long: `Cut an image into a pyramid of tiles and store it in a .tiles container.

With a non-zero overlap every tile repeats the last pixels of its left and
upper neighbours, the way scanners write overlapping fields of view.

Examples:
  slidestitch build scan.tif -o scan.tiles
  slidestitch build photo.jpg -o photo.tiles --tile-size 512 --overlap 8 --format jpeg --quality 85`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", "", "container to create (required)")
	buildCmd.Flags().IntP("tile-size", "t", pyramid.DefaultTileSize, "tile edge in pixels")
	buildCmd.Flags().Int("overlap", 0, "pixels shared between neighbouring tiles")
	buildCmd.Flags().Int("layers", 0, "maximum number of layers (default: down to one tile)")
	buildCmd.Flags().StringP("format", "f", "png", "tile encoding (png|jpeg)")
	buildCmd.Flags().Int("quality", 90, "JPEG quality")
	buildCmd.Flags().String("description", "", "comment stored with the slide")

	for _, name := range []string{"output", "tile-size", "overlap", "layers", "format", "quality", "description"} {
		viper.BindPFlag("build."+name, buildCmd.Flags().Lookup(name))
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	output := viper.GetString("build.output")
	if output == "" {
		return fmt.Errorf("output container is required (use --output)")
	}

	var format int
	switch f := viper.GetString("build.format"); f {
	case "png":
		format = tile.FormatPNG
	case "jpeg", "jpg":
		format = tile.FormatJPEG
	default:
		return fmt.Errorf("unknown tile format: %s", f)
	}

	img, err := imaging.Open(args[0], imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}

	opts := &tiledb.BuildOptions{
		TileSize:    viper.GetInt("build.tile-size"),
		Overlap:     viper.GetInt("build.overlap"),
		MaxLayers:   viper.GetInt("build.layers"),
		Format:      format,
		Quality:     viper.GetInt("build.quality"),
		Description: viper.GetString("build.description"),
		Logger:      logger(),
	}

	if err := tiledb.Build(output, img, opts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
	return nil
}
