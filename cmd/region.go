package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/slidestitch/internal/stitch"
)

var regionCmd = &cobra.Command{
	Use:   "region",
	Short: "Extract a region of a slide as an image",
	Long: `Extract a rectangular region from one layer of a slide.

The origin is given in layer-0 pixels and the size in pixels of the chosen
layer. A zero width or height extends the region to the layer's edge.

Examples:
  # Whole of layer 3 as PNG on stdout
  slidestitch region -i scan.tiles --layer 3 > overview.png

  # A window of layer 0 as TIFF
  slidestitch region -i scan.tiles --x 512 --y 512 --width 2048 --height 2048 -f tiff -o window.tif`,
	RunE: runRegion,
}

func init() {
	rootCmd.AddCommand(regionCmd)

	regionCmd.Flags().Int("x", 0, "left edge in layer-0 pixels")
	regionCmd.Flags().Int("y", 0, "top edge in layer-0 pixels")
	regionCmd.Flags().IntP("layer", "l", 0, "layer to read from")
	regionCmd.Flags().Int("width", 0, "region width in layer pixels (default: to the layer edge)")
	regionCmd.Flags().Int("height", 0, "region height in layer pixels (default: to the layer edge)")
	regionCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	regionCmd.Flags().StringP("format", "f", "png", "output format (png|tiff)")

	for _, name := range []string{"x", "y", "layer", "width", "height", "output", "format"} {
		viper.BindPFlag("region."+name, regionCmd.Flags().Lookup(name))
	}
}

func runRegion(cmd *cobra.Command, args []string) error {
	format, err := stitch.ParseFormat(viper.GetString("region.format"))
	if err != nil {
		return err
	}

	opts := &stitch.Options{
		Output: viper.GetString("region.output"),
		Format: format,
		X:      viper.GetInt("region.x"),
		Y:      viper.GetInt("region.y"),
		Layer:  viper.GetInt("region.layer"),
		Width:  viper.GetInt("region.width"),
		Height: viper.GetInt("region.height"),
	}
	if opts.X < 0 || opts.Y < 0 || opts.Width < 0 || opts.Height < 0 {
		return fmt.Errorf("x, y, width and height must not be negative")
	}

	s, err := openSlide()
	if err != nil {
		return err
	}
	defer s.Close()

	e := stitch.NewExporter(s, opts)
	e.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return e.Export()
}
