package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the layers and comment of a slide",
	Long: `Print the layer count, the logical size and downsample factor of every
layer, and the slide's comment.

Examples:
  slidestitch info -i scan.tiles`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := openSlide()
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Layers: %d\n", s.LayerCount())

	for layer := 0; layer < s.LayerCount(); layer++ {
		w, h, err := s.Dimensions(layer)
		if err != nil {
			return err
		}
		ds, err := s.Downsample(layer)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %d: %dx%d (downsample %g)\n", layer, w, h, ds)
	}

	comment, err := s.Comment()
	if err != nil {
		return err
	}
	if comment != "" {
		fmt.Fprintf(out, "Comment: %s\n", comment)
	}
	return nil
}
