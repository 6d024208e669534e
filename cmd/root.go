package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slidestitch",
	Short: "Read regions out of pyramidal, tile-based images",
	Long: `slidestitch assembles arbitrary rectangular regions from layered tile
grids such as whole-slide images.

A slide is either a .tiles container written by "slidestitch build", whose
tiles may overlap their neighbours, or any PNG, JPEG, GIF or TIFF image, which
is turned into an in-memory pyramid on open.

Examples:
  # Describe the layers of a slide
  slidestitch info -i scan.tiles

  # Cut a 1024x768 region out of layer 2 starting at layer-0 pixel 4096,2048
  slidestitch region -i scan.tiles --x 4096 --y 2048 --layer 2 --width 1024 --height 768 -o crop.png

  # Build an overlapping tile container from a large image
  slidestitch build scan.tif -o scan.tiles --tile-size 256 --overlap 2

  # Serve regions over HTTP
  slidestitch serve -i scan.tiles --port 8080`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.slidestitch.yaml)")
	rootCmd.PersistentFlags().StringP("input", "i", "", "slide to open (.tiles container or image file)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log tile decoding to stderr")

	viper.BindPFlag("input", rootCmd.PersistentFlags().Lookup("input"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".slidestitch" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".slidestitch")
	}

	viper.SetEnvPrefix("slidestitch")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
