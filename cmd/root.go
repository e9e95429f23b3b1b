package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reliefmap/reliefmap/pkg/chunk"
	"github.com/reliefmap/reliefmap/pkg/heightmap"
)

const version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reliefmap",
	Short: "Decode terrain heightmaps and split or merge chunked renders",
	Long: `reliefmap works with terrain heightmaps and large rendered maps.

It decodes elevation data from raw .r16 exports and 8/16-bit PNG or TIFF
images, splits oversized renders into a fixed grid of 1K chunks, and
reassembles chunk directories back into full images.

Examples:
  # Inspect a heightmap export
  reliefmap info terrain.r16

  # Convert a raw export to a 16-bit grayscale PNG at 1000x1000
  reliefmap convert terrain.r16 -o terrain.png --resolution 1000

  # Split every PNG in a directory into 1K chunks
  reliefmap split --input-dir ./renders

  # Reassemble chunk directories back into full images
  reliefmap merge --input-dir ./renders --recursive

  # Generate a synthetic 1024x1024 heightmap for testing
  reliefmap generate --size 1024 --seed 7 -o synthetic.r16

  # Start the HTTP API
  reliefmap serve --port 8080`,
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

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reliefmap.yaml)")
	rootCmd.PersistentFlags().Int("chunk-size", chunk.DefaultChunkSize, "chunk edge length in pixels")
	rootCmd.PersistentFlags().Int("grid-side", chunk.DefaultGridSide, "chunks per side of the tiling grid")
	rootCmd.PersistentFlags().Int("min-edge", chunk.DefaultMinEdge, "smallest clipped chunk edge worth keeping")
	rootCmd.PersistentFlags().Bool("r16-header", false, "treat .r16 files as carrying an 8-byte width/height header")

	viper.BindPFlag("chunk-size", rootCmd.PersistentFlags().Lookup("chunk-size"))
	viper.BindPFlag("grid-side", rootCmd.PersistentFlags().Lookup("grid-side"))
	viper.BindPFlag("min-edge", rootCmd.PersistentFlags().Lookup("min-edge"))
	viper.BindPFlag("r16-header", rootCmd.PersistentFlags().Lookup("r16-header"))
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

		// Search config in home directory with name ".reliefmap" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".reliefmap")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// layoutFromConfig resolves the tiling layout from flags and config file.
func layoutFromConfig() chunk.Layout {
	return chunk.Layout{
		ChunkSize: viper.GetInt("chunk-size"),
		GridSide:  viper.GetInt("grid-side"),
		MinEdge:   viper.GetInt("min-edge"),
	}
}

// decoderFromConfig builds a heightmap decoder honoring the configured
// .r16 convention.
func decoderFromConfig() *heightmap.Decoder {
	return heightmap.NewDecoder(heightmap.DecodeOptions{
		HeaderDims: viper.GetBool("r16-header"),
	})
}
