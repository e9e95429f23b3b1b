package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reliefmap/reliefmap/internal/splitter"
)

var splitCmd = &cobra.Command{
	Use:   "split [file...]",
	Short: "Split large renders into a grid of 1K chunks",
	Long: `Split cuts each input image into an 8x8 grid of 1024px chunks,
written as "{name}_chunk_y{row}_x{col}.png" into a fresh directory named
after the image. Edge chunks narrower than 200px are dropped.

Examples:
  # Split one render
  reliefmap split terrain_green.png

  # Split every PNG in a directory
  reliefmap split --input-dir ./renders`,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().StringP("input-dir", "i", "", "split every PNG in this directory")

	viper.BindPFlag("split.input-dir", splitCmd.Flags().Lookup("input-dir"))
}

func runSplit(cmd *cobra.Command, args []string) error {
	s := splitter.New(layoutFromConfig())

	if dir := viper.GetString("split.input-dir"); dir != "" {
		return s.SplitDir(dir)
	}
	if len(args) == 0 {
		return fmt.Errorf("provide image files or --input-dir")
	}

	for _, path := range args {
		tiles, err := s.SplitFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Split %s into %d chunks\n", path, len(tiles))
	}
	return nil
}
