package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reliefmap/reliefmap/internal/noise"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic perlin-noise heightmap",
	Long: `Generate renders a square heightmap from layered perlin noise and
writes it in the format implied by the output extension (.png or .r16).
The same seed always produces the same terrain.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int("size", 1024, "heightmap side length in samples")
	generateCmd.Flags().Int64("seed", 0, "noise seed")
	generateCmd.Flags().StringP("output", "o", "", "output file (required)")
	generateCmd.MarkFlagRequired("output")

	viper.BindPFlag("generate.size", generateCmd.Flags().Lookup("size"))
	viper.BindPFlag("generate.seed", generateCmd.Flags().Lookup("seed"))
	viper.BindPFlag("generate.output", generateCmd.Flags().Lookup("output"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	size := viper.GetInt("generate.size")
	if size < 1 {
		return fmt.Errorf("size must be at least 1, got %d", size)
	}

	grid := noise.New(viper.GetInt64("generate.seed")).Grid(size)

	output := viper.GetString("generate.output")
	if err := writeGrid(output, grid); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %dx%d heightmap to %s\n", size, size, output)
	return nil
}
