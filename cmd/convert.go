package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reliefmap/reliefmap/pkg/heightmap"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Convert a heightmap to 16-bit grayscale PNG or raw .r16",
	Long: `Convert decodes any supported heightmap and rewrites it in the
format implied by the output extension: .png for 16-bit grayscale PNG,
.r16 for raw headerless samples. With --resolution the grid is
resampled to NxN first.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("output", "o", "", "output file (required)")
	convertCmd.Flags().Int("resolution", 0, "resample the grid to NxN before writing")
	convertCmd.MarkFlagRequired("output")

	viper.BindPFlag("convert.output", convertCmd.Flags().Lookup("output"))
	viper.BindPFlag("convert.resolution", convertCmd.Flags().Lookup("resolution"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	grid, err := decoderFromConfig().Load(args[0])
	if err != nil {
		return err
	}

	if res := viper.GetInt("convert.resolution"); res > 0 {
		grid = heightmap.Resample(grid, res, res)
	}

	output := viper.GetString("convert.output")
	if err := writeGrid(output, grid); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %dx%d grid to %s\n", grid.Width, grid.Height, output)
	return nil
}

func writeGrid(path string, grid *heightmap.Grid) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".r16":
		return heightmap.WriteR16(path, grid)
	case ".png":
		return heightmap.WritePNG16(path, grid)
	default:
		return fmt.Errorf("unsupported output extension for %s (use .png or .r16)", path)
	}
}
