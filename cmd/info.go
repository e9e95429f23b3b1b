package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reliefmap/reliefmap/internal/config"
)

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Decode a heightmap and print its dimensions and range",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	grid, err := decoderFromConfig().Load(args[0])
	if err != nil {
		return err
	}

	_, scale, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	lo, hi := grid.Range()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %dx%d samples\n", args[0], grid.Width, grid.Height)
	fmt.Fprintf(out, "Height range: %d-%d\n", lo, hi)
	fmt.Fprintf(out, "Physical extent: %.2f x %.2f km, max elevation %.2f km\n",
		scale.WidthKm, scale.HeightKm, scale.MaxElevationKm)
	return nil
}
