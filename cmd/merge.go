package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reliefmap/reliefmap/internal/merger"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [directory]",
	Short: "Reassemble chunk directories into full images",
	Long: `Merge scans a directory for files named
"{name}_chunk_y{row}_x{col}.png", reassembles each group onto a
transparent canvas, trims the empty border and writes
"{name}_merged.png" next to the scanned directory. Files outside the
naming scheme are ignored, and one group's failure does not stop the
others.

Examples:
  # Merge one chunk directory
  reliefmap merge ./renders/terrain_green

  # Merge every chunk directory under a parent
  reliefmap merge --input-dir ./renders --recursive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringP("input-dir", "i", "", "directory holding the chunk files")
	mergeCmd.Flags().BoolP("recursive", "r", false, "merge each immediate subdirectory")

	viper.BindPFlag("merge.input-dir", mergeCmd.Flags().Lookup("input-dir"))
	viper.BindPFlag("merge.recursive", mergeCmd.Flags().Lookup("recursive"))
}

func runMerge(cmd *cobra.Command, args []string) error {
	dir := viper.GetString("merge.input-dir")
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}

	m := merger.New(layoutFromConfig())

	var results map[string]merger.Result
	var err error
	if viper.GetBool("merge.recursive") {
		results, err = m.MergeTree(dir)
	} else {
		results, err = m.MergeToFiles(dir)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no chunk files found in %s\n", dir)
		return nil
	}

	bases := make([]string, 0, len(results))
	for base := range results {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	failed := 0
	for _, base := range bases {
		res := results[base]
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Can't merge %s: %v\n", base, res.Err)
			continue
		}
		fmt.Fprintf(os.Stderr, "Merged %s -> %s\n", base, res.Path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d groups failed", failed, len(results))
	}
	return nil
}
