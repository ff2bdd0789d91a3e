package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scanforge/docprep/internal/budget"
	"github.com/scanforge/docprep/internal/pipeline"
)

// normalizeCmd represents the normalize command.
var normalizeCmd = &cobra.Command{
	Use:   "normalize <files...>",
	Short: "Run the quality-tiered normalization pipeline on images",
	Long: `Assess each image's quality, run the enhancement chain its tier calls
for, enforce the output size budget and write the normalized JPEG next to
the input (or into --output). A JSON report per input is printed to stdout.

Supported input formats: JPEG, PNG, GIF, BMP, TIFF, WebP

Examples:
  docprep normalize scan.jpg
  docprep normalize *.png --output normalized/
  docprep normalize photo.jpg --max-long-edge 1092`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}
		cfg := GetConfig()
		outputDir, _ := cmd.Flags().GetString("output")

		p := pipeline.NewBuilder().
			WithConfig(cfg.PipelineConfig()).
			WithLogger(slog.Default()).
			Build()
		return runBatch(cmd.OutOrStdout(), args, outputDir, func(inputs [][]byte) ([]pipeline.BatchItem, error) {
			return p.ProcessBatch(cmd.Context(), inputs)
		})
	},
}

func init() {
	// Flag defaults mirror the config defaults so viper flag binding does
	// not shadow them.
	b := budget.DefaultConfig()
	normalizeCmd.Flags().StringP("output", "o", "", "directory for normalized images (default: alongside each input)")
	normalizeCmd.Flags().Int("max-long-edge", b.MaxLongEdge, "maximum output long edge in pixels")
	normalizeCmd.Flags().Float64("max-megapixels", b.MaxMegapixels, "maximum output megapixels")
	normalizeCmd.Flags().Int("max-bytes", b.MaxBytes, "maximum encoded output size in bytes")
	normalizeCmd.Flags().Int("workers", pipeline.DefaultParallelConfig().MaxWorkers, "parallel worker count for batches")

	_ = viper.BindPFlag("budget.max_long_edge", normalizeCmd.Flags().Lookup("max-long-edge"))
	_ = viper.BindPFlag("budget.max_megapixels", normalizeCmd.Flags().Lookup("max-megapixels"))
	_ = viper.BindPFlag("budget.max_bytes", normalizeCmd.Flags().Lookup("max-bytes"))
	_ = viper.BindPFlag("parallel.max_workers", normalizeCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(normalizeCmd)
}
