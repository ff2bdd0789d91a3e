package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/scanforge/docprep/internal/pipeline"
)

// captureCmd represents the capture command.
var captureCmd = &cobra.Command{
	Use:   "capture <files...>",
	Short: "Normalize uncontrolled photographs of paperwork",
	Long: `Process document-capture photos: correct orientation, isolate the
document from the background (with perspective rectification when a clean
quadrilateral is found), then run the quality-tiered enhancement chain and
budget enforcement. With --segment, frames holding several documents are
split into one output image per region.

Examples:
  docprep capture photo.jpg
  docprep capture desk_photo.jpg --segment --output docs/`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}
		cfg := GetConfig()
		outputDir, _ := cmd.Flags().GetString("output")
		segment, _ := cmd.Flags().GetBool("segment")
		noCrop, _ := cmd.Flags().GetBool("no-crop")

		pcfg := cfg.PipelineConfig()
		pcfg.Segmenter.Enabled = segment
		if noCrop {
			pcfg.Boundary.Enabled = false
		}

		p := pipeline.NewBuilder().
			WithConfig(pcfg).
			WithLogger(slog.Default()).
			Build()
		return runBatch(cmd.OutOrStdout(), args, outputDir, func(inputs [][]byte) ([]pipeline.BatchItem, error) {
			return p.ProcessCaptureBatch(cmd.Context(), inputs)
		})
	},
}

func init() {
	captureCmd.Flags().StringP("output", "o", "", "directory for normalized images (default: alongside each input)")
	captureCmd.Flags().Bool("segment", false, "split frames holding several documents into one output per region")
	captureCmd.Flags().Bool("no-crop", false, "disable document boundary detection and cropping")

	rootCmd.AddCommand(captureCmd)
}
