package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanforge/docprep/internal/quality"
)

// assessCmd represents the assess command.
var assessCmd = &cobra.Command{
	Use:   "assess <files...>",
	Short: "Score image quality without processing",
	Long: `Score each image on blur, contrast, brightness and resolution, print
the quality report as JSON and do nothing else. Useful for deciding whether
a re-capture is needed before spending tokens on extraction.

Examples:
  docprep assess scan.jpg
  docprep assess uploads/*.png`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}
		cfg := GetConfig()
		assessor := quality.NewAssessor(cfg.Quality)

		type assessment struct {
			File   string         `json:"file"`
			Error  string         `json:"error,omitempty"`
			Report quality.Report `json:"report"`
		}
		reports := make([]assessment, 0, len(args))
		for _, f := range args {
			a := assessment{File: f}
			data, err := os.ReadFile(f) //nolint:gosec // processing user-provided files is the point
			if err != nil {
				a.Error = err.Error()
			} else {
				a.Report = assessor.Assess(data)
			}
			reports = append(reports, a)
		}
		return printJSON(cmd.OutOrStdout(), reports)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)
}
