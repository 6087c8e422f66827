package commands

import (
	"github.com/mwiater/fieldreport/internal/report"
	"github.com/spf13/cobra"
)

// summaryCmd prints the verdict summary tables.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a terminal summary of every test case and its verdicts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config()
		doc, err := loadDocument(cfg)
		if err != nil {
			return err
		}
		return report.WriteSummary(cmd.OutOrStdout(), doc, report.NewPalette(cfg.NoColor))
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
