package commands

import (
	"fmt"

	"github.com/mwiater/fieldreport/internal/logging"
	"github.com/mwiater/fieldreport/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// reportCmd renders the HTML report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the HTML report from the results document",
	Long: `Read the results document, classify every DUT vs REF comparison and write a
self-contained HTML report with statistics tables, bar charts, RSRP charts and
coverage distance tables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config()
		doc, err := loadDocument(cfg)
		if err != nil {
			return err
		}
		if err := report.WriteHTML(cfg.HTMLOutput, doc); err != nil {
			return err
		}
		logging.GetLogger().WithFields(logrus.Fields{
			"output":  cfg.HTMLOutput,
			"records": doc.RecordCount,
		}).Info("report written")
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d test cases)\n", cfg.HTMLOutput, doc.RecordCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
