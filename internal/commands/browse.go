package commands

import (
	"github.com/mwiater/fieldreport/internal/report"
	"github.com/mwiater/fieldreport/internal/tui"
	"github.com/spf13/cobra"
)

// browseCmd opens the interactive record browser.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse test cases interactively in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config()
		doc, err := loadDocument(cfg)
		if err != nil {
			return err
		}
		return tui.Run(doc, report.NewPalette(cfg.NoColor))
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
