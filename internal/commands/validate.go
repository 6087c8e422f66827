package commands

import (
	"fmt"
	"os"

	"github.com/mwiater/fieldreport/internal/resultstree"
	"github.com/spf13/cobra"
)

// validateCmd checks the results document against the schema.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the results document has the expected shape",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config()
		data, err := os.ReadFile(cfg.Input)
		if err != nil {
			return fmt.Errorf("unable to read results file %s: %w", cfg.Input, err)
		}
		if err := resultstree.Validate(data); err != nil {
			return fmt.Errorf("%s: %w", cfg.Input, err)
		}
		_, records, err := loadRecords(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%d test cases)\n", cfg.Input, len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
