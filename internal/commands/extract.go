package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwiater/fieldreport/internal/extract"
	"github.com/mwiater/fieldreport/internal/logging"
	"github.com/mwiater/fieldreport/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var extractOpts struct {
	format string
	output string
}

// extractCmd dumps the extracted test-case records.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Dump the extracted test-case records as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, records, err := loadRecords(config())
		if err != nil {
			return err
		}
		data, err := encodeRecords(records, extractOpts.format)
		if err != nil {
			return err
		}
		if extractOpts.output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := util.WriteFile(extractOpts.output, data); err != nil {
			return fmt.Errorf("write records %s: %w", extractOpts.output, err)
		}
		logging.LogEvent("extracted %d records to %s", len(records), extractOpts.output)
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d records to %s\n", len(records), extractOpts.output)
		return nil
	},
}

func encodeRecords(records []extract.TestCaseRecord, format string) ([]byte, error) {
	if records == nil {
		records = []extract.TestCaseRecord{}
	}
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode records: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode records: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unsupported format %q (want json or yaml)", format)
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.format, "format", "f", "json", "output format: json or yaml")
	extractCmd.Flags().StringVarP(&extractOpts.output, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}
