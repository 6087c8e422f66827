package commands

import (
	"fmt"

	"github.com/mwiater/fieldreport/internal/classify"
	"github.com/mwiater/fieldreport/internal/report"
	"github.com/spf13/cobra"
)

var classifyOpts struct {
	dut  float64
	ref  float64
	kind string
}

// classifyCmd classifies a single DUT/REF pair.
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one DUT value against one REF value",
	Long: `Apply the verdict thresholds to a single comparison, for example

  fieldreport classify --dut 100 --ref 90 --kind throughput`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := classify.ParseMetricKind(classifyOpts.kind)
		if err != nil {
			return err
		}
		verdict := classify.Classify(classifyOpts.dut, classifyOpts.ref, kind)
		palette := report.NewPalette(config().NoColor)
		fmt.Fprintln(cmd.OutOrStdout(), palette.Verdict(verdict))
		return nil
	},
}

func init() {
	classifyCmd.Flags().Float64Var(&classifyOpts.dut, "dut", 0, "DUT value")
	classifyCmd.Flags().Float64Var(&classifyOpts.ref, "ref", 0, "REF value")
	classifyCmd.Flags().StringVar(&classifyOpts.kind, "kind", "throughput", "metric kind: throughput, lower-is-better or error-ratio")
	_ = classifyCmd.MarkFlagRequired("dut")
	_ = classifyCmd.MarkFlagRequired("ref")
	rootCmd.AddCommand(classifyCmd)
}
