package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fusionml/qlknn-export/parity"
)

var compareTolerance float64

var compareCmd = &cobra.Command{
	Use:   "compare <golden.json> <candidate.json>",
	Short: "Compare candidate outputs against a golden fixture",
	Long: `Compare loads a golden fixture and a candidate result set in the same
JSON layout and checks them element-wise: every pair must agree within the
tolerance and every value must be finite. All channels are checked; the exit
status is nonzero if any comparison failed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := parity.ReadGolden(args[0])
		if err != nil {
			return err
		}
		candidate, err := parity.ReadGolden(args[1])
		if err != nil {
			return err
		}

		report := parity.Compare(fixture, candidate, compareTolerance)
		fmt.Fprintln(os.Stdout, report.String())

		if !report.Passed() {
			failures := report.Failures()
			log.Error().Int("failures", len(failures)).Msg("parity check failed")
			return fmt.Errorf("%d of %d comparisons failed", len(failures), len(report.Results))
		}
		log.Info().Int("comparisons", len(report.Results)).Msg("parity check passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Float64VarP(&compareTolerance, "tolerance", "t", parity.DefaultTolerance,
		"element-wise absolute tolerance")
}
