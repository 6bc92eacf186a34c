package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fusionml/qlknn-export/export"
	"github.com/fusionml/qlknn-export/parity"
)

var orderDescriptor string

var orderCmd = &cobra.Command{
	Use:   "verify-order <channel>...",
	Short: "Check an assumed output-channel order against the declared one",
	Long: `Verify-order compares the output-channel order a ported implementation
assumes (given as arguments, one channel per argument) against the declared
order, position by position. The declared order comes from an architecture
descriptor if --descriptor is given, otherwise from the model profile.

No reordering is attempted: a mismatch means the consuming implementation
indexes output columns incorrectly and must be fixed there.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var declared []string
		if orderDescriptor != "" {
			desc, err := export.ReadDescriptor(orderDescriptor)
			if err != nil {
				return err
			}
			declared = desc.OutputNames
		} else {
			p, _, err := loadProfile()
			if err != nil {
				return err
			}
			declared = p.OutputNames
		}

		report := parity.VerifyOrder(declared, args)
		fmt.Fprintln(os.Stdout, report.String())
		if !report.Matched() {
			return fmt.Errorf("output order mismatch at %d position(s)", len(report.Differences))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.Flags().StringVarP(&orderDescriptor, "descriptor", "d", "",
		"read the declared order from this architecture descriptor")
}
