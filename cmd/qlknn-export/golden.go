package main

import (
	"github.com/spf13/cobra"

	"github.com/fusionml/qlknn-export/parity"
)

var goldenOut string

var goldenCmd = &cobra.Command{
	Use:   "golden",
	Short: "Generate a golden fixture from the reference runtime",
	Long: `Golden runs the canonical test vectors through the reference ONNX model
via ONNX Runtime and writes the outputs as a JSON fixture. The fixture is the
source of truth for every candidate implementation's parity tests.

Requires a cgo build; set ONNXRUNTIME_SHARED_LIBRARY_PATH if the onnxruntime
shared library is not on the default search path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, modelPath, err := loadProfile()
		if err != nil {
			return err
		}

		predictor, closeFn, err := parity.NewReferencePredictor(modelPath, p)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeFn(); err != nil {
				log.Warn().Err(err).Msg("closing reference session")
			}
		}()

		vectors := parity.Canonical()
		log.Info().Str("model", modelPath).Int("vectors", len(vectors)).Msg("generating golden fixture")
		fixture, err := parity.Run(vectors, predictor)
		if err != nil {
			return err
		}
		if err := parity.WriteGolden(goldenOut, fixture); err != nil {
			return err
		}
		log.Info().Str("path", goldenOut).Msg("golden fixture written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(goldenCmd)
	goldenCmd.Flags().StringVarP(&goldenOut, "out", "o", "golden.json", "fixture output path")
}
