package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fusionml/qlknn-export/export"
)

var (
	convertOut     string
	convertBase    string
	convertSummary bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Extract model weights into safetensors, npz and descriptor archives",
	Long: `Convert parses the ONNX model, normalizes every weight tensor to float32,
and writes three artifacts under the output directory: <base>.safetensors,
<base>.npz and <base>.json (the architecture descriptor). The set is staged
and renamed into place together, so partial results never appear.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, modelPath, err := loadProfile()
		if err != nil {
			return err
		}
		base := convertBase
		if base == "" {
			base = p.Name
		}

		log.Info().Str("model", modelPath).Str("out", convertOut).Msg("converting")
		tensors, desc, err := export.Extract(modelPath, p)
		if err != nil {
			return err
		}
		log.Debug().Int("tensors", len(tensors)).Int("layers", len(desc.Layers)).Msg("extracted")

		if convertSummary {
			fmt.Fprint(os.Stdout, export.FormatSummary(export.Summarize(tensors)))
		}

		m, err := export.Write(convertOut, base, tensors, desc)
		if err != nil {
			return err
		}
		log.Info().
			Str("safetensors", m.SafeTensorsPath).
			Str("npz", m.NPZPath).
			Str("descriptor", m.DescriptorPath).
			Int("tensors", m.TensorCount).
			Int("parameters", m.Parameters).
			Msg("archives written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", ".", "output directory")
	convertCmd.Flags().StringVar(&convertBase, "base", "", "artifact base name (defaults to the profile's model name)")
	convertCmd.Flags().BoolVar(&convertSummary, "summary", false, "print a per-tensor weight summary")
}
