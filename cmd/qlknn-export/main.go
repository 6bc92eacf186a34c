// Package main provides the qlknn-export CLI: weight extraction and archival
// for QLKNN surrogate models, plus the cross-implementation parity harness.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fusionml/qlknn-export/export"
)

const version = "v0.2.0"

var (
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()
	verbose bool

	flagModel   string
	flagProfile string
)

var rootCmd = &cobra.Command{
	Use:     "qlknn-export",
	Short:   "Convert QLKNN surrogate models and verify ported implementations",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "path to the ONNX model (defaults to the profile's model path)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "YAML model profile (defaults to qlknn_7_11)")
}

// loadProfile resolves the model profile and model path from the persistent
// flags.
func loadProfile() (export.Profile, string, error) {
	p := export.QLKNN711()
	if flagProfile != "" {
		loaded, err := export.LoadProfile(flagProfile)
		if err != nil {
			return export.Profile{}, "", err
		}
		p = loaded
	}
	modelPath := p.ModelPath
	if flagModel != "" {
		modelPath = flagModel
	}
	return p, modelPath, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
