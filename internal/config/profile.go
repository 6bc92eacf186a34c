// Package config defines model profiles: the out-of-band channel-name lists
// and default locations a conversion run needs. The model graph itself does
// not carry human-readable channel names, so a profile is always supplied
// explicitly to the extractor and the predictor adapter; there is no ambient
// global registry.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes one surrogate model: its name, where its graph lives by
// default, and the fixed input/output channel-name order.
type Profile struct {
	Name        string   `yaml:"name"`
	ModelPath   string   `yaml:"model_path"`
	InputNames  []string `yaml:"input_names"`
	OutputNames []string `yaml:"output_names"`
}

// QLKNN711 returns the profile of the qlknn_7_11 transport-flux surrogate,
// the default model this tool converts. The channel orders match the ONNX
// graph's declared order and are the contract every port must preserve.
func QLKNN711() Profile {
	return Profile{
		Name:      "qlknn_7_11",
		ModelPath: "/Library/Frameworks/Python.framework/Versions/3.12/lib/python3.12/site-packages/fusion_surrogates/qlknn/models/qlknn_7_11.onnx",
		InputNames: []string{
			"Ati", "Ate", "Ane", "Ani", "q", "smag", "x", "Ti_Te", "LogNuStar", "normni",
		},
		OutputNames: []string{
			"efiITG", "efeITG", "pfeITG", "efeTEM", "efiTEM", "pfeTEM", "efeETG", "gamma_max",
		},
	}
}

// LoadProfile reads a profile from a YAML file. Fields left empty fall back
// to the qlknn_7_11 defaults, so a partial profile can override just paths
// or just channel names.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: profile path is caller-provided by design
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p := QLKNN711()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks that the profile is usable for conversion and verification.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no model name")
	}
	if len(p.InputNames) == 0 {
		return fmt.Errorf("profile %q has no input names", p.Name)
	}
	if len(p.OutputNames) == 0 {
		return fmt.Errorf("profile %q has no output names", p.Name)
	}
	if name, ok := duplicate(p.InputNames); ok {
		return fmt.Errorf("profile %q: duplicate input name %q", p.Name, name)
	}
	if name, ok := duplicate(p.OutputNames); ok {
		return fmt.Errorf("profile %q: duplicate output name %q", p.Name, name)
	}
	return nil
}

func duplicate(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n, true
		}
		seen[n] = true
	}
	return "", false
}
