package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQLKNN711Profile(t *testing.T) {
	p := QLKNN711()
	require.NoError(t, p.Validate())
	assert.Equal(t, "qlknn_7_11", p.Name)
	assert.Len(t, p.InputNames, 10)
	assert.Len(t, p.OutputNames, 8)
	assert.Equal(t, "Ati", p.InputNames[0])
	assert.Equal(t, "normni", p.InputNames[9])
	assert.Equal(t, "efiITG", p.OutputNames[0])
	assert.Equal(t, "gamma_max", p.OutputNames[7])
}

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfilePartialOverride(t *testing.T) {
	path := writeProfile(t, "model_path: /data/models/qlknn_7_11.onnx\n")

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/models/qlknn_7_11.onnx", p.ModelPath)
	// Unset fields keep the qlknn_7_11 defaults.
	assert.Equal(t, "qlknn_7_11", p.Name)
	assert.Equal(t, QLKNN711().OutputNames, p.OutputNames)
}

func TestLoadProfileFullOverride(t *testing.T) {
	path := writeProfile(t, `name: mini
model_path: /tmp/mini.onnx
input_names: [a, b]
output_names: [y]
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "mini", p.Name)
	assert.Equal(t, []string{"a", "b"}, p.InputNames)
	assert.Equal(t, []string{"y"}, p.OutputNames)
}

func TestLoadProfileRejectsDuplicates(t *testing.T) {
	path := writeProfile(t, "output_names: [efiITG, efiITG]\n")

	_, err := LoadProfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate output name")
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadProfileMalformedYAML(t *testing.T) {
	path := writeProfile(t, "input_names: [unterminated\n")
	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestValidateRejectsEmptyChannelLists(t *testing.T) {
	p := QLKNN711()
	p.InputNames = nil
	assert.Error(t, p.Validate())

	p = QLKNN711()
	p.OutputNames = nil
	assert.Error(t, p.Validate())

	p = QLKNN711()
	p.Name = ""
	assert.Error(t, p.Validate())
}
