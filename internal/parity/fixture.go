package parity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteGolden persists a fixture as indented JSON, keyed by test-vector name
// then output channel name. The file is written via a temporary name and
// renamed into place so a candidate test suite never reads a partial
// fixture.
func WriteGolden(path string, fixture GoldenFixture) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-")
	if err != nil {
		return fmt.Errorf("stage fixture: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck,gosec // already failing
		os.Remove(tmp.Name()) //nolint:errcheck,gosec // best effort
		return fmt.Errorf("write fixture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck,gosec // best effort
		return fmt.Errorf("write fixture: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck,gosec // best effort
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// ReadGolden loads a fixture written by WriteGolden, or a candidate result
// set in the same layout.
func ReadGolden(path string) (GoldenFixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: fixture path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fixture GoldenFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return fixture, nil
}
