package parity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionml/qlknn-export/internal/config"
)

func TestVerifyOrderMatch(t *testing.T) {
	declared := config.QLKNN711().OutputNames
	assumed := append([]string(nil), declared...)

	report := VerifyOrder(declared, assumed)
	assert.True(t, report.Matched())
	assert.Equal(t, "output order matches", report.String())
}

func TestVerifyOrderSwappedPair(t *testing.T) {
	declared := []string{"efiITG", "efeITG", "pfeITG"}
	assumed := []string{"efeITG", "efiITG", "pfeITG"}

	report := VerifyOrder(declared, assumed)
	assert.False(t, report.Matched())
	require.Len(t, report.Differences, 2)
	assert.Equal(t, OrderDiff{Index: 0, Declared: "efiITG", Assumed: "efeITG"}, report.Differences[0])
	assert.Equal(t, OrderDiff{Index: 1, Declared: "efeITG", Assumed: "efiITG"}, report.Differences[1])
}

func TestVerifyOrderAssumedShorter(t *testing.T) {
	declared := []string{"efiITG", "efeITG", "pfeITG"}
	assumed := []string{"efiITG", "efeITG"}

	report := VerifyOrder(declared, assumed)
	require.Len(t, report.Differences, 1)
	assert.Equal(t, OrderDiff{Index: 2, Declared: "pfeITG", Assumed: Absent}, report.Differences[0])
}

func TestVerifyOrderAssumedLonger(t *testing.T) {
	declared := []string{"efiITG"}
	assumed := []string{"efiITG", "extra"}

	report := VerifyOrder(declared, assumed)
	require.Len(t, report.Differences, 1)
	assert.Equal(t, OrderDiff{Index: 1, Declared: Absent, Assumed: "extra"}, report.Differences[0])
}

func TestVerifyOrderEmptyBothSides(t *testing.T) {
	assert.True(t, VerifyOrder(nil, nil).Matched())
}

func TestOrderReportString(t *testing.T) {
	report := VerifyOrder([]string{"a", "b"}, []string{"b", "a"})
	s := report.String()
	assert.Contains(t, s, "mismatch at 2 position(s)")
	assert.Contains(t, s, `index 0: declared "a", assumed "b"`)
}
