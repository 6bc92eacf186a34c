package parity

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ChannelResult is the comparison outcome for one output channel of one test
// vector.
type ChannelResult struct {
	Vector     string
	Channel    string
	Samples    int
	MaxDiff    float64
	WorstIndex int
	NonFinite  bool
	Pass       bool
	Detail     string // set when no element-wise comparison was possible
}

// ParityReport accumulates every channel comparison of a run. No single
// failure aborts a comparison; the run as a whole passes only if every
// recorded result passed.
type ParityReport struct {
	Tolerance float64
	Results   []ChannelResult
}

// Passed reports whether every comparison passed.
func (r ParityReport) Passed() bool {
	for _, c := range r.Results {
		if !c.Pass {
			return false
		}
	}
	return true
}

// Failures returns the failing comparisons.
func (r ParityReport) Failures() []ChannelResult {
	var out []ChannelResult
	for _, c := range r.Results {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}

// AllFinite is the aggregate finiteness verdict: false if any compared value
// on either side was NaN or infinite.
func (r ParityReport) AllFinite() bool {
	for _, c := range r.Results {
		if c.NonFinite {
			return false
		}
	}
	return true
}

// String renders a per-channel summary with the maximum observed difference.
func (r ParityReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parity report (tolerance %g):", r.Tolerance)
	for _, c := range r.Results {
		status := "ok"
		switch {
		case c.Detail != "":
			status = c.Detail
		case c.NonFinite:
			status = "non-finite values"
		case !c.Pass:
			status = fmt.Sprintf("max diff %g at sample %d", c.MaxDiff, c.WorstIndex)
		}
		fmt.Fprintf(&b, "\n  %s/%s: %s", c.Vector, c.Channel, status)
	}
	if r.Passed() {
		b.WriteString("\n  all comparisons passed")
	}
	return b.String()
}

// Run drives the predictor over every test vector and assembles the results
// into a golden fixture.
func Run(vectors map[string]TestVector, p Predictor) (GoldenFixture, error) {
	fixture := make(GoldenFixture, len(vectors))
	for _, name := range sortedKeys(vectors) {
		result, err := p.Predict(vectors[name])
		if err != nil {
			return nil, fmt.Errorf("test vector %q: %w", name, err)
		}
		fixture[name] = result
	}
	return fixture, nil
}

// Compare checks candidate outputs against a golden fixture element-wise.
// A pair fails when its absolute difference exceeds tolerance or when either
// side is not finite. Missing vectors, missing channels and unexpected extra
// channels are recorded as failures rather than aborting the comparison.
func Compare(fixture GoldenFixture, candidate map[string]PredictionResult, tolerance float64) ParityReport {
	report := ParityReport{Tolerance: tolerance}

	for _, vecName := range sortedKeys(fixture) {
		golden := fixture[vecName]
		cand, ok := candidate[vecName]
		if !ok {
			report.Results = append(report.Results, ChannelResult{
				Vector: vecName, Channel: "*", Detail: "vector missing from candidate",
			})
			continue
		}
		for _, ch := range sortedKeys(golden) {
			report.Results = append(report.Results, compareChannel(vecName, ch, golden[ch], cand[ch], tolerance))
		}
		// Channels the reference never produced are a contract violation on
		// the candidate side.
		for _, ch := range sortedKeys(cand) {
			if _, ok := golden[ch]; !ok {
				report.Results = append(report.Results, ChannelResult{
					Vector: vecName, Channel: ch, Detail: "unexpected channel in candidate",
				})
			}
		}
	}
	return report
}

// compareChannel compares one channel's per-sample values.
func compareChannel(vector, channel string, golden, cand []float32, tolerance float64) ChannelResult {
	res := ChannelResult{Vector: vector, Channel: channel, Samples: len(golden)}
	if cand == nil {
		res.Detail = "channel missing from candidate"
		return res
	}
	if len(cand) != len(golden) {
		res.Detail = fmt.Sprintf("sample count %d, golden has %d", len(cand), len(golden))
		return res
	}

	res.Pass = true
	for i := range golden {
		g, c := float64(golden[i]), float64(cand[i])
		if !isFinite(g) || !isFinite(c) {
			res.NonFinite = true
			res.Pass = false
			continue
		}
		diff := math.Abs(g - c)
		if diff > res.MaxDiff {
			res.MaxDiff = diff
			res.WorstIndex = i
		}
		if diff > tolerance {
			res.Pass = false
		}
	}
	return res
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
