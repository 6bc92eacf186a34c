package parity

import (
	"fmt"
	"strings"
)

// Absent marks a position past the end of the shorter sequence in an order
// comparison.
const Absent = "(absent)"

// OrderDiff is one positional disagreement between a declared and an assumed
// channel order.
type OrderDiff struct {
	Index    int
	Declared string
	Assumed  string
}

// OrderReport is the outcome of comparing a model's declared output order
// against the order a ported implementation assumes.
type OrderReport struct {
	Differences []OrderDiff
}

// Matched reports whether the two orders agree at every position.
func (r OrderReport) Matched() bool {
	return len(r.Differences) == 0
}

// String renders the report for humans.
func (r OrderReport) String() string {
	if r.Matched() {
		return "output order matches"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "output order mismatch at %d position(s):", len(r.Differences))
	for _, d := range r.Differences {
		fmt.Fprintf(&b, "\n  index %d: declared %q, assumed %q", d.Index, d.Declared, d.Assumed)
	}
	return b.String()
}

// VerifyOrder compares the declared channel order against an assumed one,
// index by index over the longer of the two. It only detects and reports; no
// reordering is attempted. A mismatch is a structural defect in the consuming
// implementation, not a failure of the extraction pipeline.
func VerifyOrder(declared, assumed []string) OrderReport {
	n := len(declared)
	if len(assumed) > n {
		n = len(assumed)
	}
	var report OrderReport
	for i := 0; i < n; i++ {
		d, a := Absent, Absent
		if i < len(declared) {
			d = declared[i]
		}
		if i < len(assumed) {
			a = assumed[i]
		}
		if d != a {
			report.Differences = append(report.Differences, OrderDiff{Index: i, Declared: d, Assumed: a})
		}
	}
	return report
}
