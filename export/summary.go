package export

import (
	"fmt"
	"strings"
)

// TensorSummary is one row of a weight summary: the tensor's identity plus
// basic value statistics, useful for eyeballing a conversion before trusting
// the archives.
type TensorSummary struct {
	Name     string
	Shape    []int
	Elements int
	Min      float32
	Max      float32
	Mean     float64
}

// Summarize computes per-tensor statistics in the collection's order.
func Summarize(tensors []Tensor) []TensorSummary {
	out := make([]TensorSummary, 0, len(tensors))
	for i := range tensors {
		t := &tensors[i]
		s := TensorSummary{Name: t.Name, Shape: t.Shape, Elements: t.NumElements()}
		if len(t.Data) > 0 {
			s.Min, s.Max = t.Data[0], t.Data[0]
			var sum float64
			for _, v := range t.Data {
				if v < s.Min {
					s.Min = v
				}
				if v > s.Max {
					s.Max = v
				}
				sum += float64(v)
			}
			s.Mean = sum / float64(len(t.Data))
		}
		out = append(out, s)
	}
	return out
}

// FormatSummary renders summaries as an aligned text table.
func FormatSummary(summaries []TensorSummary) string {
	var b strings.Builder
	nameWidth := len("tensor")
	for _, s := range summaries {
		if len(s.Name) > nameWidth {
			nameWidth = len(s.Name)
		}
	}
	fmt.Fprintf(&b, "%-*s  %-12s %10s %12s %12s %12s\n", nameWidth, "tensor", "shape", "elements", "min", "max", "mean")
	total := 0
	for _, s := range summaries {
		fmt.Fprintf(&b, "%-*s  %-12s %10d %12.5g %12.5g %12.5g\n",
			nameWidth, s.Name, shapeString(s.Shape), s.Elements, s.Min, s.Max, s.Mean)
		total += s.Elements
	}
	fmt.Fprintf(&b, "%d tensors, %d parameters (%.1f KiB as float32)\n",
		len(summaries), total, float64(4*total)/1024)
	return b.String()
}

func shapeString(shape []int) string {
	if len(shape) == 0 {
		return "scalar"
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
