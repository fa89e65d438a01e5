// Package report computes descriptive statistics of a converted ensemble and
// renders them for humans.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/treeport/dump"
)

// Summary describes the shape of a converted ensemble.
type Summary struct {
	Name       string
	Objective  string
	Trees      int
	Features   int
	Nodes      int
	Leaves     int
	Splits     int
	MaxDepth   int
	MeanDepth  float64
	FeaturesIn int // distinct features referenced by splits

	LeafMean   float64
	LeafStdDev float64
	LeafMin    float64
	LeafMax    float64

	SizeBytes int64 // encoded document size, 0 when not written
	Warnings  int
}

// Summarize walks every tree of doc. sizeBytes is the size of the encoded
// document and may be 0.
func Summarize(doc *dump.Document, sizeBytes int64) Summary {
	s := Summary{
		Name:      doc.Name,
		Objective: doc.Objective,
		Trees:     doc.NumTrees,
		Features:  doc.NumFeature,
		SizeBytes: sizeBytes,
	}

	used := make(map[dump.Feature]struct{})
	depths := make([]float64, 0, len(doc.Trees))
	for _, t := range doc.Trees {
		s.Nodes += t.Len()
		for _, n := range t.Nodes {
			if n.IsLeaf() {
				continue
			}
			s.Splits++
			used[n.Feature] = struct{}{}
		}
		d := t.Depth()
		depths = append(depths, float64(d))
		if d > s.MaxDepth {
			s.MaxDepth = d
		}
	}
	s.FeaturesIn = len(used)
	if len(depths) > 0 {
		s.MeanDepth = stat.Mean(depths, nil)
	}

	leaves := LeafValues(doc)
	s.Leaves = len(leaves)
	switch len(leaves) {
	case 0:
	case 1:
		s.LeafMean, s.LeafMin, s.LeafMax = leaves[0], leaves[0], leaves[0]
	default:
		s.LeafMean, s.LeafStdDev = stat.MeanStdDev(leaves, nil)
		s.LeafMin = floats.Min(leaves)
		s.LeafMax = floats.Max(leaves)
	}
	return s
}

// LeafValues returns the leaf outputs of every tree, tree by tree.
func LeafValues(doc *dump.Document) []float64 {
	var values []float64
	for _, t := range doc.Trees {
		values = append(values, t.LeafValues()...)
	}
	return values
}

// WriteText prints the statistics block shown after a conversion.
func (s Summary) WriteText(w io.Writer) error {
	lines := []string{
		"Model statistics:",
		fmt.Sprintf("- Objective: %s", s.Objective),
		fmt.Sprintf("- Number of trees: %s", humanize.Comma(int64(s.Trees))),
		fmt.Sprintf("- Number of features: %s (%d used by splits)", humanize.Comma(int64(s.Features)), s.FeaturesIn),
		fmt.Sprintf("- Nodes: %s (%s splits, %s leaves)",
			humanize.Comma(int64(s.Nodes)), humanize.Comma(int64(s.Splits)), humanize.Comma(int64(s.Leaves))),
		fmt.Sprintf("- Depth: max %d, mean %.2f", s.MaxDepth, s.MeanDepth),
	}
	if s.Leaves > 0 {
		lines = append(lines, fmt.Sprintf("- Leaf values: mean %s, stddev %s, range [%s, %s]",
			formatFloat(s.LeafMean), formatFloat(s.LeafStdDev), formatFloat(s.LeafMin), formatFloat(s.LeafMax)))
	}
	if s.SizeBytes > 0 {
		lines = append(lines, fmt.Sprintf("- Model size (JSON): %s", humanize.Bytes(uint64(s.SizeBytes))))
	}
	if s.Warnings > 0 {
		lines = append(lines, fmt.Sprintf("- Warnings: %d", s.Warnings))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// MarshalZerologObject logs the summary as one structured object.
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", s.Name).
		Int("trees", s.Trees).
		Int("features", s.Features).
		Int("features_used", s.FeaturesIn).
		Int("nodes", s.Nodes).
		Int("leaves", s.Leaves).
		Int("max_depth", s.MaxDepth).
		Float64("leaf_mean", s.LeafMean).
		Float64("leaf_stddev", s.LeafStdDev).
		Int64("size_bytes", s.SizeBytes)
}

func formatFloat(v float64) string {
	if v == 0 || math.Abs(v) >= 1e-3 && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.4f", v)
	}
	return fmt.Sprintf("%.4g", v)
}
