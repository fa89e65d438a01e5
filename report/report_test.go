package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/YuminosukeSato/treeport/dump"
	"github.com/YuminosukeSato/treeport/pkg/errors"
)

func convert(t *testing.T, dumps ...string) *dump.Document {
	t.Helper()
	doc, _, err := dump.Convert(dump.Metadata{Name: "test.json"}, dumps, dump.Options{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	return doc
}

func sampleDocument(t *testing.T) *dump.Document {
	return convert(t,
		"0:[f0<2.5] yes=1 no=2\n1:leaf=-0.3\n2:leaf=0.7",
		"0:[f2<1] yes=1,no=2\n1:[f0<0] yes=3,no=4\n2:leaf=0.1\n3:leaf=0.2\n4:leaf=0.3",
		"0:leaf=-1",
	)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleDocument(t), 2048)

	ints := []struct {
		name      string
		got, want int
	}{
		{"Trees", s.Trees, 3},
		{"Features", s.Features, 3},
		{"Nodes", s.Nodes, 9},
		{"Leaves", s.Leaves, 6},
		{"Splits", s.Splits, 3},
		{"MaxDepth", s.MaxDepth, 2},
		{"FeaturesIn", s.FeaturesIn, 2},
	}
	for _, c := range ints {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	// Leaves: -0.3 0.7 0.1 0.2 0.3 -1
	if !scalar.EqualWithinAbs(s.LeafMean, 0, 1e-12) {
		t.Errorf("LeafMean = %v, want 0", s.LeafMean)
	}
	if s.LeafMin != -1 || s.LeafMax != 0.7 {
		t.Errorf("leaf range = [%v, %v], want [-1, 0.7]", s.LeafMin, s.LeafMax)
	}
	if !scalar.EqualWithinAbs(s.LeafStdDev, 0.5865151319, 1e-9) {
		t.Errorf("LeafStdDev = %v", s.LeafStdDev)
	}
	if !scalar.EqualWithinAbs(s.MeanDepth, 1, 1e-12) {
		t.Errorf("MeanDepth = %v, want 1", s.MeanDepth)
	}
}

func TestSummarizeSingleLeaf(t *testing.T) {
	s := Summarize(convert(t, "0:leaf=0.5"), 0)
	if s.Leaves != 1 || s.LeafMean != 0.5 || s.LeafStdDev != 0 || s.LeafMin != 0.5 || s.LeafMax != 0.5 {
		t.Errorf("single leaf summary = %+v", s)
	}
}

func TestWriteText(t *testing.T) {
	s := Summarize(sampleDocument(t), 2048)
	s.Warnings = 2

	var buf bytes.Buffer
	if err := s.WriteText(&buf); err != nil {
		t.Fatalf("WriteText error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Model statistics:",
		"- Number of trees: 3",
		"- Number of features: 3 (2 used by splits)",
		"- Nodes: 9 (3 splits, 6 leaves)",
		"- Depth: max 2, mean 1.00",
		"range [-1.0000, 0.7000]",
		"- Model size (JSON): 2.0 kB",
		"- Warnings: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	s.SizeBytes, s.Warnings = 0, 0
	buf.Reset()
	if err := s.WriteText(&buf); err != nil {
		t.Fatalf("WriteText error: %v", err)
	}
	if strings.Contains(buf.String(), "Model size") || strings.Contains(buf.String(), "Warnings") {
		t.Errorf("optional lines printed:\n%s", buf.String())
	}
}

func TestLeafHistogram(t *testing.T) {
	doc := sampleDocument(t)
	for _, name := range []string{"leaves.png", "leaves.svg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := LeafHistogram(doc, path, 4); err != nil {
				t.Fatalf("LeafHistogram error: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("histogram not written: %v", err)
			}
			if info.Size() == 0 {
				t.Error("histogram is empty")
			}
		})
	}
}

func TestLeafHistogramDefaultBins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaves.svg")
	for _, bins := range []int{0, -3} {
		if err := LeafHistogram(sampleDocument(t), path, bins); err != nil {
			t.Fatalf("LeafHistogram(bins=%d) error: %v", bins, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("histogram not written: %v", err)
		}
	}
}

func TestLeafHistogramRejectsExtension(t *testing.T) {
	err := LeafHistogram(sampleDocument(t), filepath.Join(t.TempDir(), "leaves.gif"), 0)
	var validation *errors.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}
