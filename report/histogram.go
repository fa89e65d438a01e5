package report

import (
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/treeport/dump"
	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// HistogramFormats are the file extensions LeafHistogram can write.
var HistogramFormats = []string{".png", ".svg", ".pdf"}

// LeafHistogram renders the distribution of all leaf values of doc to path.
// The image format follows the extension. bins <= 0 picks the square root of
// the number of leaves.
func LeafHistogram(doc *dump.Document, path string, bins int) error {
	if !IsHistogramPath(path) {
		return errors.NewValidationError("histogram_path", "extension must be one of .png, .svg, .pdf", path)
	}
	values := LeafValues(doc)
	if len(values) == 0 {
		return errors.Newf("model %q has no leaves to plot", doc.Name)
	}

	if bins <= 0 {
		bins = int(math.Ceil(math.Sqrt(float64(len(values)))))
	}
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrap(err, "build leaf histogram")
	}

	p := plot.New()
	p.Title.Text = "Leaf values"
	if doc.Name != "" {
		p.Title.Text += ": " + doc.Name
	}
	p.X.Label.Text = "leaf value"
	p.Y.Label.Text = "leaves"
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save histogram %s", path)
	}
	return nil
}

// IsHistogramPath reports whether path has an extension LeafHistogram supports.
func IsHistogramPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range HistogramFormats {
		if ext == f {
			return true
		}
	}
	return false
}
