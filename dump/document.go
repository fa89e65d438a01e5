package dump

import (
	"encoding/json"
	"io"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// Defaults applied when the ensemble metadata does not carry a value.
const (
	DefaultObjective = "binary:logistic"
	DefaultBaseScore = 0.5
)

// Metadata describes the ensemble as reported by the source loader.
type Metadata struct {
	Name       string
	Objective  string   // empty when unknown
	BaseScore  *float64 // nil when unknown
	NumFeature int      // <= 0 when unknown
	NumTrees   int      // <= 0 when unknown
}

// Document is the portable model handed to the serializer. Trees are in
// boosting round order; a runtime sums the leaf reached in every tree.
type Document struct {
	Name       string  `json:"name"`
	Objective  string  `json:"objective"`
	BaseScore  float64 `json:"base_score"`
	NumTrees   int     `json:"num_trees"`
	NumFeature int     `json:"num_feature"`
	Trees      []Tree  `json:"trees"`
}

// BuildDocument assembles the document from metadata and the trees in
// round order. Objective and base score fall back to the defaults. An
// unknown feature count is inferred from the largest feature index in use.
func BuildDocument(meta Metadata, trees []Tree) (*Document, Diagnostics, error) {
	if len(trees) == 0 {
		return nil, nil, errors.NewConversionError("BuildDocument", errors.ModelLevel, errors.KindEmptyModel, nil)
	}

	doc := &Document{
		Name:       meta.Name,
		Objective:  meta.Objective,
		BaseScore:  DefaultBaseScore,
		NumTrees:   len(trees),
		NumFeature: meta.NumFeature,
		Trees:      append([]Tree(nil), trees...),
	}
	if doc.Objective == "" {
		doc.Objective = DefaultObjective
	}
	if meta.BaseScore != nil {
		if err := errors.CheckScalar("base_score", *meta.BaseScore); err != nil {
			return nil, nil, errors.NewConversionError("BuildDocument", errors.ModelLevel, "invalid base score", err)
		}
		doc.BaseScore = *meta.BaseScore
	}

	var diags Diagnostics
	if meta.NumTrees > 0 && meta.NumTrees != len(trees) {
		diags = append(diags, &errors.TreeCountMismatchWarning{Declared: meta.NumTrees, Dumped: len(trees)})
	}

	if doc.NumFeature <= 0 {
		doc.NumFeature = inferNumFeature(trees)
		return doc, diags, nil
	}
	for _, t := range trees {
		for _, id := range t.IDs() {
			n := t.Nodes[id]
			if idx, ok := n.Feature.Index(); !n.IsLeaf() && ok && idx >= doc.NumFeature {
				diags = append(diags, &errors.FeatureOutOfRangeWarning{Tree: t.Index, Node: id, Feature: idx, NumFeature: doc.NumFeature})
			}
		}
	}
	return doc, diags, nil
}

func inferNumFeature(trees []Tree) int {
	numFeature := 0
	for _, t := range trees {
		for _, n := range t.Nodes {
			if idx, ok := n.Feature.Index(); !n.IsLeaf() && ok && idx+1 > numFeature {
				numFeature = idx + 1
			}
		}
	}
	return numFeature
}

// Marshal returns the indented JSON encoding of the document, terminated by a newline.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return append(data, '\n'), nil
}

// WriteTo writes the indented JSON encoding of the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ParseDocument decodes a document produced by Marshal. Tree indexes are
// restored from their position.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode document")
	}
	for i := range doc.Trees {
		doc.Trees[i].Index = i
	}
	if doc.NumTrees != len(doc.Trees) {
		return nil, errors.Newf("num_trees is %d but the document holds %d trees", doc.NumTrees, len(doc.Trees))
	}
	return &doc, nil
}
