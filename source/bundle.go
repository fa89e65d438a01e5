package source

import (
	"context"
	"encoding/json"

	"github.com/tidwall/jsonc"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// BundleLoader reads a JSON object holding the per-tree dumps from
// Booster.get_dump() and the booster parameters:
//
//	{
//	  // exported from a notebook
//	  "name": "churn",
//	  "objective": "binary:logistic",
//	  "base_score": 0.5,
//	  "num_feature": 16,
//	  "trees": ["0:[f0<2.5] yes=1,no=2,missing=1\n\t1:leaf=-0.3\n\t2:leaf=0.7\n"],
//	}
//
// Comments and trailing commas are accepted.
type BundleLoader struct{}

type bundle struct {
	Name       string   `json:"name"`
	Objective  string   `json:"objective"`
	BaseScore  *float64 `json:"base_score"`
	NumFeature int      `json:"num_feature"`
	NumTrees   int      `json:"num_trees"`
	Trees      []string `json:"trees"`
}

// Format implements Loader.
func (BundleLoader) Format() string { return FormatBundle }

// Load implements Loader.
func (BundleLoader) Load(ctx context.Context, path string) (*Model, error) {
	data, err := readModel(ctx, path)
	if err != nil {
		return nil, err
	}

	var b bundle
	if err := json.Unmarshal(jsonc.ToJSON(data), &b); err != nil {
		return nil, errors.Wrapf(err, "parse bundle %s", path)
	}
	if b.Trees == nil {
		return nil, errors.NewUnsupportedSourceFormatError(path, FormatBundle, `object has no "trees" array`)
	}

	model := &Model{Dumps: b.Trees}
	model.Meta.Name = b.Name
	if model.Meta.Name == "" {
		model.Meta.Name = modelName(path)
	}
	model.Meta.Objective = b.Objective
	model.Meta.BaseScore = b.BaseScore
	model.Meta.NumFeature = b.NumFeature
	model.Meta.NumTrees = b.NumTrees
	return model, nil
}
