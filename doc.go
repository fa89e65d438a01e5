// Package treeport converts the text dump of a trained XGBoost ensemble into
// a portable JSON document that a browser or edge runtime can evaluate
// without the training library.
//
// # Features
//
//   - Parses Booster.get_dump() and dump_model() text, with or without
//     statistics, bracketed or plain split conditions and missing= branches
//   - Reports malformed lines, dangling children and duplicate nodes as
//     structured warnings instead of dropping them
//   - Deterministic output: the same dump always yields the same bytes
//   - Parallel per-tree parsing for large ensembles
//   - Model statistics and an optional leaf value histogram
//
// # Installation
//
//	go install github.com/YuminosukeSato/treeport/cmd/treeport@latest
//
// # Quick Start
//
// Dump the booster from Python:
//
//	booster.dump_model("model.dump")
//
// Convert it:
//
//	treeport convert model.dump -o public/models/web_xgboost_model.json
//
// Or from Go:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/YuminosukeSato/treeport/convert"
//	)
//
//	func main() {
//	    cfg := convert.DefaultConfig()
//	    cfg.ModelPath = "model.dump"
//	    if _, err := convert.Run(context.Background(), cfg, nil); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Packages
//
//   - dump: dump tokenizer, node parser, tree assembler and document builder
//   - source: model file loaders (dump text, JSON bundle)
//   - convert: configuration and the load, convert, write pipeline
//   - report: model statistics and leaf value histogram
//   - core/parallel: parallel processing utilities
//   - pkg/errors: structured errors and warnings
//   - pkg/log: structured logging with slog and zerolog backends
//
// # Output
//
// The document lists the ensemble metadata and every tree in boosting round
// order. A runtime evaluates a row by walking each tree from its root, taking
// yes when the feature value is below split, and summing the leaf values with
// base_score:
//
//	{
//	  "name": "model.dump",
//	  "objective": "binary:logistic",
//	  "base_score": 0.5,
//	  "num_trees": 100,
//	  "num_feature": 16,
//	  "trees": [{"nodes": {"0": {"node_id": 0, "leaf": false, ...}}, "root": 0}]
//	}
package treeport
