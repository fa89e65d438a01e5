// Package dump parses the text dump of a gradient boosted tree ensemble and
// builds the portable JSON document consumed by browser and edge inference
// runtimes.
//
// # Input
//
// Each tree of the ensemble is dumped as one text block, one node per line,
// as produced by XGBoost's Booster.get_dump():
//
//	0:[f0<2.5] yes=1,no=2,missing=1
//		1:leaf=-0.3
//		2:leaf=0.7
//
// Indentation is ignored. Split features written as "f<n>" resolve to the
// column index n; any other token (for example a pandas column name) is kept
// as a feature name. Statistics appended by dump_model(with_stats=True) such
// as gain= and cover= are ignored.
//
// # Pipeline
//
// Lines tokenizes a dump, ParseNode turns one line into a Node, ParseTree and
// AssembleTree build a Tree rooted at node 0, and BuildDocument combines the
// trees in boosting round order with the ensemble metadata. Convert runs the
// whole pipeline, optionally parsing trees in parallel:
//
//	doc, report, err := dump.Convert(dump.Metadata{
//	    Name:       "model.json",
//	    Objective:  "binary:logistic",
//	    NumFeature: 16,
//	}, dumps, dump.Options{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	for _, w := range report.Warnings() {
//	    logger.Warn("conversion warning", log.WarningKey, w)
//	}
//	_, err = doc.WriteTo(out)
//
// # Errors
//
// A line that does not fit the grammar is skipped and reported as a
// MalformedRecordError in the Report. Dangling child references, duplicate
// node ids, feature indexes beyond the declared feature count and a tree
// count differing from the metadata are reported the same way. A tree without
// any valid node, a tree whose node 0 is missing or used as a child, and an
// ensemble without trees abort the conversion with a ConversionError; no
// partial document is produced. Options.Strict makes every warning fatal.
//
// # Output
//
//	{
//	  "name": "model.json",
//	  "objective": "binary:logistic",
//	  "base_score": 0.5,
//	  "num_trees": 1,
//	  "num_feature": 1,
//	  "trees": [{"nodes": {"0": {...}, "1": {...}}, "root": 0}]
//	}
//
// Node keys are written in ascending numeric order, so converting the same
// dump twice yields byte-identical documents.
package dump
