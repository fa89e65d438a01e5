package dump

import (
	"fmt"
	"runtime"

	"github.com/YuminosukeSato/treeport/core/parallel"
	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// Options control a conversion.
type Options struct {
	// Workers is the number of goroutines parsing trees. 0 and 1 parse
	// sequentially, a negative value uses one worker per CPU core.
	Workers int

	// Strict turns any diagnostic into a fatal ConversionError.
	Strict bool
}

// parallelThreshold is the number of trees below which parsing stays sequential.
const parallelThreshold = 8

type treeResult struct {
	tree  Tree
	diags Diagnostics
	err   error
}

// Convert parses one dump per boosting round and builds the document. The
// report is returned even when conversion fails so that callers can show
// what went wrong; the document is nil in that case.
func Convert(meta Metadata, dumps []string, opts Options) (*Document, *Report, error) {
	results := make([]treeResult, len(dumps))
	parallel.ParallelizeWithThreshold(len(dumps), parallelThreshold, opts.workers(), func(start, end int) {
		for i := start; i < end; i++ {
			r := &results[i]
			r.err = errors.SafeExecute(fmt.Sprintf("ParseTree[%d]", i), func() error {
				var err error
				r.tree, r.diags, err = ParseTree(i, dumps[i])
				return err
			})
		}
	})

	report := &Report{Trees: make([]Diagnostics, len(dumps))}
	trees := make([]Tree, len(dumps))
	for i, r := range results {
		report.Trees[i] = r.diags
		if r.err != nil {
			var convErr *errors.ConversionError
			if !errors.As(r.err, &convErr) {
				r.err = errors.NewConversionError("ParseTree", i, errors.KindPanic, r.err)
			}
			return nil, report, r.err
		}
		trees[i] = r.tree
	}

	doc, modelDiags, err := BuildDocument(meta, trees)
	report.Model = modelDiags
	if err != nil {
		return nil, report, err
	}

	if opts.Strict {
		if warnings := report.Warnings(); len(warnings) > 0 {
			return nil, report, errors.NewConversionError("Convert", errors.ModelLevel, errors.KindStrict,
				errors.Wrapf(warnings[0], "%d diagnostics, first", len(warnings)))
		}
	}
	return doc, report, nil
}

func (o Options) workers() int {
	switch {
	case o.Workers < 0:
		return runtime.NumCPU()
	case o.Workers == 0:
		return 1
	default:
		return o.Workers
	}
}
