package dump

import (
	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// Diagnostics are the non-fatal problems found while converting one tree or
// the model as a whole, in the order they were found.
type Diagnostics []error

// Malformed counts the records that failed to parse.
func (d Diagnostics) Malformed() int {
	n := 0
	for _, err := range d {
		var rec *errors.MalformedRecordError
		if errors.As(err, &rec) {
			n++
		}
	}
	return n
}

// Report aggregates the diagnostics of one conversion.
type Report struct {
	Trees []Diagnostics // indexed by boosting round
	Model Diagnostics
}

// Warnings returns every diagnostic, tree by tree, then model-level ones.
func (r *Report) Warnings() []error {
	if r == nil {
		return nil
	}
	var all []error
	for _, d := range r.Trees {
		all = append(all, d...)
	}
	return append(all, r.Model...)
}

// Len returns the number of diagnostics.
func (r *Report) Len() int {
	return len(r.Warnings())
}

// Malformed counts malformed records across all trees.
func (r *Report) Malformed() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, d := range r.Trees {
		n += d.Malformed()
	}
	return n
}
