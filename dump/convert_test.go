package dump

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

func generateDumps(n int) []string {
	dumps := make([]string, n)
	for i := range dumps {
		dumps[i] = fmt.Sprintf("0:[f%d<%d.5] yes=1,no=2,missing=1\n\t1:leaf=%d.25\n\t2:leaf=-%d.75\n", i%7, i, i, i)
	}
	return dumps
}

// dumpsFailingAt returns n valid dumps with an empty tree at empty and a
// rootless tree at rootless.
func dumpsFailingAt(n, empty, rootless int) []string {
	dumps := generateDumps(n)
	dumps[empty] = ""
	dumps[rootless] = "1:leaf=1"
	return dumps
}

func TestConvertExample(t *testing.T) {
	doc, report, err := Convert(Metadata{Name: "model.json"}, []string{exampleDump}, Options{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if report.Len() != 0 {
		t.Errorf("unexpected warnings: %v", report.Warnings())
	}
	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if diff := cmp.Diff(exampleDocument, string(data)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertParallelMatchesSequential(t *testing.T) {
	dumps := generateDumps(64)

	seq, _, err := Convert(Metadata{}, dumps, Options{Workers: 1})
	if err != nil {
		t.Fatalf("sequential Convert error: %v", err)
	}
	for _, workers := range []int{2, 8, -1} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			par, _, err := Convert(Metadata{}, dumps, Options{Workers: workers})
			if err != nil {
				t.Fatalf("Convert error: %v", err)
			}
			if diff := cmp.Diff(seq, par); diff != "" {
				t.Errorf("parallel result differs (-seq +par):\n%s", diff)
			}
			for i, tree := range par.Trees {
				if tree.Index != i {
					t.Errorf("tree %d has index %d", i, tree.Index)
				}
			}
		})
	}
}

func TestConvertCollectsWarnings(t *testing.T) {
	dumps := []string{
		exampleDump,
		"0:[f1<1] yes=1 no=2\n1:leaf=0.5\nnot a node\n",
	}
	doc, report, err := Convert(Metadata{NumFeature: 2}, dumps, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if doc.NumTrees != 2 {
		t.Errorf("NumTrees = %d, want 2", doc.NumTrees)
	}
	if len(report.Trees[0]) != 0 {
		t.Errorf("tree 0 diagnostics = %v", report.Trees[0])
	}
	if report.Malformed() != 1 || report.Len() != 2 {
		t.Errorf("report = %v, want one malformed record and one dangling child", report.Warnings())
	}
}

func TestConvertStrict(t *testing.T) {
	dumps := []string{"0:[f0<1] yes=1 no=2\n1:leaf=0.5\n"}

	_, report, err := Convert(Metadata{}, dumps, Options{Strict: true})
	var convErr *errors.ConversionError
	if !errors.As(err, &convErr) || convErr.Kind != errors.KindStrict {
		t.Fatalf("error = %v, want strict ConversionError", err)
	}
	var dangling *errors.DanglingReferenceWarning
	if !errors.As(err, &dangling) || dangling.Child != 2 {
		t.Errorf("strict error does not wrap the dangling reference: %v", err)
	}
	if report.Len() != 1 {
		t.Errorf("report = %v, want the warning kept", report.Warnings())
	}

	if _, _, err := Convert(Metadata{}, []string{exampleDump}, Options{Strict: true}); err != nil {
		t.Errorf("clean dump failed in strict mode: %v", err)
	}
}

func TestConvertFailures(t *testing.T) {
	tests := []struct {
		name  string
		dumps []string
		tree  int
		kind  string
	}{
		{name: "no dumps", tree: errors.ModelLevel, kind: errors.KindEmptyModel},
		{name: "empty tree", dumps: []string{exampleDump, "  \n", exampleDump}, tree: 1, kind: errors.KindEmptyTree},
		{name: "missing root", dumps: []string{"1:leaf=0.5"}, tree: 0, kind: errors.KindRoot},
		{name: "first failing tree wins", dumps: []string{exampleDump, "", "1:leaf=1"}, tree: 1, kind: errors.KindEmptyTree},
		{name: "first failing tree wins in parallel", dumps: dumpsFailingAt(40, 5, 30), tree: 5, kind: errors.KindEmptyTree},
		{name: "later failure kind ignored", dumps: dumpsFailingAt(40, 30, 5), tree: 5, kind: errors.KindRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, report, err := Convert(Metadata{}, tt.dumps, Options{Workers: 4})
			if doc != nil {
				t.Errorf("partial document returned: %+v", doc)
			}
			if report == nil {
				t.Fatal("report is nil on failure")
			}
			var convErr *errors.ConversionError
			if !errors.As(err, &convErr) {
				t.Fatalf("error = %v, want ConversionError", err)
			}
			if convErr.Kind != tt.kind || convErr.Tree != tt.tree {
				t.Errorf("got kind %q tree %d, want kind %q tree %d", convErr.Kind, convErr.Tree, tt.kind, tt.tree)
			}
		})
	}
}
