package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewMalformedRecordError(t *testing.T) {
	err := NewMalformedRecordError("3:leaf=abc", "invalid leaf value")

	want := `treeport: malformed record "3:leaf=abc": invalid leaf value`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// MalformedRecordError型にキャスト可能か確認
	var recErr *MalformedRecordError
	if !As(err, &recErr) {
		t.Fatal("Error should be castable to *MalformedRecordError")
	}
	if recErr.Tree != ModelLevel {
		t.Errorf("Tree = %d, want %d before assembly", recErr.Tree, ModelLevel)
	}

	// 組み立て時に位置情報が埋められる
	recErr.Tree, recErr.Line = 4, 7
	want = `treeport: tree 4 line 7: malformed record "3:leaf=abc": invalid leaf value`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewEmptyTreeError(t *testing.T) {
	err := NewEmptyTreeError(2, 3)

	want := "treeport: tree 2 has no valid nodes (3 malformed records)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !IsEmptyTree(err) {
		t.Error("IsEmptyTree should report true")
	}

	wrapped := NewConversionError("ParseTree", 2, KindEmptyTree, err)
	if !IsEmptyTree(wrapped) {
		t.Error("IsEmptyTree should see through ConversionError")
	}
	if IsEmptyTree(New("other")) {
		t.Error("IsEmptyTree should be false for unrelated errors")
	}
}

func TestNewConversionError(t *testing.T) {
	tests := []struct {
		name    string
		tree    int
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "tree level with cause",
			tree:    1,
			kind:    KindRoot,
			err:     fmt.Errorf("node 0 missing"),
			wantMsg: "treeport: AssembleTree: tree 1: invalid root: node 0 missing",
		},
		{
			name:    "model level without cause",
			tree:    ModelLevel,
			kind:    KindEmptyModel,
			wantMsg: "treeport: AssembleTree: model: empty model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConversionError("AssembleTree", tt.tree, tt.kind, tt.err)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var convErr *ConversionError
			if !As(err, &convErr) {
				t.Fatal("Error should be castable to *ConversionError")
			}
			if convErr.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", convErr.Kind, tt.kind)
			}
			if tt.err != nil && !Is(err, tt.err) {
				t.Error("cause should be reachable with Is")
			}
		})
	}
}

func TestNewUnsupportedSourceFormatError(t *testing.T) {
	err := NewUnsupportedSourceFormatError("model.pkl", "pickle", "requires the training library")
	want := `treeport: model.pkl: unsupported source format "pickle": requires the training library`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !IsUnsupportedSourceFormat(Wrap(err, "resolve")) {
		t.Error("IsUnsupportedSourceFormat should see through Wrap")
	}

	noFormat := NewUnsupportedSourceFormatError("x", "", "unrecognized content")
	if !strings.Contains(noFormat.Error(), "unsupported source format: unrecognized content") {
		t.Errorf("unexpected message %q", noFormat.Error())
	}
}

func TestWarningMessages(t *testing.T) {
	tests := []struct {
		name string
		warn error
		want string
	}{
		{
			name: "dangling",
			warn: &DanglingReferenceWarning{Tree: 0, Node: 2, Branch: "no", Child: 9},
			want: "tree 0: node 2 references missing no child 9",
		},
		{
			name: "duplicate",
			warn: &DuplicateNodeWarning{Tree: 1, Node: 3, Line: 5},
			want: "tree 1 line 5: node 3 redefined, earlier definition overwritten",
		},
		{
			name: "feature range",
			warn: &FeatureOutOfRangeWarning{Tree: 0, Node: 0, Feature: 12, NumFeature: 4},
			want: "tree 0: node 0 splits on feature 12 but the model declares 4 features",
		},
		{
			name: "tree count",
			warn: &TreeCountMismatchWarning{Declared: 10, Dumped: 9},
			want: "model declares 10 trees but 9 tree dumps were supplied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.warn.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", tt.warn.Error(), tt.want)
			}
		})
	}
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Warn().Object("warning", &DanglingReferenceWarning{Tree: 3, Node: 1, Branch: "yes", Child: 7}).Msg("dangling")

	out := buf.String()
	for _, want := range []string{`"tree":3`, `"branch":"yes"`, `"child":7`, `"type":"DanglingReference"`} {
		if !strings.Contains(out, want) {
			t.Errorf("zerolog output %s missing %s", out, want)
		}
	}
}

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("leaf value", 0.25); err != nil {
		t.Errorf("finite value rejected: %v", err)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := CheckScalar("threshold", v)
		var numErr *NumericalInstabilityError
		if !As(err, &numErr) {
			t.Errorf("CheckScalar(%v) = %v, want NumericalInstabilityError", v, err)
		}
	}
}

func TestWrapf(t *testing.T) {
	baseErr := New("unexpected EOF")

	wrapped := Wrapf(baseErr, "reading tree %d", 3)

	if !Is(wrapped, baseErr) {
		t.Error("Expected Is(wrapped, baseErr) to be true")
	}
	if !strings.Contains(wrapped.Error(), "reading tree 3") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
}
