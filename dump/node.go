package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// Kind represents the type of a tree node
type Kind int

const (
	// Leaf is a terminal node carrying an output contribution
	Leaf Kind = iota
	// Split is an internal node with a feature test and two children
	Split
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Split:
		return "split"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Feature references a model input column either by its generated index
// (dump token "f12") or by a domain feature name ("age").
type Feature struct {
	index int
	name  string
	named bool
}

// FeatureIndex returns a Feature referring to column i.
func FeatureIndex(i int) Feature {
	return Feature{index: i}
}

// FeatureName returns an opaque, named Feature.
func FeatureName(name string) Feature {
	return Feature{name: name, named: true}
}

// ResolveFeature maps a dump feature token to a Feature. Tokens of the form
// "f" followed only by digits resolve to that index; anything else is kept
// as a name.
func ResolveFeature(token string) Feature {
	if isIndexToken(token) {
		if i, err := strconv.Atoi(token[1:]); err == nil {
			return FeatureIndex(i)
		}
	}
	return FeatureName(token)
}

func isIndexToken(token string) bool {
	return len(token) > 1 && token[0] == 'f' && isDigits(token[1:])
}

// Index returns the column index and true for indexed features.
func (f Feature) Index() (int, bool) {
	return f.index, !f.named
}

// Name returns the feature name and true for named features.
func (f Feature) Name() (string, bool) {
	return f.name, f.named
}

// Equal reports whether f and g refer to the same feature.
func (f Feature) Equal(g Feature) bool {
	return f == g
}

func (f Feature) String() string {
	if f.named {
		return f.name
	}
	return "f" + strconv.Itoa(f.index)
}

// MarshalJSON encodes an indexed feature as a number and a named one as a string.
func (f Feature) MarshalJSON() ([]byte, error) {
	if f.named {
		return json.Marshal(f.name)
	}
	return []byte(strconv.Itoa(f.index)), nil
}

// UnmarshalJSON accepts a non-negative integer or a string.
func (f *Feature) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*f = FeatureName(name)
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return errors.Wrapf(err, "feature must be an integer index or a name, got %s", data)
	}
	if i < 0 {
		return errors.Newf("feature index must be non-negative, got %d", i)
	}
	*f = FeatureIndex(i)
	return nil
}

// Node represents a single node of one tree dump.
type Node struct {
	ID   int
	Kind Kind

	// Leaf information
	Value float64

	// Split information. Yes is taken when the feature value is below
	// Threshold, No otherwise. Missing is the default direction for absent
	// values and only set when the dump carried a missing= marker.
	Feature    Feature
	Threshold  float64
	Yes        int
	No         int
	Missing    int
	HasMissing bool
}

// IsLeaf returns true if the node is a leaf node
func (n Node) IsLeaf() bool {
	return n.Kind == Leaf
}

// Branch is one outgoing edge of a split node.
type Branch struct {
	Name  string // "yes", "no" or "missing"
	Child int
}

// Branches returns the outgoing edges of a split node in yes, no, missing
// order. Leaves have none.
func (n Node) Branches() []Branch {
	if n.IsLeaf() {
		return nil
	}
	branches := []Branch{{Name: "yes", Child: n.Yes}, {Name: "no", Child: n.No}}
	if n.HasMissing {
		branches = append(branches, Branch{Name: "missing", Child: n.Missing})
	}
	return branches
}

type leafJSON struct {
	NodeID int     `json:"node_id"`
	Leaf   bool    `json:"leaf"`
	Value  float64 `json:"value"`
}

type splitJSON struct {
	NodeID  int     `json:"node_id"`
	Leaf    bool    `json:"leaf"`
	Feature Feature `json:"feature"`
	Split   float64 `json:"split"`
	Yes     int     `json:"yes"`
	No      int     `json:"no"`
	Missing *int    `json:"missing,omitempty"`
}

// MarshalJSON encodes the node as {node_id, leaf:true, value} or
// {node_id, leaf:false, feature, split, yes, no[, missing]}.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsLeaf() {
		return json.Marshal(leafJSON{NodeID: n.ID, Leaf: true, Value: n.Value})
	}
	out := splitJSON{
		NodeID:  n.ID,
		Feature: n.Feature,
		Split:   n.Threshold,
		Yes:     n.Yes,
		No:      n.No,
	}
	if n.HasMissing {
		missing := n.Missing
		out.Missing = &missing
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node object, requiring the fields of its kind.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		NodeID  *int     `json:"node_id"`
		Leaf    *bool    `json:"leaf"`
		Value   *float64 `json:"value"`
		Feature *Feature `json:"feature"`
		Split   *float64 `json:"split"`
		Yes     *int     `json:"yes"`
		No      *int     `json:"no"`
		Missing *int     `json:"missing"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.NodeID == nil || raw.Leaf == nil {
		return errors.New("node object requires node_id and leaf")
	}

	if *raw.Leaf {
		if raw.Value == nil {
			return errors.Newf("leaf node %d has no value", *raw.NodeID)
		}
		*n = Node{ID: *raw.NodeID, Kind: Leaf, Value: *raw.Value}
		return nil
	}

	var missing []string
	if raw.Feature == nil {
		missing = append(missing, "feature")
	}
	if raw.Split == nil {
		missing = append(missing, "split")
	}
	if raw.Yes == nil {
		missing = append(missing, "yes")
	}
	if raw.No == nil {
		missing = append(missing, "no")
	}
	if len(missing) > 0 {
		return errors.Newf("split node %d is missing %s", *raw.NodeID, strings.Join(missing, ", "))
	}
	*n = Node{
		ID:        *raw.NodeID,
		Kind:      Split,
		Feature:   *raw.Feature,
		Threshold: *raw.Split,
		Yes:       *raw.Yes,
		No:        *raw.No,
	}
	if raw.Missing != nil {
		n.Missing = *raw.Missing
		n.HasMissing = true
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
