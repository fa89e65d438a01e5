package dump

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/YuminosukeSato/treeport/pkg/errors"
)

// RootID is the id every tree dump starts from.
const RootID = 0

// Tree represents a single boosting round of the ensemble.
type Tree struct {
	Index int // boosting round, not serialized
	Root  int
	Nodes map[int]Node
}

// Record is a successfully parsed node together with its dump line.
type Record struct {
	Line int
	Node Node
}

// ParseTree tokenizes and parses one tree dump. Malformed records are
// skipped and reported in the returned Diagnostics; a dump without any valid
// record fails with an EmptyTreeError wrapped in a ConversionError.
func ParseTree(index int, text string) (Tree, Diagnostics, error) {
	var records []Record
	var diags Diagnostics
	for line := range Lines(text) {
		node, err := ParseNode(line.Text)
		if err != nil {
			var rec *errors.MalformedRecordError
			if errors.As(err, &rec) {
				rec.Tree, rec.Line = index, line.Number
			}
			diags = append(diags, err)
			continue
		}
		records = append(records, Record{Line: line.Number, Node: node})
	}

	if len(records) == 0 {
		return Tree{}, diags, errors.NewConversionError("ParseTree", index, errors.KindEmptyTree,
			errors.NewEmptyTreeError(index, len(diags)))
	}

	tree, more, err := AssembleTree(index, records)
	return tree, append(diags, more...), err
}

// AssembleTree builds a Tree from parsed records in dump order. A later
// record with an already used id replaces the earlier one. The root is
// RootID; the tree is rejected when that node is absent or is itself the
// child of another node. Children that do not resolve are reported as
// warnings.
func AssembleTree(index int, records []Record) (Tree, Diagnostics, error) {
	if len(records) == 0 {
		return Tree{}, nil, errors.NewConversionError("AssembleTree", index, errors.KindEmptyTree,
			errors.NewEmptyTreeError(index, 0))
	}

	var diags Diagnostics
	nodes := make(map[int]Node, len(records))
	for _, rec := range records {
		if _, dup := nodes[rec.Node.ID]; dup {
			diags = append(diags, &errors.DuplicateNodeWarning{Tree: index, Node: rec.Node.ID, Line: rec.Line})
		}
		nodes[rec.Node.ID] = rec.Node
	}
	tree := Tree{Index: index, Root: RootID, Nodes: nodes}

	if _, ok := nodes[RootID]; !ok {
		return Tree{}, diags, errors.NewConversionError("AssembleTree", index, errors.KindRoot,
			errors.Newf("node %d is absent, smallest id is %d", RootID, tree.IDs()[0]))
	}

	for _, id := range tree.IDs() {
		for _, b := range nodes[id].Branches() {
			if b.Child == RootID {
				return Tree{}, diags, errors.NewConversionError("AssembleTree", index, errors.KindRoot,
					errors.Newf("node %d is referenced as the %s child of node %d", RootID, b.Name, id))
			}
			if _, ok := nodes[b.Child]; !ok {
				diags = append(diags, &errors.DanglingReferenceWarning{Tree: index, Node: id, Branch: b.Name, Child: b.Child})
			}
		}
	}

	return tree, diags, nil
}

// Len returns the number of nodes.
func (t Tree) Len() int {
	return len(t.Nodes)
}

// IDs returns the node ids in ascending order.
func (t Tree) IDs() []int {
	ids := make([]int, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LeafValues returns the leaf outputs in ascending id order.
func (t Tree) LeafValues() []float64 {
	var values []float64
	for _, id := range t.IDs() {
		if n := t.Nodes[id]; n.IsLeaf() {
			values = append(values, n.Value)
		}
	}
	return values
}

// Depth returns the number of edges on the longest path from the root that
// stays inside the tree. Dangling children end a path; cycles are cut.
func (t Tree) Depth() int {
	onPath := make(map[int]bool)
	var walk func(id int) int
	walk = func(id int) int {
		node, ok := t.Nodes[id]
		if !ok || onPath[id] {
			return -1
		}
		onPath[id] = true
		defer delete(onPath, id)

		deepest := 0
		for _, b := range node.Branches() {
			if d := walk(b.Child) + 1; d > deepest {
				deepest = d
			}
		}
		return deepest
	}
	if d := walk(t.Root); d > 0 {
		return d
	}
	return 0
}

// MarshalJSON encodes {"nodes": {"<id>": node...}, "root": id} with node
// keys in ascending numeric order so the output is reproducible.
func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"nodes":{`)
	for i, id := range t.IDs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(id)))
		buf.WriteByte(':')
		data, err := json.Marshal(t.Nodes[id])
		if err != nil {
			return nil, errors.Wrapf(err, "encode node %d", id)
		}
		buf.Write(data)
	}
	buf.WriteString(`},"root":`)
	buf.WriteString(strconv.Itoa(t.Root))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a tree object. Each key must equal its node_id.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes map[string]Node `json:"nodes"`
		Root  *int            `json:"root"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Root == nil {
		return errors.New("tree object requires root")
	}

	nodes := make(map[int]Node, len(raw.Nodes))
	for key, node := range raw.Nodes {
		id, err := parseID(key)
		if err != nil {
			return errors.Wrap(err, "nodes key")
		}
		if id != node.ID {
			return errors.Newf("nodes key %q holds node_id %d", key, node.ID)
		}
		nodes[id] = node
	}
	if _, ok := nodes[*raw.Root]; !ok {
		return errors.Newf("root %d is not a node of the tree", *raw.Root)
	}
	t.Root = *raw.Root
	t.Nodes = nodes
	return nil
}
