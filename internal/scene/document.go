// Package scene models and serializes the target node-tree document: a
// format header, a resource table with first-use ordinal identifiers, and
// the node tree itself.
package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cory-johannsen/mapforge/internal/object"
)

// FormatVersion is the document format this package emits.
const FormatVersion = 3

// Resource is one entry in the document's resource table. IDs start at 1
// and follow first-use order; they are never reassigned once handed out,
// because every node reference names them by ordinal.
type Resource struct {
	ID   int
	Type string
	Path string
}

// ResourceTable assigns and remembers resource identifiers. Append-only.
type ResourceTable struct {
	resources []Resource
	byPath    map[string]int
}

// NewResourceTable returns an empty table.
func NewResourceTable() *ResourceTable {
	return &ResourceTable{byPath: make(map[string]int)}
}

// Ref returns the identifier for path, assigning the next ordinal on first
// use. Repeated calls for the same path always return the first identifier.
func (t *ResourceTable) Ref(path, resourceType string) int {
	if id, ok := t.byPath[path]; ok {
		return id
	}
	id := len(t.resources) + 1
	t.resources = append(t.resources, Resource{ID: id, Type: resourceType, Path: path})
	t.byPath[path] = id
	return id
}

// Resources returns all entries in assignment order. Callers must not
// mutate the returned slice.
func (t *ResourceTable) Resources() []Resource {
	return t.resources
}

// Lookup returns the resource with the given identifier.
func (t *ResourceTable) Lookup(id int) (Resource, bool) {
	if id < 1 || id > len(t.resources) {
		return Resource{}, false
	}
	return t.resources[id-1], true
}

// Len returns the number of declared resources.
func (t *ResourceTable) Len() int { return len(t.resources) }

// Prop is one extra key/value line under a node, emitted in order.
type Prop struct {
	Key   string
	Value string
}

// Node is one node in the emitted tree. Parent is the slash-joined path of
// the parent node, "." for children of the root, empty for the root itself.
// Resource is 0 when the node references no table entry.
type Node struct {
	Name      string
	Type      string
	Parent    string
	Transform *Transform
	Resource  int
	Props     []Prop
}

// Path returns the node's slash-joined tree path.
func (n Node) Path() string {
	switch n.Parent {
	case "":
		return n.Name
	case ".":
		return n.Name
	default:
		return n.Parent + "/" + n.Name
	}
}

// Document is the complete output: resource table plus node tree in
// emission order.
type Document struct {
	FormatVersion int
	Table         *ResourceTable
	Nodes         []Node
}

// ChildrenOf returns the nodes whose parent path is exactly parent.
func (d *Document) ChildrenOf(parent string) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Parent == parent {
			out = append(out, n)
		}
	}
	return out
}

// FindNode returns the first node with the given tree path.
func (d *Document) FindNode(path string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.Path() == path {
			return n, true
		}
	}
	return Node{}, false
}

// Transform is a node placement: a 3x3 rotation basis in row-major order
// plus a position. Serialization must round-trip through ParseTransform.
type Transform struct {
	Basis  [9]float64
	Origin [3]float64
}

// TransformFrom builds a Transform from Euler degrees and a position. The
// basis is composed yaw about Y, then pitch about X, then roll about Z.
func TransformFrom(rot object.Rotation, pos [3]float64) Transform {
	yaw := rot.Yaw * math.Pi / 180
	pitch := rot.Pitch * math.Pi / 180
	roll := rot.Roll * math.Pi / 180

	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cr, sr := math.Cos(roll), math.Sin(roll)

	// R = Ry(yaw) * Rx(pitch) * Rz(roll), row-major.
	return Transform{
		Basis: [9]float64{
			cy*cr + sy*sp*sr, -cy*sr + sy*sp*cr, sy * cp,
			cp * sr, cp * cr, -sp,
			-sy*cr + cy*sp*sr, sy*sr + cy*sp*cr, cy * cp,
		},
		Origin: pos,
	}
}

// String renders the transform in the document form:
// Basis(9 floats) Origin(3 floats).
func (tr Transform) String() string {
	parts := make([]string, 0, 9)
	for _, v := range tr.Basis {
		parts = append(parts, formatFloat(v))
	}
	origin := make([]string, 0, 3)
	for _, v := range tr.Origin {
		origin = append(origin, formatFloat(v))
	}
	return fmt.Sprintf("Basis(%s) Origin(%s)", strings.Join(parts, ", "), strings.Join(origin, ", "))
}

// ParseTransform reads a serialized transform back into its numeric form.
// String followed by ParseTransform reproduces the same values exactly.
//
// Postcondition: returns the parsed Transform or an error describing the
// first malformed component.
func ParseTransform(s string) (Transform, error) {
	var tr Transform
	basis, rest, err := parseGroup(s, "Basis", 9)
	if err != nil {
		return tr, err
	}
	origin, _, err := parseGroup(rest, "Origin", 3)
	if err != nil {
		return tr, err
	}
	copy(tr.Basis[:], basis)
	copy(tr.Origin[:], origin)
	return tr, nil
}

// parseGroup reads `name(f1, ..., fn)` from the front of s and returns the
// floats plus the remainder of the string.
func parseGroup(s, name string, n int) ([]float64, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, name) {
		return nil, "", fmt.Errorf("transform: expected %q group in %q", name, s)
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, name))
	if !strings.HasPrefix(s, "(") {
		return nil, "", fmt.Errorf("transform: %s group missing opening paren", name)
	}
	end := strings.Index(s, ")")
	if end < 0 {
		return nil, "", fmt.Errorf("transform: %s group missing closing paren", name)
	}
	fields := strings.Split(s[1:end], ",")
	if len(fields) != n {
		return nil, "", fmt.Errorf("transform: %s group has %d components, want %d", name, len(fields), n)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, "", fmt.Errorf("transform: %s component %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, s[end+1:], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
