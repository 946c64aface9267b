package scene

import (
	"fmt"
	"strings"
)

// Emit serializes the document to the text format. Sections appear in
// declaration order: the scene header, one res section per table entry,
// then one node section per tree node.
func Emit(doc *Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[scene format=%d steps=%d]\n\n", doc.FormatVersion, doc.Table.Len())

	for _, r := range doc.Table.Resources() {
		fmt.Fprintf(&b, "[res id=%d type=%q path=%q]\n", r.ID, r.Type, r.Path)
	}
	if doc.Table.Len() > 0 {
		b.WriteString("\n")
	}

	for i, n := range doc.Nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(emitNode(n))
	}
	return b.String()
}

func emitNode(n Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[node name=%q type=%q", n.Name, n.Type)
	if n.Parent != "" {
		fmt.Fprintf(&b, " parent=%q", n.Parent)
	}
	b.WriteString("]\n")
	if n.Transform != nil {
		fmt.Fprintf(&b, "transform = %s\n", n.Transform.String())
	}
	if n.Resource != 0 {
		fmt.Fprintf(&b, "resource = Res(%d)\n", n.Resource)
	}
	for _, p := range n.Props {
		fmt.Fprintf(&b, "%s = %s\n", p.Key, p.Value)
	}
	return b.String()
}
