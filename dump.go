package demangle

import (
	"fmt"
	"io"
	"strings"
)

// DumpTree writes an indented one-node-per-line view of the tree to w,
// showing each node's kind and, when present, its text.
func DumpTree(w io.Writer, node *Node) {
	dumpTree(w, node, 0)
}

func dumpTree(w io.Writer, node *Node, indent int) {
	if node == nil {
		return
	}
	prefix := strings.Repeat("  ", indent)
	if node.Text != "" {
		fmt.Fprintf(w, "%s- %s (%s)\n", prefix, node.Kind, node.Text)
	} else {
		fmt.Fprintf(w, "%s- %s\n", prefix, node.Kind)
	}
	for _, child := range node.Children() {
		dumpTree(w, child, indent+1)
	}
}
