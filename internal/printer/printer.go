// Package printer implements the human-readable type tree dump
// (component C7): declared types reachable from the root first, then
// the main tree, used by tooling and tests.
package printer

import (
	"fmt"
	"io"

	"github.com/celix-project/dynitype/internal/typetree"
)

// Print writes a deterministic, indented dump of root to w: first the
// declared Complex/Simple types reachable from root, then the main
// type tree. A node already emitted as a declared type is not
// re-descended into when encountered again, since References are
// followed only for lookup, never for printing descent.
func Print(w io.Writer, root *typetree.Node) error {
	seen := map[*typetree.Node]bool{}

	declared := collectDeclared(root, map[*typetree.Node]bool{})
	for _, d := range declared {
		if seen[d] {
			continue
		}
		if _, err := fmt.Fprintf(w, "declared %s:\n", d.Name); err != nil {
			return err
		}
		if err := printAny(w, d, 1, seen); err != nil {
			return err
		}
		seen[d] = true
	}

	if _, err := fmt.Fprintln(w, "type:"); err != nil {
		return err
	}
	return printAny(w, root, 1, seen)
}

// collectDeclared walks the nested-declaration tables reachable from n
// and returns every declared Complex or Simple node, in a stable
// depth-first order.
func collectDeclared(n *typetree.Node, visited map[*typetree.Node]bool) []*typetree.Node {
	if n == nil || visited[n] {
		return nil
	}
	visited[n] = true

	var out []*typetree.Node
	for _, name := range n.NestedNames() {
		child := n.NestedLookup(name)
		if child == nil {
			continue
		}
		if child.Kind == typetree.KindComplex || child.Kind == typetree.KindSimple {
			out = append(out, child)
		}
		out = append(out, collectDeclared(child, visited)...)
	}

	switch n.Kind {
	case typetree.KindComplex:
		for _, f := range n.Fields {
			out = append(out, collectDeclared(f.Type, visited)...)
		}
	case typetree.KindSequence:
		out = append(out, collectDeclared(n.Elem, visited)...)
	case typetree.KindTypedPointer:
		out = append(out, collectDeclared(n.Target, visited)...)
	}
	return out
}

func printAny(w io.Writer, n *typetree.Node, depth int, seen map[*typetree.Node]bool) error {
	indent := indentOf(depth)
	s := typetree.Strip(n)
	if s == nil {
		_, err := fmt.Fprintf(w, "%s<nil>\n", indent)
		return err
	}

	label := s.Name
	if label == "" {
		label = "<anon>"
	}

	switch s.Kind {
	case typetree.KindSimple:
		_, err := fmt.Fprintf(w, "%s%s: simple descriptor=%q size=%d align=%d\n",
			indent, label, s.Descriptor, s.Size, s.Align)
		return err

	case typetree.KindText:
		_, err := fmt.Fprintf(w, "%s%s: text size=%d align=%d\n", indent, label, s.Size, s.Align)
		return err

	case typetree.KindComplex:
		if seen[s] {
			_, err := fmt.Fprintf(w, "%s%s: complex (see declared above)\n", indent, label)
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s: complex size=%d align=%d\n", indent, label, s.Size, s.Align); err != nil {
			return err
		}
		for i, f := range s.Fields {
			if _, err := fmt.Fprintf(w, "%s  field[%d] %s (offset=%d):\n", indent, i, f.Name, s.Offsets[i]); err != nil {
				return err
			}
			if err := printAny(w, f.Type, depth+2, seen); err != nil {
				return err
			}
		}
		return nil

	case typetree.KindSequence:
		if _, err := fmt.Fprintf(w, "%s%s: sequence size=%d align=%d (header={cap,len,buf})\n",
			indent, label, s.Size, s.Align); err != nil {
			return err
		}
		return printAny(w, s.Elem, depth+1, seen)

	case typetree.KindTypedPointer:
		target := typetree.Strip(s.Target)
		name := "<anon>"
		if target != nil {
			name = target.Name
			if name == "" {
				name = "<anon>"
			}
		}
		if _, err := fmt.Fprintf(w, "%s%s: *%s size=%d align=%d\n", indent, label, name, s.Size, s.Align); err != nil {
			return err
		}
		return printAny(w, s.Target, depth+1, seen)

	default:
		_, err := fmt.Fprintf(w, "%s%s: %s\n", indent, label, s.Kind)
		return err
	}
}

func indentOf(depth int) string {
	out := make([]byte, depth*2)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}
