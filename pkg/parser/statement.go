package parser

import (
	"strings"
)

// Statement is the parse of one token group. Keyword is empty for expression
// statements and "else if" for an else branch with a condition.
//
// Nodes depend on Keyword:
//
//	fun     the callee, a Variable or an Owner.method member expression
//	struct  the name followed by the types it extends
//	for     init, condition and step, any of which may be nil
//	others  at most one expression
type Statement struct {
	base
	Keyword  string
	Nodes    []Node
	Returns  string
	Generics []string
	Opens    bool
	Closes   bool

	nodes []Node
}

func (s *Statement) String() string {
	var parts []string
	if s.Closes {
		parts = append(parts, "}")
	}

	switch s.Keyword {
	case "":
		for _, n := range s.Nodes {
			parts = append(parts, n.String())
		}
	case "fun":
		header := s.Nodes[0].String()
		if len(s.Generics) > 0 {
			i := strings.IndexByte(header, '(')
			header = header[:i] + "<" + strings.Join(s.Generics, ", ") + ">" + header[i:]
		}
		parts = append(parts, "fun", header)
		if s.Returns != "" {
			parts = append(parts, strings.Join(strings.Fields(s.Returns), ", "))
		}
	case "struct":
		parts = append(parts, "struct", s.Nodes[0].String())
		if len(s.Nodes) > 1 {
			parts[len(parts)-1] += ":"
			var parents []string
			for _, n := range s.Nodes[1:] {
				parents = append(parents, n.String())
			}
			parts = append(parts, strings.Join(parents, ", "))
		}
	case "for":
		slots := make([]string, len(s.Nodes))
		for i, n := range s.Nodes {
			if n != nil {
				slots[i] = n.String()
			}
		}
		parts = append(parts, "for", strings.Join(slots, "; "))
	default:
		parts = append(parts, s.Keyword)
		for _, n := range s.Nodes {
			parts = append(parts, n.String())
		}
	}

	if s.Opens {
		parts = append(parts, "{")
	}

	return strings.Join(parts, " ")
}

// Parent returns the node directly containing n, or nil when n is the
// statement itself or does not belong to it.
func (s *Statement) Parent(n Node) Node {
	b := n.node()
	if b.id <= 0 || b.id >= len(s.nodes) || s.nodes[b.id] != n || b.parent < 0 {
		return nil
	}
	return s.nodes[b.parent]
}

// link numbers every node of the statement and records its parent.
func (s *Statement) link() {
	s.nodes = []Node{s}
	s.id = 0
	s.parent = -1

	var visit func(n Node, parent int)
	visit = func(n Node, parent int) {
		b := n.node()
		b.id = len(s.nodes)
		b.parent = parent
		s.nodes = append(s.nodes, n)
		for _, child := range children(n) {
			visit(child, b.id)
		}
	}

	for _, child := range children(s) {
		visit(child, 0)
	}
}
