package parser

import (
	"strings"

	"github.com/rhino1998/tern/pkg/compiler/operators"
	"github.com/rhino1998/tern/pkg/lexer"
)

// Node is implemented by every syntax tree variant in this package.
type Node interface {
	String() string
	Position() lexer.Position
	node() *base
}

type base struct {
	pos    lexer.Position
	id     int
	parent int
}

func (b *base) node() *base {
	return b
}

func (b *base) Position() lexer.Position {
	return b.pos
}

type BinaryExpression struct {
	base
	Operator operators.Operator
	Left     Node
	Right    Node
}

func (e *BinaryExpression) String() string {
	switch e.Operator {
	case operators.Member:
		return e.Left.String() + "." + e.Right.String()
	case operators.Comma, operators.Colon:
		return e.Left.String() + string(e.Operator) + " " + e.Right.String()
	default:
		return e.Left.String() + " " + string(e.Operator) + " " + e.Right.String()
	}
}

type UnaryExpression struct {
	base
	Operator operators.Operator
	Operand  Node
	Postfix  bool
}

func (e *UnaryExpression) String() string {
	switch {
	case e.Postfix:
		return e.Operand.String() + string(e.Operator)
	case e.Operator.IsDeclaration():
		return string(e.Operator) + " " + e.Operand.String()
	default:
		return string(e.Operator) + e.Operand.String()
	}
}

type NumberKind int

const (
	Integer NumberKind = iota
	Float32
	Float64
	Imaginary64
	Imaginary128
)

// NumberLiteral holds a converted numeric literal. Integers use Int and every
// other kind uses Float. Imaginary literals hold their imaginary part.
type NumberLiteral struct {
	base
	Kind  NumberKind
	Text  string
	Int   int32
	Float float64
}

func (l *NumberLiteral) String() string {
	return l.Text
}

type BooleanLiteral struct {
	base
	Value bool
}

func (l *BooleanLiteral) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}

// CharLiteral and StringLiteral keep their quotes and escapes as written.
type CharLiteral struct {
	base
	Text string
}

func (l *CharLiteral) String() string {
	return l.Text
}

type StringLiteral struct {
	base
	Text string
}

func (l *StringLiteral) String() string {
	return l.Text
}

type Nullptr struct {
	base
}

func (*Nullptr) String() string {
	return "nullptr"
}

type Variable struct {
	base
	Name  string
	Call  bool
	Args  []Node
	Index *Index
}

func (v *Variable) String() string {
	var b strings.Builder
	b.WriteString(v.Name)
	if v.Call {
		writeArgs(&b, v.Args)
	}
	if v.Index != nil {
		b.WriteString(v.Index.String())
	}
	return b.String()
}

// Type is a built-in type name in value position, a conversion call, or a
// parameter or return type of a function header.
type Type struct {
	base
	Name     string
	Index    *Index
	Call     bool
	Args     []Node
	Variadic bool
}

func (t *Type) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if t.Index != nil {
		b.WriteString(t.Index.String())
	}
	if t.Call {
		writeArgs(&b, t.Args)
	}
	if t.Variadic {
		b.WriteString("...")
	}
	return b.String()
}

// Index is one bracket of an index chain. A nil Expr is an empty bracket. The
// last link of a chain may carry an array literal.
type Index struct {
	base
	Expr  Node
	Next  *Index
	Array *Array
}

func (i *Index) String() string {
	var b strings.Builder
	for cur := i; cur != nil; cur = cur.Next {
		b.WriteByte('[')
		if cur.Expr != nil {
			b.WriteString(cur.Expr.String())
		}
		b.WriteByte(']')
		if cur.Array != nil {
			b.WriteString(cur.Array.String())
		}
	}
	return b.String()
}

// Last returns the final link of the chain.
func (i *Index) Last() *Index {
	cur := i
	for cur.Next != nil {
		cur = cur.Next
	}
	return cur
}

type Array struct {
	base
	Elements []Node
}

func (a *Array) String() string {
	elems := make([]string, 0, len(a.Elements))
	for _, elem := range a.Elements {
		elems = append(elems, elem.String())
	}
	return "{" + strings.Join(elems, ", ") + "}"
}

func writeArgs(b *strings.Builder, args []Node) {
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
}

// children returns the direct children of a node in source order.
func children(n Node) []Node {
	var out []Node
	switch n := n.(type) {
	case *Statement:
		for _, child := range n.Nodes {
			if child != nil {
				out = append(out, child)
			}
		}
	case *BinaryExpression:
		out = append(out, n.Left, n.Right)
	case *UnaryExpression:
		out = append(out, n.Operand)
	case *Variable:
		out = append(out, n.Args...)
		if n.Index != nil {
			out = append(out, n.Index)
		}
	case *Type:
		if n.Index != nil {
			out = append(out, n.Index)
		}
		out = append(out, n.Args...)
	case *Index:
		if n.Expr != nil {
			out = append(out, n.Expr)
		}
		if n.Array != nil {
			out = append(out, n.Array)
		}
		if n.Next != nil {
			out = append(out, n.Next)
		}
	case *Array:
		out = append(out, n.Elements...)
	}
	return out
}
