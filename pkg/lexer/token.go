package lexer

import (
	"fmt"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
)

type Kind int

const (
	EOF Kind = iota
	Unknown
	Int
	Float
	Imaginary
	Char
	String
	Ident
	Keyword
	Operator
	Punct
	Comment
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Unknown:
		return "Unknown"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Imaginary:
		return "Imaginary"
	case Char:
		return "Char"
	case String:
		return "String"
	case Ident:
		return "Ident"
	case Keyword:
		return "Keyword"
	case Operator:
		return "Operator"
	case Punct:
		return "Punct"
	case Comment:
		return "Comment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("end of statement at %s", t.Pos)
	}
	return fmt.Sprintf("%s %q at %s", t.Kind, t.Text, t.Pos)
}

// Is reports whether the token has the given kind and, when any texts are
// given, one of those texts.
func (t Token) Is(kind Kind, texts ...string) bool {
	if t.Kind != kind {
		return false
	}
	if len(texts) == 0 {
		return true
	}
	for _, text := range texts {
		if t.Text == text {
			return true
		}
	}
	return false
}

var keywords = map[string]struct{}{
	"main":     {},
	"fun":      {},
	"struct":   {},
	"var":      {},
	"let":      {},
	"const":    {},
	"if":       {},
	"else":     {},
	"while":    {},
	"for":      {},
	"return":   {},
	"break":    {},
	"continue": {},
	"true":     {},
	"false":    {},
	"nullptr":  {},
}

// IsKeyword reports whether a word is reserved. Built-in type names are
// reserved along with the statement keywords.
func IsKeyword(word string) bool {
	if _, ok := keywords[word]; ok {
		return true
	}
	return kinds.IsBuiltin(word)
}

// operators are matched longest first.
var operators = [][]string{
	{"..."},
	{"**", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||", "++", "--", "+=", "-=", "*=", "/=", "%="},
	{"+", "-", "*", "/", "%", "<", ">", "=", "!", "~", "&", "|", "^", "."},
}

var punctuation = map[byte]struct{}{
	'(': {},
	')': {},
	'[': {},
	']': {},
	'{': {},
	'}': {},
	',': {},
	':': {},
	';': {},
}
