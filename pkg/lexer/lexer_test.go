package lexer_test

import (
	"errors"
	"testing"

	"github.com/rhino1998/tern/pkg/lexer"
	"github.com/stretchr/testify/require"
)

type tok struct {
	Kind lexer.Kind
	Text string
}

func flatten(groups [][]lexer.Token) [][]tok {
	out := make([][]tok, 0, len(groups))
	for _, group := range groups {
		var toks []tok
		for _, t := range group {
			toks = append(toks, tok{t.Kind, t.Text})
		}
		out = append(out, toks)
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		groups [][]tok
	}{
		{
			name: "declaration",
			src:  "var num1, num2: u8 = 12, 45",
			groups: [][]tok{{
				{lexer.Keyword, "var"},
				{lexer.Ident, "num1"},
				{lexer.Punct, ","},
				{lexer.Ident, "num2"},
				{lexer.Punct, ":"},
				{lexer.Keyword, "u8"},
				{lexer.Operator, "="},
				{lexer.Int, "12"},
				{lexer.Punct, ","},
				{lexer.Int, "45"},
				{lexer.EOF, ""},
			}},
		},
		{
			name: "maximal munch",
			src:  "a**=b<<=c...d",
			groups: [][]tok{{
				{lexer.Ident, "a"},
				{lexer.Operator, "**"},
				{lexer.Operator, "="},
				{lexer.Ident, "b"},
				{lexer.Operator, "<<"},
				{lexer.Operator, "="},
				{lexer.Ident, "c"},
				{lexer.Operator, "..."},
				{lexer.Ident, "d"},
				{lexer.EOF, ""},
			}},
		},
		{
			name: "numbers",
			src:  "1 2.5 3f 4.5f 6i 7.5if #ff #o17",
			groups: [][]tok{{
				{lexer.Int, "1"},
				{lexer.Float, "2.5"},
				{lexer.Float, "3f"},
				{lexer.Float, "4.5f"},
				{lexer.Imaginary, "6i"},
				{lexer.Imaginary, "7.5if"},
				{lexer.Int, "#ff"},
				{lexer.Int, "#o17"},
				{lexer.EOF, ""},
			}},
		},
		{
			name: "member access on integer",
			src:  "1.len",
			groups: [][]tok{{
				{lexer.Int, "1"},
				{lexer.Operator, "."},
				{lexer.Ident, "len"},
				{lexer.EOF, ""},
			}},
		},
		{
			name: "literals and comments",
			src:  `print('a', "b\"c") // done`,
			groups: [][]tok{{
				{lexer.Ident, "print"},
				{lexer.Punct, "("},
				{lexer.Char, "'a'"},
				{lexer.Punct, ","},
				{lexer.String, `"b\"c"`},
				{lexer.Punct, ")"},
				{lexer.Comment, "// done"},
				{lexer.EOF, ""},
			}},
		},
		{
			name: "unterminated string",
			src:  "x = \"abc\ny",
			groups: [][]tok{
				{{lexer.Ident, "x"}, {lexer.Operator, "="}, {lexer.Unknown, `"abc`}},
				{{lexer.Ident, "y"}, {lexer.EOF, ""}},
			},
		},
		{
			name: "groups",
			src:  "main {\n\n  a = 1\n}\n",
			groups: [][]tok{
				{{lexer.Keyword, "main"}, {lexer.Punct, "{"}},
				{{lexer.Ident, "a"}, {lexer.Operator, "="}, {lexer.Int, "1"}},
				{{lexer.Punct, "}"}},
				{{lexer.EOF, ""}},
			},
		},
		{
			name: "open parens continue the group",
			src:  "f(a,\n  b)\ng",
			groups: [][]tok{
				{
					{lexer.Ident, "f"},
					{lexer.Punct, "("},
					{lexer.Ident, "a"},
					{lexer.Punct, ","},
					{lexer.Ident, "b"},
					{lexer.Punct, ")"},
				},
				{{lexer.Ident, "g"}, {lexer.EOF, ""}},
			},
		},
		{
			name: "block comment spans lines",
			src:  "a /* one\ntwo */ b",
			groups: [][]tok{{
				{lexer.Ident, "a"},
				{lexer.Comment, "/* one\ntwo */"},
				{lexer.Ident, "b"},
				{lexer.EOF, ""},
			}},
		},
		{
			name:   "empty",
			src:    "",
			groups: [][]tok{{{lexer.EOF, ""}}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := require.New(t)

			groups, err := lexer.Lex(test.src, "test.tn")
			r.NoError(err)
			r.Equal(test.groups, flatten(groups))
		})
	}
}

func TestLex_Positions(t *testing.T) {
	r := require.New(t)

	groups, err := lexer.Lex("main {\n\tx += 1\n}", "pos.tn")
	r.NoError(err)
	r.Len(groups, 3)

	x := groups[1][0]
	r.Equal("x", x.Text)
	r.Equal(lexer.Position{File: "pos.tn", Line: 2, Column: 2}, x.Pos)
	r.Equal("pos.tn:2:4", groups[1][1].Pos.String())

	eof := groups[2][1]
	r.Equal(lexer.EOF, eof.Kind)
	r.Equal(3, eof.Pos.Line)
	r.Equal(2, eof.Pos.Column)
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		err    error
		line   int
		column int
	}{
		{"bare hash", "#", lexer.ErrMalformedLiteral, 1, 2},
		{"octal without digits", "x = #o", lexer.ErrMalformedLiteral, 1, 7},
		{"octal with decimal digit", "#o19", lexer.ErrMalformedLiteral, 1, 4},
		{"hex with trailing letter", "#fg", lexer.ErrMalformedLiteral, 1, 3},
		{"glued identifier", "y = 12abc", lexer.ErrMalformedLiteral, 1, 7},
		{"two fractions", "1.2.3", lexer.ErrMalformedLiteral, 1, 4},
		{"unknown character", "a\nb @ c", lexer.ErrUnknownCharacter, 2, 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := require.New(t)

			_, err := lexer.Lex(test.src, "bad.tn")
			r.ErrorIs(err, test.err)

			var lexErr *lexer.Error
			r.True(errors.As(err, &lexErr))
			r.Equal(test.line, lexErr.Pos.Line)
			r.Equal(test.column, lexErr.Pos.Column)
		})
	}
}

func TestError_Excerpt(t *testing.T) {
	r := require.New(t)

	_, err := lexer.Lex("var x = 12abc + 1", "bad.tn")
	var lexErr *lexer.Error
	r.True(errors.As(err, &lexErr))
	r.Equal("var x = 12abc + 1\n          ^^^", lexErr.Excerpt())
	r.Contains(err.Error(), "bad.tn:1:11")
}

func TestToken_Is(t *testing.T) {
	r := require.New(t)

	tok := lexer.Token{Kind: lexer.Punct, Text: "{"}
	r.True(tok.Is(lexer.Punct))
	r.True(tok.Is(lexer.Punct, "(", "{"))
	r.False(tok.Is(lexer.Punct, "}"))
	r.False(tok.Is(lexer.Operator))

	r.True(lexer.IsKeyword("c128"))
	r.True(lexer.IsKeyword("nullptr"))
	r.False(lexer.IsKeyword("type"))
}
