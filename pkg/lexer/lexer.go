package lexer

import (
	"fmt"
	"strings"
)

type lexer struct {
	src  string
	file string

	pos       int
	line      int
	col       int
	lineStart int

	depth  int
	group  []Token
	groups [][]Token
}

// Lex splits source into statement groups. A newline ends a group unless a
// parenthesis or bracket is still open. Empty groups are dropped and the last
// group always ends with an EOF token.
func Lex(src, filename string) ([][]Token, error) {
	l := &lexer{
		src:  src,
		file: filename,
		line: 1,
		col:  1,
	}

	for !l.done() {
		if err := l.next(); err != nil {
			return nil, err
		}
	}

	l.group = append(l.group, Token{Kind: EOF, Pos: l.position()})
	l.groups = append(l.groups, l.group)

	return l.groups, nil
}

func (l *lexer) done() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) peek() byte {
	return l.peekAt(0)
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
		l.lineStart = l.pos + 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

func (l *lexer) position() Position {
	return Position{File: l.file, Line: l.line, Column: l.col}
}

func (l *lexer) emit(kind Kind, start int, pos Position) {
	l.group = append(l.group, Token{Kind: kind, Text: l.src[start:l.pos], Pos: pos})
}

func (l *lexer) flush() {
	if len(l.group) > 0 {
		l.groups = append(l.groups, l.group)
		l.group = nil
	}
}

func (l *lexer) currentLine() string {
	end := strings.IndexByte(l.src[l.lineStart:], '\n')
	if end < 0 {
		return l.src[l.lineStart:]
	}
	return l.src[l.lineStart : l.lineStart+end]
}

func (l *lexer) errorf(pos Position, width int, err error, format string, args ...any) error {
	return &Error{
		Pos:    pos,
		Width:  width,
		Line:   l.currentLine(),
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

func (l *lexer) next() error {
	c := l.peek()
	switch {
	case c == '\n':
		l.advance()
		if l.depth == 0 {
			l.flush()
		}
	case c == ' ' || c == '\t' || c == '\r':
		l.advance()
	case isLetter(c):
		l.word()
	case isDecimal(c):
		return l.number()
	case c == '#':
		return l.radix()
	case c == '\'':
		l.quoted('\'', Char)
	case c == '"':
		l.quoted('"', String)
	case c == '/' && (l.peekAt(1) == '/' || l.peekAt(1) == '*'):
		l.comment()
	default:
		return l.symbol()
	}
	return nil
}

func (l *lexer) word() {
	start, pos := l.pos, l.position()
	for isIdentChar(l.peek()) {
		l.advance()
	}
	kind := Ident
	if IsKeyword(l.src[start:l.pos]) {
		kind = Keyword
	}
	l.emit(kind, start, pos)
}

func (l *lexer) digits(accept func(byte) bool) {
	for accept(l.peek()) {
		l.advance()
	}
}

// malformed consumes the rest of a glued word so the error covers it.
func (l *lexer) malformed(start int, badPos Position) error {
	badStart := l.pos
	for isIdentChar(l.peek()) {
		l.advance()
	}
	return l.errorf(badPos, max(l.pos-badStart, 1), ErrMalformedLiteral, "%q", l.src[start:l.pos])
}

func (l *lexer) number() error {
	start, pos := l.pos, l.position()

	kind := Int
	l.digits(isDecimal)
	if l.peek() == '.' && isDecimal(l.peekAt(1)) {
		l.advance()
		l.digits(isDecimal)
		kind = Float
	}

	switch {
	case l.peek() == 'i' && l.peekAt(1) == 'f':
		l.advanceN(2)
		kind = Imaginary
	case l.peek() == 'i':
		l.advance()
		kind = Imaginary
	case l.peek() == 'f':
		l.advance()
		kind = Float
	}

	if isIdentChar(l.peek()) || l.peek() == '.' && isDecimal(l.peekAt(1)) {
		return l.malformed(start, l.position())
	}

	l.emit(kind, start, pos)
	return nil
}

// radix lexes #ff style hexadecimal and #o17 style octal literals.
func (l *lexer) radix() error {
	start, pos := l.pos, l.position()
	l.advance()

	accept, name := isHex, "hexadecimal"
	if l.peek() == 'o' {
		l.advance()
		accept, name = isOctal, "octal"
	}

	if !accept(l.peek()) {
		badPos := l.position()
		badStart := l.pos
		for isIdentChar(l.peek()) {
			l.advance()
		}
		return l.errorf(badPos, max(l.pos-badStart, 1), ErrMalformedLiteral, "%s literal %q has no digits", name, l.src[start:l.pos])
	}

	l.digits(accept)
	if isIdentChar(l.peek()) {
		return l.malformed(start, l.position())
	}

	l.emit(Int, start, pos)
	return nil
}

// quoted lexes a char or string literal. A literal cut short by a newline or
// the end of input becomes an Unknown token for the parser to reject.
func (l *lexer) quoted(quote byte, kind Kind) {
	start, pos := l.pos, l.position()
	l.advance()
	for {
		if l.done() || l.peek() == '\n' {
			l.emit(Unknown, start, pos)
			return
		}
		c := l.peek()
		l.advance()
		switch c {
		case '\\':
			if !l.done() && l.peek() != '\n' {
				l.advance()
			}
		case quote:
			l.emit(kind, start, pos)
			return
		}
	}
}

func (l *lexer) comment() {
	start, pos := l.pos, l.position()
	if l.peekAt(1) == '/' {
		for !l.done() && l.peek() != '\n' {
			l.advance()
		}
		l.emit(Comment, start, pos)
		return
	}

	l.advanceN(2)
	for !l.done() {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advanceN(2)
			l.emit(Comment, start, pos)
			return
		}
		l.advance()
	}
	l.emit(Unknown, start, pos)
}

func (l *lexer) symbol() error {
	start, pos := l.pos, l.position()
	c := l.peek()

	if _, ok := punctuation[c]; ok {
		switch c {
		case '(', '[':
			l.depth++
		case ')', ']':
			if l.depth > 0 {
				l.depth--
			}
		}
		l.advance()
		l.emit(Punct, start, pos)
		return nil
	}

	for _, candidates := range operators {
		for _, op := range candidates {
			if strings.HasPrefix(l.src[l.pos:], op) {
				l.advanceN(len(op))
				l.emit(Operator, start, pos)
				return nil
			}
		}
	}

	return l.errorf(pos, 1, ErrUnknownCharacter, "%q", rune(c))
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

func isHex(c byte) bool {
	return isDecimal(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDecimal(c)
}
