package lexer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedLiteral = errors.New("malformed numeric literal")
	ErrUnknownCharacter = errors.New("unknown character")
)

// Error is a lexical error with enough of the source to point at it.
type Error struct {
	Pos    Position
	Width  int
	Line   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %s\n%s", e.Pos, msg, e.Excerpt())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Excerpt renders the offending line with a caret run under the error.
func (e *Error) Excerpt() string {
	var caret strings.Builder
	for i := 0; i < e.Pos.Column-1 && i < len(e.Line); i++ {
		if e.Line[i] == '\t' {
			caret.WriteByte('\t')
		} else {
			caret.WriteByte(' ')
		}
	}
	caret.WriteString(strings.Repeat("^", max(e.Width, 1)))
	return e.Line + "\n" + caret.String()
}
