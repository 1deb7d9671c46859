package parser

import (
	"errors"
	"fmt"

	"github.com/rhino1998/tern/pkg/lexer"
)

var (
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnterminated    = errors.New("unterminated literal")
)

// Error is a syntax error at a token.
type Error struct {
	Token    lexer.Token
	Expected string
	Err      error
}

func (e *Error) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%s: %v: %s", e.Token.Pos, e.Err, e.Token)
	}
	return fmt.Sprintf("%s: %v: %s, expected %s", e.Token.Pos, e.Err, e.Token, e.Expected)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func unexpected(tok lexer.Token, expected string) error {
	if tok.Kind == lexer.Unknown {
		return &Error{Token: tok, Expected: expected, Err: ErrUnterminated}
	}
	return &Error{Token: tok, Expected: expected, Err: ErrUnexpectedToken}
}

// PositionError attaches a source position to a literal conversion failure.
type PositionError struct {
	Pos lexer.Position
	Err error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}
