package compiler

import (
	"errors"
	"fmt"

	"github.com/rhino1998/tern/pkg/lexer"
)

var (
	ErrUnknownName     = errors.New("undefined name")
	ErrUnknownType     = errors.New("unknown type")
	ErrUnknownFunction = errors.New("unknown function")
	ErrNoOverload      = errors.New("no matching overload")
	ErrRedeclared      = errors.New("already declared in this scope")
	ErrShadowed        = errors.New("shadows an outer declaration")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrNotAssignable   = errors.New("not assignable")
	ErrNotConstant     = errors.New("not a constant expression")
	ErrIndexRange      = errors.New("index out of range")
	ErrOverflow        = errors.New("constant overflows int")
	ErrDivisionByZero  = errors.New("division by zero")
	ErrNotAFile        = errors.New("not a file")
	ErrUnbalanced      = errors.New("unbalanced block")
	ErrMisplaced       = errors.New("misplaced statement")
)

type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// StatementError is a semantic error in one statement.
type StatementError struct {
	Pos       lexer.Position
	Statement string
	// Context is the expression around the part that failed, when it is
	// smaller than the statement.
	Context string
	Err     error
}

func (e *StatementError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %v\n\t%s\n\tin %s", e.Pos, e.Err, e.Statement, e.Context)
	}
	return fmt.Sprintf("%s: %v\n\t%s", e.Pos, e.Err, e.Statement)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

type ErrorSet struct {
	Errs []error
}

func newErrorSet() *ErrorSet {
	return new(ErrorSet)
}

func (e *ErrorSet) Add(err error) {
	var subErrs *ErrorSet
	if errors.As(err, &subErrs) {
		e.Errs = append(e.Errs, subErrs.Unwrap()...)
	} else {
		e.Errs = append(e.Errs, err)
	}
}

func (e ErrorSet) Error() string {
	return errors.Join(e.Errs...).Error()
}

func (e ErrorSet) Unwrap() []error {
	return e.Errs
}

func (e *ErrorSet) Defer(err error) error {
	if err != nil && e != err {
		e.Add(err)
	}

	if len(e.Errs) == 0 {
		return nil
	}

	return e
}
