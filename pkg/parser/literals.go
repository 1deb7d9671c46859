package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOutOfRange         = errors.New("out of range")
	ErrTrailingCharacters = errors.New("trailing characters")
)

// LiteralError reports a literal whose text cannot be converted to a value.
type LiteralError struct {
	Text string
	Err  error
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("literal %q: %v", e.Text, e.Err)
}

func (e *LiteralError) Unwrap() error {
	return e.Err
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return math.MaxInt
	}
}

// ParseInteger converts decimal, #hex and #o octal integer text to a 32 bit
// signed value. A leading minus sign is accepted.
func ParseInteger(text string) (int32, error) {
	s := text
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "#o"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "#"):
		base, s = 16, s[1:]
	}

	n := 0
	for n < len(s) && digitValue(s[n]) < base {
		n++
	}
	if n == 0 {
		return 0, &LiteralError{Text: text, Err: ErrInvalidArgument}
	}

	var value int64
	for i := range n {
		value = value*int64(base) + int64(digitValue(s[i]))
		if value > -math.MinInt32 {
			return 0, &LiteralError{Text: text, Err: ErrOutOfRange}
		}
	}
	if negative {
		value = -value
	}
	if value > math.MaxInt32 {
		return 0, &LiteralError{Text: text, Err: ErrOutOfRange}
	}

	if n < len(s) {
		return 0, &LiteralError{Text: text, Err: ErrTrailingCharacters}
	}

	return int32(value), nil
}

// FormatInteger renders a value in the literal syntax ParseInteger reads.
// Bases other than 8, 10 and 16 are rendered in decimal.
func FormatInteger(value int32, base int) string {
	v := int64(value)
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch base {
	case 16:
		return sign + "#" + strconv.FormatInt(v, 16)
	case 8:
		return sign + "#o" + strconv.FormatInt(v, 8)
	default:
		return sign + strconv.FormatInt(v, 10)
	}
}

// parseFloat converts a float or imaginary literal without its suffix.
func parseFloat(text string, bits int) (float64, error) {
	v, err := strconv.ParseFloat(text, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &LiteralError{Text: text, Err: ErrOutOfRange}
		}
		return 0, &LiteralError{Text: text, Err: ErrInvalidArgument}
	}
	return v, nil
}
