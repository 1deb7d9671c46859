package compiler

import (
	"math"
	"strconv"
	"strings"

	"github.com/rhino1998/tern/pkg/parser"
)

func number(n *parser.NumberLiteral) Expression {
	switch n.Kind {
	case parser.Float32:
		return Expression{Text: formatFloat(n.Float, 32) + "f", Type: "f32", Const: true}
	case parser.Float64:
		return Expression{Text: formatFloat(n.Float, 64), Type: "f64", Const: true, Untyped: true}
	case parser.Imaginary64:
		return Expression{
			Text:  "std::complex<float>(0, " + formatFloat(n.Float, 32) + "f)",
			Type:  "c64",
			Const: true,
		}
	case parser.Imaginary128:
		return Expression{
			Text:    "std::complex<double>(0, " + formatFloat(n.Float, 64) + ")",
			Type:    "c128",
			Const:   true,
			Untyped: true,
		}
	default:
		text := strconv.FormatInt(int64(n.Int), 10)
		return Expression{Text: text, Type: "i32", Const: true, Untyped: true, Value: text}
	}
}

// formatFloat prints v so that it reads back as a floating point literal.
func formatFloat(v float64, bits int) string {
	switch {
	case math.IsInf(v, 1):
		return "INFINITY"
	case math.IsInf(v, -1):
		return "-INFINITY"
	case math.IsNaN(v):
		return "NAN"
	}

	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
