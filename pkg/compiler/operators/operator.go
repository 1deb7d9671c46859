package operators

import (
	"fmt"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
)

type Operator string

// Precedence orders binary operators from loosest to tightest binding.
type Precedence int

const (
	PrecedenceAssignment Precedence = iota + 1
	PrecedenceAnnotation
	PrecedenceList
	PrecedenceLogicalOr
	PrecedenceLogicalAnd
	PrecedenceBitwiseOr
	PrecedenceBitwiseXor
	PrecedenceBitwiseAnd
	PrecedenceEquality
	PrecedenceRelational
	PrecedenceShift
	PrecedenceAdditive
	PrecedenceMultiplicative
	PrecedencePower
	PrecedenceUnary
	PrecedencePrimary
)

const (
	Exponentiation Operator = "**"
	Member         Operator = "."

	Multiplication Operator = "*"
	Division       Operator = "/"
	Modulo         Operator = "%"

	Addition    Operator = "+"
	Subtraction Operator = "-"

	LeftShift  Operator = "<<"
	RightShift Operator = ">>"

	LessThan           Operator = "<"
	GreaterThan        Operator = ">"
	LessThanOrEqual    Operator = "<="
	GreaterThanOrEqual Operator = ">="

	Equal    Operator = "=="
	NotEqual Operator = "!="

	BitwiseAnd Operator = "&"
	BitwiseXor Operator = "^"
	BitwiseOr  Operator = "|"

	LogicalAnd Operator = "&&"
	LogicalOr  Operator = "||"

	Comma Operator = ","
	Colon Operator = ":"

	Assign         Operator = "="
	PlusEquals     Operator = "+="
	MinusEquals    Operator = "-="
	MultiplyEquals Operator = "*="
	DivideEquals   Operator = "/="
	ModuloEquals   Operator = "%="

	Negate     Operator = "-"
	Not        Operator = "!"
	BitwiseNot Operator = "~"
	Increment  Operator = "++"
	Decrement  Operator = "--"

	Var   Operator = "var"
	Let   Operator = "let"
	Const Operator = "const"
)

var binaryPrecedence = map[Operator]Precedence{
	Assign:             PrecedenceAssignment,
	PlusEquals:         PrecedenceAssignment,
	MinusEquals:        PrecedenceAssignment,
	MultiplyEquals:     PrecedenceAssignment,
	DivideEquals:       PrecedenceAssignment,
	ModuloEquals:       PrecedenceAssignment,
	Colon:              PrecedenceAnnotation,
	Comma:              PrecedenceList,
	LogicalOr:          PrecedenceLogicalOr,
	LogicalAnd:         PrecedenceLogicalAnd,
	BitwiseOr:          PrecedenceBitwiseOr,
	BitwiseXor:         PrecedenceBitwiseXor,
	BitwiseAnd:         PrecedenceBitwiseAnd,
	Equal:              PrecedenceEquality,
	NotEqual:           PrecedenceEquality,
	LessThan:           PrecedenceRelational,
	LessThanOrEqual:    PrecedenceRelational,
	GreaterThan:        PrecedenceRelational,
	GreaterThanOrEqual: PrecedenceRelational,
	LeftShift:          PrecedenceShift,
	RightShift:         PrecedenceShift,
	Addition:           PrecedenceAdditive,
	Subtraction:        PrecedenceAdditive,
	Multiplication:     PrecedenceMultiplicative,
	Division:           PrecedenceMultiplicative,
	Modulo:             PrecedenceMultiplicative,
	Exponentiation:     PrecedencePower,
	Member:             PrecedencePower,
}

// unaryPrecedence is the threshold an operand of a prefix operator is parsed
// at. Declarations take a whole name list.
var unaryPrecedence = map[Operator]Precedence{
	Negate:     PrecedencePower,
	Not:        PrecedencePower,
	BitwiseNot: PrecedencePower,
	Increment:  PrecedencePower,
	Decrement:  PrecedencePower,
	Var:        PrecedenceList,
	Let:        PrecedenceList,
	Const:      PrecedenceList,
}

func Binary(text string) (Operator, Precedence, bool) {
	prec, ok := binaryPrecedence[Operator(text)]
	return Operator(text), prec, ok
}

func Unary(text string) (Operator, Precedence, bool) {
	prec, ok := unaryPrecedence[Operator(text)]
	return Operator(text), prec, ok
}

func (o Operator) Precedence() Precedence {
	return binaryPrecedence[o]
}

func (o Operator) RightAssociative() bool {
	return o.IsAssignment()
}

func (o Operator) IsAssignment() bool {
	switch o {
	case Assign, PlusEquals, MinusEquals, MultiplyEquals, DivideEquals, ModuloEquals:
		return true
	default:
		return false
	}
}

func (o Operator) IsDeclaration() bool {
	return o == Var || o == Let || o == Const
}

func (o Operator) IsComparison() bool {
	switch o {
	case Equal,
		NotEqual,
		LessThan,
		GreaterThan,
		LessThanOrEqual,
		GreaterThanOrEqual:
		return true
	default:
		return false
	}
}

func (o Operator) IsEquality() bool {
	return o == Equal || o == NotEqual
}

func (o Operator) IsLogical() bool {
	return o == LogicalAnd || o == LogicalOr
}

func (o Operator) IsArithmetic() bool {
	switch o {
	case Addition, Subtraction, Multiplication, Division, Modulo, Exponentiation:
		return true
	default:
		return false
	}
}

// IsBitwise includes the shifts, which share the integer-only operand rule.
func (o Operator) IsBitwise() bool {
	switch o {
	case BitwiseAnd, BitwiseOr, BitwiseXor, LeftShift, RightShift:
		return true
	default:
		return false
	}
}

func (o Operator) AssignmentToInfix() (Operator, error) {
	switch o {
	case PlusEquals:
		return Addition, nil
	case MinusEquals:
		return Subtraction, nil
	case MultiplyEquals:
		return Multiplication, nil
	case DivideEquals:
		return Division, nil
	case ModuloEquals:
		return Modulo, nil
	default:
		return "", fmt.Errorf("operator %q is not a compound assignment operator", o)
	}
}

func (o Operator) PostfixToInfix() (Operator, error) {
	switch o {
	case Increment:
		return Addition, nil
	case Decrement:
		return Subtraction, nil
	default:
		return "", fmt.Errorf("operator %q is not a postfix operator", o)
	}
}

// Helper names the function an operator lowers to when the target language
// has no infix spelling for it on operands of the given kind.
func (o Operator) Helper(kind kinds.Kind) (string, bool) {
	switch o {
	case Exponentiation:
		if kind.IsInteger() {
			return "tern::ipow", true
		}
		return "std::pow", true
	case Modulo:
		if kind == kinds.Float {
			return "std::fmod", true
		}
	}
	return "", false
}
