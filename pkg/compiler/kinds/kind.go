package kinds

import (
	"math"
	"sort"
)

type Kind int

const (
	Unknown Kind = iota
	Bool
	Char
	Signed
	Unsigned
	Float
	Complex
	String
	Any
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Signed:
		return "signed"
	case Unsigned:
		return "unsigned"
	case Float:
		return "float"
	case Complex:
		return "complex"
	case String:
		return "string"
	case Any:
		return "any"
	default:
		return "<unknown>"
	}
}

func (k Kind) IsNumeric() bool {
	return k == Signed || k == Unsigned || k == Float || k == Complex
}

func (k Kind) IsInteger() bool {
	return k == Signed || k == Unsigned
}

// IsPrimitive reports whether values of the kind are scalars in the target
// language. Strings and any are built in but not primitive.
func (k Kind) IsPrimitive() bool {
	return k.IsNumeric() || k == Bool || k == Char
}

// Primitive is a built-in type of the source language and the type it lowers
// to.
type Primitive struct {
	Name   string
	Target string
	Kind   Kind
	Bits   int
}

// Fits reports whether an integer value is representable by the primitive.
// Float and complex primitives accept every integer.
func (p Primitive) Fits(v int64) bool {
	switch p.Kind {
	case Signed:
		if p.Bits >= 64 {
			return true
		}
		return v >= -(1<<(p.Bits-1)) && v <= (1<<(p.Bits-1))-1
	case Unsigned:
		if v < 0 {
			return false
		}
		if p.Bits >= 64 {
			return true
		}
		return uint64(v) <= uint64(math.MaxUint64)>>(64-p.Bits)
	case Float, Complex:
		return true
	default:
		return false
	}
}

var primitives = map[string]Primitive{
	"i8":     {"i8", "int8_t", Signed, 8},
	"i16":    {"i16", "int16_t", Signed, 16},
	"i32":    {"i32", "int32_t", Signed, 32},
	"i64":    {"i64", "int64_t", Signed, 64},
	"u8":     {"u8", "uint8_t", Unsigned, 8},
	"u16":    {"u16", "uint16_t", Unsigned, 16},
	"u32":    {"u32", "uint32_t", Unsigned, 32},
	"u64":    {"u64", "uint64_t", Unsigned, 64},
	"f32":    {"f32", "float", Float, 32},
	"f64":    {"f64", "double", Float, 64},
	"c64":    {"c64", "std::complex<float>", Complex, 64},
	"c128":   {"c128", "std::complex<double>", Complex, 128},
	"bool":   {"bool", "bool", Bool, 8},
	"char":   {"char", "char", Char, 8},
	"string": {"string", "std::string", String, 0},
	"any":    {"any", "auto", Any, 0},
}

func Lookup(name string) (Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

func IsBuiltin(name string) bool {
	_, ok := primitives[name]
	return ok
}

// KindOf returns the kind of a built-in type name, or Unknown for anything
// declared by a program.
func KindOf(name string) Kind {
	return primitives[name].Kind
}

// Target returns the target spelling of a built-in type name. Other names
// are returned unchanged.
func Target(name string) string {
	if p, ok := primitives[name]; ok {
		return p.Target
	}
	return name
}

func Names() []string {
	names := make([]string, 0, len(primitives))
	for name := range primitives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
