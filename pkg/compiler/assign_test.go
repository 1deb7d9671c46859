package compiler_test

import (
	"testing"

	"github.com/rhino1998/tern/pkg/compiler"
	"github.com/rhino1998/tern/pkg/compiler/kinds"
	"github.com/stretchr/testify/require"
)

func TestCanAssign(t *testing.T) {
	s := compiler.NewRootScope().Child()
	require.NoError(t, s.AddType("Base"))
	require.NoError(t, s.AddType("Derived", "Base"))

	tests := []struct {
		target    string
		source    string
		ok        bool
		narrowing bool
	}{
		{"u8", "u16", true, true},
		{"u16", "u8", true, false},
		{"i16", "u8", true, false},
		{"i8", "u8", true, true},
		{"u8", "i8", true, true},
		{"u32", "i64", true, true},
		{"i32", "u32", true, true},
		{"i64", "u32", true, false},
		{"i64", "i32", true, false},
		{"i32", "i64", true, true},
		{"f64", "f32", true, false},
		{"f32", "f64", true, true},
		{"f32", "i64", true, false},
		{"i32", "f32", true, true},
		{"u8", "f64", true, true},
		{"c128", "c64", true, false},
		{"c64", "c128", true, true},
		{"c64", "f64", true, true},
		{"c64", "f32", true, false},
		{"c128", "i8", true, false},
		{"f64", "c64", false, false},
		{"i32", "c128", false, false},
		{"any", "Derived", true, false},
		{"string", "i32", false, false},
		{"Base", "Derived", true, false},
		{"Derived", "Base", false, false},
		{"Base", "nullptr", true, false},
		{"i32", "nullptr", false, false},
		{"i32[]", "[]", true, false},
		{"i32[]", "i8[]", true, false},
		{"i8[]", "i32[]", true, true},
		{"i32[3]", "i32[]", false, false},
		{"Base[2]", "Derived[2]", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.target+"<-"+tt.source, func(t *testing.T) {
			r := require.New(t)
			ok, narrowing := s.CanAssign(tt.target, tt.source)
			r.Equal(tt.ok, ok)
			r.Equal(tt.narrowing, narrowing)
		})
	}
}

func TestCanAssign_Reflexive(t *testing.T) {
	r := require.New(t)
	s := compiler.NewRootScope()

	for _, name := range kinds.Names() {
		for _, typ := range []string{name, name + "[]", name + "[4]"} {
			ok, narrowing := s.CanAssign(typ, typ)
			r.True(ok, typ)
			r.False(narrowing, typ)
		}
	}
}

func TestAccepts_UntypedLiterals(t *testing.T) {
	s := compiler.NewRootScope()

	integer := func(v string) compiler.Expression {
		return compiler.Expression{Text: v, Type: "i32", Value: v, Untyped: true, Const: true}
	}
	float := compiler.Expression{Text: "1.5", Type: "f64", Untyped: true, Const: true}
	imaginary := compiler.Expression{Text: "std::complex<double>(0, 1.0)", Type: "c128", Untyped: true, Const: true}

	tests := []struct {
		name   string
		target string
		expr   compiler.Expression
		ok     bool
	}{
		{"fits u8", "u8", integer("255"), true},
		{"overflows u8", "u8", integer("256"), false},
		{"negative unsigned", "u64", integer("-1"), false},
		{"fits i8", "i8", integer("-128"), true},
		{"overflows i8", "i8", integer("-129"), false},
		{"integer to float", "f32", integer("7"), true},
		{"integer to complex", "c64", integer("7"), true},
		{"float to float", "f32", float, true},
		{"float to complex", "c64", float, true},
		{"float to integer", "i64", float, false},
		{"imaginary to complex", "c64", imaginary, true},
		{"imaginary to float", "f64", imaginary, false},
		{"integer to string", "string", integer("1"), false},
		{"integer to any", "any", integer("1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			ok, narrowing := s.Accepts(tt.target, tt.expr)
			r.Equal(tt.ok, ok)
			r.False(narrowing)
		})
	}
}

func TestAccepts_ArrayLiterals(t *testing.T) {
	r := require.New(t)
	s := compiler.NewRootScope()

	one := compiler.Expression{Text: "1", Type: "i32", Value: "1", Untyped: true}
	big := compiler.Expression{Text: "1000", Type: "i32", Value: "1000", Untyped: true}
	wide := compiler.Expression{Text: "x", Type: "i64"}

	ok, _ := s.Accepts("u8[]", compiler.Expression{Type: "[]", Elements: []compiler.Expression{one, one}})
	r.True(ok)

	ok, _ = s.Accepts("u8[]", compiler.Expression{Type: "[]", Elements: []compiler.Expression{one, big}})
	r.False(ok)

	ok, narrowing := s.Accepts("i32[2]", compiler.Expression{Type: "[]", Elements: []compiler.Expression{one, wide}})
	r.True(ok)
	r.True(narrowing)

	ok, _ = s.Accepts("i32", compiler.Expression{Type: "[]", Elements: []compiler.Expression{}})
	r.False(ok)
}
