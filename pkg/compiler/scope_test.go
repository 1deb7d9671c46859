package compiler_test

import (
	"testing"

	"github.com/rhino1998/tern/pkg/compiler"
	"github.com/rhino1998/tern/pkg/topological"
	"github.com/stretchr/testify/require"
)

func TestScope_Variables(t *testing.T) {
	r := require.New(t)

	root := compiler.NewRootScope()
	outer := root.Child()
	r.NoError(outer.AddVariable("a", "i32"))
	r.NoError(outer.AddBound("b", "f64"))
	r.NoError(outer.AddConstant("c", "u8", "3"))

	r.ErrorIs(outer.AddVariable("a", "i64"), compiler.ErrRedeclared)
	r.ErrorIs(outer.AddConstant("b", "i64", "1"), compiler.ErrRedeclared)

	inner := outer.Child()
	r.Equal(2, inner.Depth())

	found, shadowed := inner.CheckVariable("a")
	r.True(found)
	r.True(shadowed)

	found, shadowed = outer.CheckVariable("a")
	r.True(found)
	r.False(shadowed)

	found, _ = inner.CheckVariable("missing")
	r.False(found)

	typ, kind, ok := inner.Variable("b")
	r.True(ok)
	r.Equal("f64", typ)
	r.Equal(compiler.Bound, kind)

	_, kind, _ = inner.Variable("c")
	r.Equal(compiler.Constant, kind)
	value, ok := inner.ConstantValue("c")
	r.True(ok)
	r.Equal("3", value)

	r.NoError(inner.AddVariable("a", "string"))
	typ, kind, _ = inner.Variable("a")
	r.Equal("string", typ)
	r.Equal(compiler.Mutable, kind)

	inner.Release()
	typ, _, _ = outer.Variable("a")
	r.Equal("i32", typ)
}

func TestScope_Release(t *testing.T) {
	r := require.New(t)

	root := compiler.NewRootScope()
	first := root.Child()
	r.NoError(first.AddVariable("x", "i32"))
	first.Release()

	second := root.Child()
	_, _, ok := second.Variable("x")
	r.False(ok)

	root.Release()
	r.True(root.CheckType("i32"))
}

func TestScope_Types(t *testing.T) {
	r := require.New(t)

	root := compiler.NewRootScope()
	for _, name := range []string{"i8", "u64", "c128", "bool", "char", "string", "any"} {
		r.True(root.CheckType(name), name)
		r.False(root.IsStruct(name), name)
	}

	s := root.Child()
	r.NoError(s.AddType("Shape"))
	r.NoError(s.AddType("Circle", "Shape"))
	r.ErrorIs(s.AddType("Shape"), compiler.ErrRedeclared)
	r.ErrorIs(s.AddType("Square", "Polygon"), compiler.ErrUnknownType)
	r.False(s.CheckType("Square"))

	r.True(s.IsStruct("Circle"))
	r.True(s.CheckType("Circle[3][]"))
	r.True(s.CheckType("Circle i32"))
	r.False(s.CheckType("Circle Polygon"))
	r.False(s.CheckType(""))
	r.Equal([]string{"Shape"}, s.TreatedAs("Circle"))

	err := s.Extend("Shape", "Circle")
	r.ErrorIs(err, topological.ErrCycleDetected)
	r.Empty(s.TreatedAs("Shape"))

	r.NoError(s.AddField("Shape", "area", "f64"))
	r.ErrorIs(s.AddField("Shape", "area", "f32"), compiler.ErrRedeclared)

	typ, ok := s.Field("Circle", "area")
	r.True(ok)
	r.Equal("f64", typ)

	_, ok = s.Field("Circle", "radius")
	r.False(ok)
}

func TestScope_Functions(t *testing.T) {
	r := require.New(t)

	s := compiler.NewRootScope().Child()
	f := &compiler.FunType{Name: "f", Params: []string{"i32"}, Return: "i32", Target: "f"}
	r.NoError(s.AddFunction(f))
	r.ErrorIs(s.AddFunction(&compiler.FunType{Name: "f", Params: []string{"i32"}}), compiler.ErrRedeclared)
	r.NoError(s.AddFunction(&compiler.FunType{Name: "f", Params: []string{"f64"}}))
	r.NoError(s.AddFunction(&compiler.FunType{Name: "f", Params: []string{"i32"}, Variadic: true}))

	r.Equal("fun f(i32) i32", f.String())
	r.Equal("fun Point.move<T>(T, f64...) i32, bool", (&compiler.FunType{
		Owner:    "Point",
		Name:     "move",
		Generics: []string{"T"},
		Params:   []string{"T", "f64"},
		Variadic: true,
		Return:   "i32 bool",
	}).String())
}
