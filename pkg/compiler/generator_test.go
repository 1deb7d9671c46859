package compiler_test

import (
	"strings"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/rhino1998/tern/pkg/compiler"
	"github.com/rhino1998/tern/pkg/lexer"
	"github.com/rhino1998/tern/pkg/parser"
	"github.com/stretchr/testify/require"
)

func parseAll(t *testing.T, src string) []*parser.Statement {
	t.Helper()

	groups, err := lexer.Lex(src, "test.tn")
	require.NoError(t, err)

	stmts, err := parser.Parse(groups)
	require.NoError(t, err)
	return stmts
}

// translate feeds every line but the last through g and returns the
// translation of the last one.
func translate(t *testing.T, g *compiler.Generator, src string) (string, error) {
	t.Helper()

	stmts := parseAll(t, src)
	for _, stmt := range stmts[:len(stmts)-1] {
		_, err := g.Statement(stmt)
		require.NoError(t, err, stmt.String())
	}
	return g.Statement(stmts[len(stmts)-1])
}

func TestGenerator_Statement(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"main", "main {", "int main(int argc, char **argv) {\n"},
		{"declaration list", "var num1, num2: u8 = 12, 45", "uint8_t num1 = 12, num2  = 45\n"},
		{"typed array", "var nums: u8[] = u8[]{12, 45}", "std::vector<uint8_t> nums = std::vector<uint8_t>{12, 45}\n"},
		{"if", "var a = 1\nif a == 1 {", "if(a == 1) {\n"},
		{"tuple return", "fun a() type, i8 {", "std::tuple<type, int8_t> a() {\n"},

		{"inferred", "var x = 1", "int32_t x = 1\n"},
		{"inferred float", "var x = 2.5", "double x = 2.5\n"},
		{"float32", "var x = 2f", "float x = 2.0f\n"},
		{"hex literal", "var x: u16 = #ff", "uint16_t x = 255\n"},
		{"let", "let name = \"tern\"", "const std::string name = \"tern\"s\n"},
		{"const", "const size = 4", "constexpr int32_t size = 4\n"},
		{"const string", "const greeting = \"hi\"", "const std::string greeting = \"hi\"s\n"},
		{"uninitialized", "var a, b: f64", "double a, b\n"},
		{"fixed array", "var grid: i32[3] = {1, 2, 3}", "std::array<int32_t, 3> grid = {1, 2, 3}\n"},
		{"constant size", "const n = 2\nvar pair: f64[n]", "std::array<double, 2> pair\n"},
		{"nested array", "var m: i8[2][] = {{1, 2}, {3, 4}}", "std::vector<std::array<int8_t, 2>> m = {{1, 2}, {3, 4}}\n"},
		{"nullptr", "struct Node {\n}\nvar n: Node = nullptr", "Node n = Node{}\n"},
		{"complex", "var z: c128 = 1.5 + 2i", "std::complex<double> z = std::complex<double>(1.5) + std::complex<double>(0, 2.0)\n"},
		{"narrowing", "var d = 1.5\nvar f: f32 = d", "float f = static_cast<float>(d)\n"},
		{"widening", "var b: u8 = 1\nvar w: i32 = b", "int32_t w = b\n"},
		{"reserved name", "var int = 1", "int32_t int_ = 1\n"},
		{"float to int", "var d = 1.5\nvar i: i32 = d", "int32_t i = static_cast<int32_t>(d)\n"},
		{"signed to unsigned", "var s: i64 = -1\nvar u: u32 = s", "uint32_t u = static_cast<uint32_t>(s)\n"},
		{"unsigned to signed", "var b: u8 = 1\nvar c: i8 = b", "int8_t c = static_cast<int8_t>(b)\n"},
		{"narrowing array", "var a: i32[] = {1}\nvar b: i8[] = a", "std::vector<int8_t> b = tern::convert<std::vector<int8_t>>(a)\n"},
		{"folded shift", "var x: u8 = 1 << 7", "uint8_t x = 1 << 7\n"},
		{"folded mask", "var x: u8 = ~0 & 255", "uint8_t x = ~0 & 255\n"},
		{"folded size", "var xs: f64[2 ** 2]", "std::array<double, 4> xs\n"},

		{"assign", "var a = 1\na = 2", "a = 2\n"},
		{"compound", "var a = 1\na += 2 * a", "a += 2 * a\n"},
		{"compound helper", "var a = 1.5\na %= 2.0", "a = std::fmod(a, 2.0)\n"},
		{"multi assign", "var a, b = 1, 2\na, b = b, a", "std::tie(a, b) = std::make_tuple(b, a)\n"},
		{"increment", "var i = 0\ni++", "i++\n"},
		{"prefix decrement", "var i = 0\n--i", "--i\n"},

		{"power", "var a = 2\nvar b = a ** 3", "int32_t b = tern::ipow(a, 3)\n"},
		{"float power", "var a = 2.0\nvar b = a ** 0.5", "double b = std::pow(a, 0.5)\n"},
		{"grouping", "var a, b, c = 1, 2, 3\nvar d = (a + b) * c", "int32_t d = (a + b) * c\n"},
		{"right grouping", "var a, b, c = 1, 2, 3\nvar d = a - (b - c)", "int32_t d = a - (b - c)\n"},
		{"negate", "var a = 1\nvar b = -a", "int32_t b = -a\n"},
		{"double negate", "var a = 1\nvar b = - -a", "int32_t b = -(-a)\n"},
		{"logic", "var a, b = true, false\nvar c = !a && b || a", "bool c = !a && b || a\n"},
		{"string concat", "var s = \"a\" + 'b'", "std::string s = \"a\"s + 'b'\n"},
		{"index", "var xs: i32[] = {1, 2}\nvar y = xs[0]", "int32_t y = xs[0]\n"},
		{"string index", "var s = \"abc\"\nvar c = s[1]", "char c = s[1]\n"},

		{"call", "println(\"hi\", 1)", "tern::println(\"hi\"s, 1)\n"},
		{"conversion", "var a = 1.5\nvar b = i32(a)", "int32_t b = static_cast<int32_t>(a)\n"},
		{"method builtin", "var xs: i32[] = {}\nxs.push(3)", "xs.push_back(3)\n"},
		{"length", "var s = \"abc\"\nvar n = s.len()", "uint64_t n = s.size()\n"},
		{"math", "var r = sqrt(2.0)", "double r = std::sqrt(2.0)\n"},
		{"generic builtin", "var m = max(1, 2)", "int32_t m = std::max(1, 2)\n"},

		{"function", "fun add(a: i32, b: i32) i32 {", "int32_t add(int32_t a, int32_t b) {\n"},
		{"void function", "fun hello() {", "void hello() {\n"},
		{"variadic", "fun sum(xs: i32...) i32 {", "int32_t sum(std::vector<int32_t> xs) {\n"},
		{"generic function", "fun id<T>(x: T) T {", "template <typename T> T id(T x) {\n"},
		{"variadic call", "fun sum(xs: i32...) i32 {\nreturn 0\n}\nvar s = sum(1, 2, 3)", "int32_t s = sum(std::vector<int32_t>{1, 2, 3})\n"},
		{"generic call", "fun id<T>(x: T) T {\nreturn x\n}\nvar s = id(2.5)", "double s = id<double>(2.5)\n"},
		{"return", "fun one() i32 {\nreturn 1", "return 1\n"},
		{"return tuple", "fun two() i32, f64 {\nreturn 1, 2", "return std::make_tuple(1, 2)\n"},
		{"destructure", "fun two() i32, f64 {\nreturn 1, 2.0\n}\nvar a, b = two()", "auto [a, b] = two()\n"},
		{"destructure let", "fun two() i32, f64 {\nreturn 1, 2.0\n}\nlet a, b = two()", "const auto [a, b] = two()\n"},
		{"tie call", "fun two() i32, f64 {\nreturn 1, 2.0\n}\nvar a = 0\nvar b = 0.0\na, b = two()", "std::tie(a, b) = two()\n"},

		{"struct", "struct Point {", "struct Point {\n"},
		{"struct field", "struct Point {\nx, y: f64", "double x, y\n"},
		{"struct var field", "struct Point {\nvar x: f64", "double x\n"},
		{"struct close", "struct Point {\nx: f64\n}", "};\n"},
		{"derived struct", "struct A {\n}\nstruct B {\n}\nstruct C : A, B {", "struct C : A, B {\n"},
		{"constructor", "struct Point {\nx, y: f64\n}\nvar p = Point(1.0, 2.0)", "Point p = Point{1.0, 2.0}\n"},
		{"derived constructor", "struct A {\na: i32\n}\nstruct B : A {\nb: i32\n}\nvar v = B(2)", "B v = B{{}, 2}\n"},
		{"field access", "struct Point {\nx: f64\n}\nvar p = Point(1.0)\nvar x = p.x", "double x = p.x\n"},
		{"inherited field", "struct A {\na: i32\n}\nstruct B : A {\n}\nvar v = B()\nv.a = 3", "v.a = 3\n"},
		{"treated as", "struct A {\n}\nstruct B : A {\n}\nvar b = B()\nvar a: A = b", "A a = b\n"},
		{"method", "struct P {\nx: i32\n}\nfun P.bump(by: i32) {", "void P_bump(P &self, int32_t by) {\n"},
		{"method call", "struct P {\nx: i32\n}\nfun P.bump(by: i32) {\nself.x += by\n}\nvar p = P(0)\np.bump(2)", "P_bump(p, 2)\n"},
		{"reserved struct", "struct class {", "struct class_ {\n"},
		{"reserved base", "struct class {\n}\nstruct B : class {", "struct B : class_ {\n"},
		{"reserved constructor", "struct class {\nx: i32\n}\nvar c = class(1)", "class_ c = class_{1}\n"},
		{"reserved method", "struct class {\n}\nfun class.f() {", "void class_f(class_ &self) {\n"},

		{"while", "var i = 0\nwhile i < 10 {", "while(i < 10) {\n"},
		{"for", "for var i = 0; i < 10; i++ {", "for(int32_t i = 0; i < 10; i++) {\n"},
		{"empty for", "for ; true; {", "for(; true; ) {\n"},
		{"break", "while true {\nbreak", "break\n"},
		{"continue", "for ; true; {\nif true {\ncontinue", "continue\n"},
		{"else", "if true {\n} else {", "} else {\n"},
		{"else if", "var a = 1\nif a > 1 {\n} else if a < 0 {", "} else if(a < 0) {\n"},
		{"close", "main {\n}", "}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			g := compiler.NewGenerator(slogt.New(t), compiler.DefaultConfig())

			text, err := translate(t, g, tt.src)
			r.NoError(err)
			r.Equal(tt.expected, text)
		})
	}
}

func TestGenerator_StatementErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"close without block", "}", compiler.ErrUnbalanced},
		{"out of range", "var x: u8 = 300", compiler.ErrTypeMismatch},
		{"negative literal to unsigned", "var x: u32 = -1", compiler.ErrTypeMismatch},
		{"float literal to int", "var x: i32 = 1.5", compiler.ErrTypeMismatch},
		{"complex to real", "var z = 2i\nvar f: f64 = z", compiler.ErrTypeMismatch},
		{"mismatched counts", "var a, b = 1, 2, 3", compiler.ErrTypeMismatch},
		{"mismatched inferred", "var a, b = 1, 2.0", compiler.ErrTypeMismatch},
		{"let without value", "let a: i32", compiler.ErrMisplaced},
		{"untyped without value", "var a", compiler.ErrTypeMismatch},
		{"unknown type", "var a: float = 1", compiler.ErrUnknownType},
		{"unknown name", "var a = b", compiler.ErrUnknownName},
		{"unknown function", "foo(1)", compiler.ErrUnknownFunction},
		{"no overload", "var r = sqrt(\"a\")", compiler.ErrNoOverload},
		{"redeclared", "var a = 1\nvar a = 2", compiler.ErrRedeclared},
		{"assign binding", "let y = 1\ny = 2", compiler.ErrNotAssignable},
		{"assign constant", "const y = 1\ny += 2", compiler.ErrNotAssignable},
		{"increment binding", "let y = 1\ny++", compiler.ErrNotAssignable},
		{"const of variable", "var a = 1\nconst b = a", compiler.ErrNotConstant},
		{"variable size", "var n = 2\nvar xs: i32[n]", compiler.ErrNotConstant},
		{"index range", "var xs: i32[2] = {1, 2}\nvar y = xs[2]", compiler.ErrIndexRange},
		{"too many elements", "var xs = i32[2]{1, 2, 3}", compiler.ErrIndexRange},
		{"bad condition", "if 1 {", compiler.ErrTypeMismatch},
		{"unused value", "var a = 1\na + 1", compiler.ErrMisplaced},
		{"break outside loop", "break", compiler.ErrMisplaced},
		{"return outside function", "return 1", compiler.ErrMisplaced},
		{"missing return value", "fun f() i32 {\nreturn", compiler.ErrTypeMismatch},
		{"void return value", "fun f() {\nreturn 1", compiler.ErrTypeMismatch},
		{"return count", "fun f() i32, i32 {\nreturn 1, 2, 3", compiler.ErrTypeMismatch},
		{"duplicate main", "main {\n}\nmain {", compiler.ErrRedeclared},
		{"nested main", "if true {\nmain {", compiler.ErrMisplaced},
		{"nested function", "main {\nfun f() {", compiler.ErrMisplaced},
		{"else after while", "while true {\n} else {", compiler.ErrMisplaced},
		{"struct statement", "struct P {\nprintln(1)", compiler.ErrMisplaced},
		{"struct initializer", "struct P {\nvar x: i32 = 1", compiler.ErrMisplaced},
		{"struct of primitive", "struct P : i32 {", compiler.ErrTypeMismatch},
		{"redeclared struct", "struct P {\n}\nstruct P {", compiler.ErrRedeclared},
		{"unknown field", "struct P {\nx: i32\n}\nvar p = P(1)\nvar y = p.y", compiler.ErrUnknownName},
		{"modulo complex", "var z = 1i % 2i", compiler.ErrTypeMismatch},
		{"bitwise float", "var f = 1.5 & 2.5", compiler.ErrTypeMismatch},
		{"compare bool", "var b = true < false", compiler.ErrTypeMismatch},
		{"string minus", "var s = \"a\" - \"b\"", compiler.ErrTypeMismatch},
		{"late variadic", "fun f(xs: i32..., y: i32) {", compiler.ErrMisplaced},
		{"method on unknown", "fun Q.f() {", compiler.ErrUnknownType},
		{"redeclared function", "fun f(a: i32) {\n}\nfun f(b: i32) {", compiler.ErrRedeclared},
		{"const tuple", "fun two() i32, i32 {\nreturn 1, 2\n}\nconst a, b = two()", compiler.ErrNotConstant},
		{"compound declaration", "var a += 1", compiler.ErrMisplaced},
		{"complement out of range", "var x: u8 = ~0", compiler.ErrTypeMismatch},
		{"folded quotient", "var x: u8 = 1000 / 2", compiler.ErrTypeMismatch},
		{"folded overflow", "var x: u8 = 65536 * 65536 * 65536 * 65536", compiler.ErrOverflow},
		{"int overflow", "var x: i64 = 2000000000 * 2", compiler.ErrOverflow},
		{"negation overflow", "var x = -(-2147483647 - 1)", compiler.ErrOverflow},
		{"power overflow", "var x = 10 ** 10", compiler.ErrOverflow},
		{"shift count", "var x = 1 << 32", compiler.ErrOverflow},
		{"division by zero", "var x = 1 / 0", compiler.ErrDivisionByZero},
		{"modulo by zero", "var x = 7 % (2 - 2)", compiler.ErrDivisionByZero},
		{"complement index", "var xs: i32[2] = {1, 2}\nvar y = xs[~0]", compiler.ErrIndexRange},
		{"folded index", "var xs: i32[2] = {1, 2}\nvar y = xs[5 % 3]", compiler.ErrIndexRange},
		{"empty folded size", "var xs: f64[1 - 1]", compiler.ErrIndexRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			g := compiler.NewGenerator(slogt.New(t), compiler.DefaultConfig())

			_, err := translate(t, g, tt.src)
			r.ErrorIs(err, tt.err)

			var stmtErr *compiler.StatementError
			r.ErrorAs(err, &stmtErr)
		})
	}
}

func TestGenerator_ErrorContext(t *testing.T) {
	r := require.New(t)
	g := compiler.NewGenerator(slogt.New(t), compiler.DefaultConfig())

	_, err := translate(t, g, `var a = sqrt("a") * 2 + 1`)
	r.ErrorIs(err, compiler.ErrNoOverload)

	var stmtErr *compiler.StatementError
	r.ErrorAs(err, &stmtErr)
	r.Equal(`sqrt("a") * 2`, stmtErr.Context)
	r.ErrorContains(err, "\n\tin sqrt(\"a\") * 2")

	_, err = translate(t, g, `var b = sqrt("a")`)
	r.ErrorAs(err, &stmtErr)
	r.Empty(stmtErr.Context)
}

func TestGenerator_Shadowing(t *testing.T) {
	src := "var a = 1\nmain {\nvar a = 2"

	t.Run("forbid", func(t *testing.T) {
		r := require.New(t)
		config := compiler.DefaultConfig()
		config.Shadowing = compiler.ShadowForbid
		g := compiler.NewGenerator(slogt.New(t), config)

		_, err := translate(t, g, src)
		r.ErrorIs(err, compiler.ErrShadowed)
	})

	for _, policy := range []compiler.ShadowPolicy{compiler.ShadowAllow, compiler.ShadowWarn} {
		t.Run(string(policy), func(t *testing.T) {
			r := require.New(t)
			config := compiler.DefaultConfig()
			config.Shadowing = policy
			g := compiler.NewGenerator(slogt.New(t), config)

			text, err := translate(t, g, src)
			r.NoError(err)
			r.Equal("int32_t a = 2\n", text)
		})
	}
}

func TestGenerator_ScopesCloseWithBlocks(t *testing.T) {
	r := require.New(t)
	g := compiler.NewGenerator(slogt.New(t), compiler.DefaultConfig())

	_, err := translate(t, g, "main {\nif true {\nvar inner = 1\n}\nvar y = inner")
	r.ErrorIs(err, compiler.ErrUnknownName)
}

func TestGenerator_Generate(t *testing.T) {
	r := require.New(t)
	g := compiler.NewGenerator(slogt.New(t), compiler.DefaultConfig())

	src := strings.Join([]string{
		"fun add(a: i32, b: i32) i32 {",
		"return a + b",
		"}",
		"main {",
		"var x = add(1, 2)",
		"if x > 2 {",
		"println(x)",
		"} else {",
		"println(\"small\")",
		"}",
		"}",
	}, "\n")

	out, err := g.Generate(parseAll(t, src))
	r.NoError(err)
	r.Equal(strings.Join([]string{
		"int32_t add(int32_t a, int32_t b) {",
		"    return a + b;",
		"}",
		"int main(int argc, char **argv) {",
		"    int32_t x = add(1, 2);",
		"    if(x > 2) {",
		"        tern::println(x);",
		"    } else {",
		"        tern::println(\"small\"s);",
		"    }",
		"}",
		"",
	}, "\n"), out)
}

func TestGenerator_GenerateUnclosed(t *testing.T) {
	r := require.New(t)
	g := compiler.NewGenerator(slogt.New(t), compiler.DefaultConfig())

	_, err := g.Generate(parseAll(t, "main {\nwhile true {\n}"))
	r.ErrorIs(err, compiler.ErrUnbalanced)
	r.ErrorContains(err, "test.tn:1:1")
}
