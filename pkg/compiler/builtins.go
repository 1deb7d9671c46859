package compiler

import (
	"github.com/rhino1998/tern/pkg/compiler/kinds"
)

var builtinFunctions = []*FunType{
	{Name: "print", Params: []string{"any"}, Variadic: true, Spread: true, Target: "tern::print"},
	{Name: "println", Params: []string{"any"}, Variadic: true, Spread: true, Target: "tern::println"},
	{Name: "input", Return: "string", Target: "tern::input"},
	{Name: "string", Params: []string{"any"}, Return: "string", Constructor: true, Target: "tern::to_string"},

	{Name: "sqrt", Params: []string{"f64"}, Return: "f64", Target: "std::sqrt"},
	{Name: "pow", Params: []string{"f64", "f64"}, Return: "f64", Target: "std::pow"},
	{Name: "abs", Generics: []string{"T"}, Params: []string{"T"}, Return: "T", Target: "std::abs"},
	{Name: "min", Generics: []string{"T"}, Params: []string{"T", "T"}, Return: "T", Target: "std::min"},
	{Name: "max", Generics: []string{"T"}, Params: []string{"T", "T"}, Return: "T", Target: "std::max"},
	{Name: "real", Params: []string{"c128"}, Return: "f64", Target: "std::real"},
	{Name: "imag", Params: []string{"c128"}, Return: "f64", Target: "std::imag"},

	{Owner: "string", Name: "len", Return: "u64", Form: FormMember, Target: "size"},
	{Owner: "string", Name: "substr", Params: []string{"u64", "u64"}, Return: "string", Form: FormMember, Target: "substr"},

	{Owner: "T[]", Name: "len", Return: "u64", Form: FormMember, Target: "size"},
	{Owner: "T[]", Name: "push", Params: []string{"T"}, Form: FormMember, Target: "push_back"},
	{Owner: "T[]", Name: "pop", Form: FormMember, Target: "pop_back"},
	{Owner: "T[]", Name: "clear", Form: FormMember, Target: "clear"},
	{Owner: "T[N]", Name: "len", Return: "u64", Form: FormMember, Target: "size"},
}

// declareBuiltins fills the root scope. Numeric, bool and char types get a
// conversion function named after the type.
func declareBuiltins(root Scope) {
	r := root.record()

	for _, name := range kinds.Names() {
		r.types[name] = nil

		p, _ := kinds.Lookup(name)
		if p.Kind.IsPrimitive() {
			f := conversion(p)
			key := funcKey{name: f.Name}
			r.functions[key] = append(r.functions[key], f)
		}
	}

	for _, f := range builtinFunctions {
		key := funcKey{owner: f.Owner, name: f.Name}
		r.functions[key] = append(r.functions[key], f)
	}
}
