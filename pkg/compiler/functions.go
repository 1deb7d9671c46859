package compiler

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
)

// Form is how a call to a function is spelled in the output.
type Form int

const (
	// FormCall is target(args).
	FormCall Form = iota
	// FormMember is recv.target(args).
	FormMember
	// FormReceiver is target(recv, args).
	FormReceiver
	// FormCast is static_cast<target>(arg).
	FormCast
	// FormInit is target{args}.
	FormInit
)

type FunType struct {
	Owner    string
	Name     string
	Generics []string
	Params   []string
	Variadic bool
	Return   string

	Constructor bool
	Form        Form
	Target      string
	// Spread passes variadic arguments individually instead of packing them
	// into a vector.
	Spread bool
}

func (f *FunType) String() string {
	var b strings.Builder
	b.WriteString("fun ")
	if f.Owner != "" {
		b.WriteString(f.Owner + ".")
	}
	b.WriteString(f.Name)
	if len(f.Generics) > 0 {
		b.WriteString("<" + strings.Join(f.Generics, ", ") + ">")
	}
	params := slices.Clone(f.Params)
	if f.Variadic && len(params) > 0 {
		params[len(params)-1] += "..."
	}
	b.WriteString("(" + strings.Join(params, ", ") + ")")
	if f.Return != "" {
		b.WriteString(" " + strings.Join(tupleElems(f.Return), ", "))
	}
	return b.String()
}

// Binding maps generic names to concrete types.
type Binding map[string]string

func (b Binding) substitute(typ string) string {
	if len(b) == 0 || typ == "" {
		return typ
	}
	if isTuple(typ) {
		elems := tupleElems(typ)
		for i, elem := range elems {
			elems[i] = b.substitute(elem)
		}
		return strings.Join(elems, " ")
	}
	if elem, dim, ok := splitArray(typ); ok {
		if bound, ok := b[dim]; ok {
			dim = bound
		}
		return b.substitute(elem) + "[" + dim + "]"
	}
	if bound, ok := b[typ]; ok {
		return bound
	}
	return typ
}

// Specialize returns a copy of f with bound generics substituted.
func (f *FunType) Specialize(b Binding) *FunType {
	specialized := *f
	specialized.Params = make([]string, len(f.Params))
	for i, param := range f.Params {
		specialized.Params[i] = b.substitute(param)
	}
	specialized.Return = b.substitute(f.Return)
	specialized.Owner = b.substitute(f.Owner)
	return &specialized
}

// Overload is a resolved call.
type Overload struct {
	Func         *FunType
	Binding      Binding
	Return       string
	VariadicFrom int
	Narrowing    []bool
}

type ownerKey struct {
	owner   string
	binding Binding
}

// ownerKeys lists the owners a method can be registered under, the exact
// owner first, then the generic array owners.
func ownerKeys(owner string) []ownerKey {
	keys := []ownerKey{{owner: owner}}
	if elem, dim, ok := splitArray(owner); ok {
		if dim == "" {
			keys = append(keys, ownerKey{owner: "T[]", binding: Binding{"T": elem}})
		} else {
			keys = append(keys, ownerKey{owner: "T[N]", binding: Binding{"T": elem, "N": dim}})
		}
	}
	return keys
}

// Overload resolves a call of name on owner, which is empty for free
// functions. Candidates registered for the exact owner are tried first,
// then those of the types owner is treated as, then the enclosing scope.
// The first candidate whose parameters accept the arguments wins.
func (s Scope) Overload(owner, name string, args []Expression) (Overload, error) {
	found := false

	for cur, ok := s, true; ok; cur, ok = cur.Parent() {
		for _, key := range ownerKeys(owner) {
			candidates := cur.record().functions[funcKey{owner: key.owner, name: name}]
			found = found || len(candidates) > 0
			for _, f := range candidates {
				if ov, ok := cur.match(f, key.binding, args); ok {
					return ov, nil
				}
			}
		}

		if owner == "" {
			continue
		}
		for _, parent := range cur.record().types[owner] {
			ov, err := cur.Overload(parent, name, args)
			if err == nil {
				return ov, nil
			}
			found = found || errors.Is(err, ErrNoOverload)
		}
	}

	callee := name
	if owner != "" {
		callee = owner + "." + name
	}
	if !found {
		return Overload{}, fmt.Errorf("%w %q", ErrUnknownFunction, callee)
	}

	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = arg.Type
	}
	return Overload{}, fmt.Errorf("%w for %s(%s)", ErrNoOverload, callee, strings.Join(types, ", "))
}

func (s Scope) match(f *FunType, ownerBinding Binding, args []Expression) (Overload, bool) {
	variadicFrom := -1
	if f.Variadic {
		variadicFrom = len(f.Params) - 1
		if len(args) < variadicFrom {
			return Overload{}, false
		}
	} else if len(args) != len(f.Params) {
		return Overload{}, false
	}

	binding := maps.Clone(ownerBinding)
	if binding == nil {
		binding = make(Binding)
	}

	narrowing := make([]bool, len(args))
	for i, arg := range args {
		param := f.Params[min(i, len(f.Params)-1)]
		param, ok := s.unify(param, arg, f.Generics, binding)
		if !ok {
			return Overload{}, false
		}
		accepted, narrow := s.Accepts(param, arg)
		if !accepted {
			return Overload{}, false
		}
		narrowing[i] = narrow
	}

	specialized := f.Specialize(binding)
	return Overload{
		Func:         specialized,
		Binding:      binding,
		Return:       specialized.Return,
		VariadicFrom: variadicFrom,
		Narrowing:    narrowing,
	}, true
}

// unify binds the generics of param against the type of arg and returns the
// parameter type with known bindings substituted.
func (s Scope) unify(param string, arg Expression, generics []string, binding Binding) (string, bool) {
	if slices.Contains(generics, param) {
		if bound, ok := binding[param]; ok {
			return bound, true
		}
		typ := defaultType(arg)
		if typ == "" {
			return "", false
		}
		binding[param] = typ
		return typ, true
	}

	if elem, dim, ok := splitArray(param); ok && slices.Contains(generics, baseType(param)) {
		argElem, argDim, ok := splitArray(arg.Type)
		if !ok || argDim != dim {
			return "", false
		}
		inner, ok := s.unify(elem, Expression{Type: argElem}, generics, binding)
		if !ok {
			return "", false
		}
		return inner + "[" + dim + "]", true
	}

	return binding.substitute(param), true
}

// defaultType is the type an expression takes when nothing constrains it.
func defaultType(e Expression) string {
	switch e.Type {
	case typeArray, typeNullptr, typeVoid, "":
		return ""
	}
	return e.Type
}

func (f *FunType) returnType() string {
	if f.Return == "" {
		return typeVoid
	}
	return f.Return
}

func isVoid(typ string) bool {
	return typ == "" || typ == typeVoid
}

// conversion builds the built-in cast from any value to a primitive type.
func conversion(p kinds.Primitive) *FunType {
	return &FunType{
		Name:        p.Name,
		Params:      []string{"any"},
		Return:      p.Name,
		Constructor: true,
		Form:        FormCast,
		Target:      p.Name,
	}
}
