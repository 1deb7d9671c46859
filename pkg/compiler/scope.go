package compiler

import (
	"fmt"
	"slices"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
	"github.com/rhino1998/tern/pkg/topological"
)

type VariableKind int

const (
	NotDeclared VariableKind = iota
	Mutable
	Bound
	Constant
)

func (k VariableKind) String() string {
	switch k {
	case Mutable:
		return "variable"
	case Bound:
		return "read-only binding"
	case Constant:
		return "constant"
	default:
		return "<undeclared>"
	}
}

type constant struct {
	typ   string
	value string
}

type funcKey struct {
	owner string
	name  string
}

type scopeRecord struct {
	parent int

	variables map[string]string
	bound     map[string]string
	constants map[string]constant
	fields    map[string]string
	types     map[string][]string
	functions map[funcKey][]*FunType
}

func newScopeRecord(parent int) *scopeRecord {
	return &scopeRecord{
		parent:    parent,
		variables: make(map[string]string),
		bound:     make(map[string]string),
		constants: make(map[string]constant),
		fields:    make(map[string]string),
		types:     make(map[string][]string),
		functions: make(map[funcKey][]*FunType),
	}
}

func (r *scopeRecord) hasVariable(name string) bool {
	if _, ok := r.variables[name]; ok {
		return true
	}
	if _, ok := r.bound[name]; ok {
		return true
	}
	_, ok := r.constants[name]
	return ok
}

type arena struct {
	records []*scopeRecord
}

// Scope is a handle to one level of the scope stack. Scopes are released in
// the reverse order they were created, so no scope outlives its parent.
type Scope struct {
	arena *arena
	id    int
}

// NewRootScope returns a scope holding the built-in types and functions.
// It is the only scope built-ins are declared in.
func NewRootScope() Scope {
	a := &arena{records: []*scopeRecord{newScopeRecord(-1)}}
	root := Scope{arena: a, id: 0}
	declareBuiltins(root)
	return root
}

func (s Scope) record() *scopeRecord {
	return s.arena.records[s.id]
}

func (s Scope) Child() Scope {
	s.arena.records = append(s.arena.records, newScopeRecord(s.id))
	return Scope{arena: s.arena, id: len(s.arena.records) - 1}
}

func (s Scope) Parent() (Scope, bool) {
	parent := s.record().parent
	if parent < 0 {
		return Scope{}, false
	}
	return Scope{arena: s.arena, id: parent}, true
}

func (s Scope) IsRoot() bool {
	return s.record().parent < 0
}

// Depth is the number of scopes between s and the root.
func (s Scope) Depth() int {
	depth := 0
	for cur, ok := s.Parent(); ok; cur, ok = cur.Parent() {
		depth++
	}
	return depth
}

// Release drops s and every scope created after it. The root cannot be
// released.
func (s Scope) Release() {
	if s.IsRoot() {
		return
	}
	clear(s.arena.records[s.id:])
	s.arena.records = s.arena.records[:s.id]
}

// lookup walks from s toward the root and returns the first scope whose
// record satisfies fn.
func (s Scope) lookup(fn func(*scopeRecord) bool) (Scope, bool) {
	cur := s
	for {
		if fn(cur.record()) {
			return cur, true
		}
		parent, ok := cur.Parent()
		if !ok {
			return Scope{}, false
		}
		cur = parent
	}
}

func (s Scope) declareVariable(name string, fn func(*scopeRecord)) error {
	r := s.record()
	if r.hasVariable(name) {
		return fmt.Errorf("%q is %w", name, ErrRedeclared)
	}
	fn(r)
	return nil
}

func (s Scope) AddVariable(name, typ string) error {
	return s.declareVariable(name, func(r *scopeRecord) {
		r.variables[name] = typ
	})
}

func (s Scope) AddBound(name, typ string) error {
	return s.declareVariable(name, func(r *scopeRecord) {
		r.bound[name] = typ
	})
}

func (s Scope) AddConstant(name, typ, value string) error {
	return s.declareVariable(name, func(r *scopeRecord) {
		r.constants[name] = constant{typ: typ, value: value}
	})
}

// CheckVariable reports whether name is visible from s and whether the
// nearest declaration lives in an enclosing scope rather than in s itself.
func (s Scope) CheckVariable(name string) (found, shadowed bool) {
	owner, ok := s.lookup(func(r *scopeRecord) bool {
		return r.hasVariable(name)
	})
	if !ok {
		return false, false
	}
	return true, owner.id != s.id
}

// Variable returns the type and kind of the nearest declaration of name.
func (s Scope) Variable(name string) (string, VariableKind, bool) {
	owner, ok := s.lookup(func(r *scopeRecord) bool {
		return r.hasVariable(name)
	})
	if !ok {
		return "", NotDeclared, false
	}

	r := owner.record()
	if typ, ok := r.variables[name]; ok {
		return typ, Mutable, true
	}
	if typ, ok := r.bound[name]; ok {
		return typ, Bound, true
	}
	c := r.constants[name]
	return c.typ, Constant, true
}

func (s Scope) ConstantValue(name string) (string, bool) {
	owner, ok := s.lookup(func(r *scopeRecord) bool {
		return r.hasVariable(name)
	})
	if !ok {
		return "", false
	}
	c, ok := owner.record().constants[name]
	return c.value, ok
}

// AddType declares a type in s that can be treated as each of treatedAs.
func (s Scope) AddType(name string, treatedAs ...string) error {
	r := s.record()
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("type %q is %w", name, ErrRedeclared)
	}
	r.types[name] = nil

	for _, as := range treatedAs {
		if err := s.Extend(name, as); err != nil {
			delete(r.types, name)
			return err
		}
	}

	return nil
}

// Extend lets values of type name be used where treatedAs is expected. The
// type hierarchy must stay acyclic.
func (s Scope) Extend(name, treatedAs string) error {
	owner, ok := s.lookup(func(r *scopeRecord) bool {
		_, ok := r.types[name]
		return ok
	})
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	if !s.CheckType(treatedAs) {
		return fmt.Errorf("%w %q", ErrUnknownType, treatedAs)
	}

	r := owner.record()
	prev := r.types[name]
	r.types[name] = append(slices.Clip(prev), treatedAs)

	if _, err := topological.Sort(s.TypeNames(), s.TreatedAs); err != nil {
		r.types[name] = prev
		return fmt.Errorf("type %q cannot be treated as %q: %w", name, treatedAs, err)
	}

	return nil
}

// CheckType reports whether every name in a type is declared.
func (s Scope) CheckType(typ string) bool {
	if typ == "" {
		return false
	}
	if isTuple(typ) {
		for _, elem := range tupleElems(typ) {
			if !s.CheckType(elem) {
				return false
			}
		}
		return true
	}
	if elem, _, ok := splitArray(typ); ok {
		return s.CheckType(elem)
	}
	_, ok := s.lookup(func(r *scopeRecord) bool {
		_, ok := r.types[typ]
		return ok
	})
	return ok
}

// IsStruct reports whether a type was declared by the program.
func (s Scope) IsStruct(typ string) bool {
	return s.CheckType(typ) && !kinds.IsBuiltin(typ) && !isArray(typ) && !isTuple(typ)
}

// TreatedAs returns the types name was directly extended with.
func (s Scope) TreatedAs(name string) []string {
	owner, ok := s.lookup(func(r *scopeRecord) bool {
		_, ok := r.types[name]
		return ok
	})
	if !ok {
		return nil
	}
	return owner.record().types[name]
}

// TypeNames returns every type visible from s.
func (s Scope) TypeNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for cur, ok := s, true; ok; cur, ok = cur.Parent() {
		for name := range cur.record().types {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// AddField declares a field on a type declared in s or an enclosing scope.
func (s Scope) AddField(owner, name, typ string) error {
	r := s.record()
	key := owner + "." + name
	if _, ok := r.fields[key]; ok {
		return fmt.Errorf("field %q of %s is %w", name, owner, ErrRedeclared)
	}
	r.fields[key] = typ
	return nil
}

// Field finds a field of owner or of any type owner is treated as.
func (s Scope) Field(owner, name string) (string, bool) {
	key := owner + "." + name
	if scope, ok := s.lookup(func(r *scopeRecord) bool {
		_, ok := r.fields[key]
		return ok
	}); ok {
		return scope.record().fields[key], true
	}

	for _, parent := range s.TreatedAs(owner) {
		if typ, ok := s.Field(parent, name); ok {
			return typ, true
		}
	}

	return "", false
}

// AddFunction declares a function. A function with the same owner, name and
// parameters may not be declared twice in one scope.
func (s Scope) AddFunction(f *FunType) error {
	r := s.record()
	key := funcKey{owner: f.Owner, name: f.Name}
	for _, existing := range r.functions[key] {
		if existing.Variadic == f.Variadic && slices.Equal(existing.Params, f.Params) {
			return fmt.Errorf("function %s is %w", f, ErrRedeclared)
		}
	}
	r.functions[key] = append(r.functions[key], f)
	return nil
}
