package compiler

import (
	"fmt"
	"strings"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
	"github.com/rhino1998/tern/pkg/compiler/operators"
	"github.com/rhino1998/tern/pkg/parser"
)

type declaration struct {
	keyword operators.Operator
	names   []parser.Node
	typ     parser.Node
	values  []parser.Node
	assign  operators.Operator
}

// flatten splits a left associative chain of op into its operands.
func flatten(n parser.Node, op operators.Operator) []parser.Node {
	if b, ok := n.(*parser.BinaryExpression); ok && b.Operator == op {
		return append(flatten(b.Left, op), b.Right)
	}
	return []parser.Node{n}
}

func declares(n parser.Node) bool {
	_, ok := splitDeclaration(n)
	return ok
}

func splitDeclaration(n parser.Node) (declaration, bool) {
	var d declaration

	if b, ok := n.(*parser.BinaryExpression); ok && b.Operator.IsAssignment() {
		d.assign = b.Operator
		d.values = flatten(b.Right, operators.Comma)
		n = b.Left
	}
	if b, ok := n.(*parser.BinaryExpression); ok && b.Operator == operators.Colon {
		d.typ = b.Right
		n = b.Left
	}

	u, ok := n.(*parser.UnaryExpression)
	if !ok || !u.Operator.IsDeclaration() {
		return declaration{}, false
	}
	d.keyword = u.Operator
	d.names = flatten(u.Operand, operators.Comma)

	return d, true
}

func declaredName(n parser.Node) (string, error) {
	v, ok := n.(*parser.Variable)
	if !ok || v.Call || v.Index != nil {
		return "", fmt.Errorf("%w: cannot declare %s", ErrMisplaced, n)
	}
	return v.Name, nil
}

// declaration translates var, let and const statements.
func (g *Generator) declaration(n parser.Node) (string, error) {
	d, _ := splitDeclaration(n)
	if d.assign != "" && d.assign != operators.Assign {
		return "", fmt.Errorf("%w: declarations are initialized with =, not %s", ErrMisplaced, d.assign)
	}

	names := make([]string, len(d.names))
	for i, nameNode := range d.names {
		name, err := declaredName(nameNode)
		if err != nil {
			return "", err
		}
		names[i] = name
	}

	var typ string
	if d.typ != nil {
		var err error
		typ, err = g.typeOf(d.typ)
		if err != nil {
			return "", err
		}
		if !g.scope().CheckType(typ) {
			return "", fmt.Errorf("%w %q", ErrUnknownType, typ)
		}
	}

	switch {
	case len(d.values) == 0:
		return g.uninitialized(d, names, typ)
	case len(d.values) == 1 && len(names) > 1:
		return g.destructure(d, names, typ)
	case len(d.values) != len(names):
		return "", fmt.Errorf("%w: %d names but %d values", ErrTypeMismatch, len(names), len(d.values))
	}

	values := make([]Expression, len(d.values))
	for i, valueNode := range d.values {
		value, err := g.expression(valueNode)
		if err != nil {
			return "", err
		}
		if isVoid(value.Type) {
			return "", fmt.Errorf("%w: %s has no value", ErrTypeMismatch, valueNode)
		}
		if d.keyword == operators.Const && !value.Const {
			return "", fmt.Errorf("%s is %w", valueNode, ErrNotConstant)
		}
		values[i] = value
	}

	if typ == "" {
		typ = defaultType(values[0])
		if typ == "" {
			return "", fmt.Errorf("%w: cannot infer the type of %s", ErrTypeMismatch, d.values[0])
		}
		for i, value := range values[1:] {
			if other := defaultType(value); other != typ {
				return "", fmt.Errorf("%w: %s is %s but %s is %s", ErrTypeMismatch, d.values[0], typ, d.values[i+1], other)
			}
		}
	}

	parts := make([]string, len(names))
	for i, name := range names {
		text, err := g.accept(typ, values[i], d.values[i])
		if err != nil {
			return "", err
		}
		if err := g.declare(d.keyword, name, typ, values[i].Value); err != nil {
			return "", err
		}
		sep := " = "
		if i > 0 {
			sep = "  = "
		}
		parts[i] = identifier(name) + sep + text
	}

	return declarationPrefix(d.keyword, typ) + " " + strings.Join(parts, ", "), nil
}

func declarationPrefix(keyword operators.Operator, typ string) string {
	spelled := targetType(typ)
	switch keyword {
	case operators.Let:
		return "const " + spelled
	case operators.Const:
		if isPrimitive(typ) {
			return "constexpr " + spelled
		}
		return "const " + spelled
	default:
		return spelled
	}
}

func (g *Generator) uninitialized(d declaration, names []string, typ string) (string, error) {
	if d.keyword != operators.Var {
		return "", fmt.Errorf("%w: %s declarations need a value", ErrMisplaced, d.keyword)
	}
	if typ == "" {
		return "", fmt.Errorf("%w: declaration without a type or value", ErrTypeMismatch)
	}

	texts := make([]string, len(names))
	for i, name := range names {
		if err := g.declare(d.keyword, name, typ, ""); err != nil {
			return "", err
		}
		texts[i] = identifier(name)
	}

	return targetType(typ) + " " + strings.Join(texts, ", "), nil
}

// destructure binds the fields of a tuple value to several names.
func (g *Generator) destructure(d declaration, names []string, typ string) (string, error) {
	if d.keyword == operators.Const {
		return "", fmt.Errorf("%w: tuples cannot be constants", ErrNotConstant)
	}

	value, err := g.expression(d.values[0])
	if err != nil {
		return "", err
	}
	elems := tupleElems(value.Type)
	if len(elems) != len(names) {
		return "", fmt.Errorf("%w: %d names but %s has %d values", ErrTypeMismatch, len(names), d.values[0], len(elems))
	}

	texts := make([]string, len(names))
	for i, name := range names {
		elemType := elems[i]
		if typ != "" {
			if ok, narrowing := g.scope().CanAssign(typ, elemType); !ok || narrowing {
				return "", fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, name, elemType, typ)
			}
			elemType = typ
		}
		if err := g.declare(d.keyword, name, elemType, ""); err != nil {
			return "", err
		}
		texts[i] = identifier(name)
	}

	prefix := "auto"
	if d.keyword == operators.Let {
		prefix = "const auto"
	}
	return fmt.Sprintf("%s [%s] = %s", prefix, strings.Join(texts, ", "), value.Text), nil
}

// declare adds a name to the current scope, applying the shadowing policy.
func (g *Generator) declare(keyword operators.Operator, name, typ, value string) error {
	s := g.scope()

	if found, shadowed := s.CheckVariable(name); found && shadowed {
		switch g.config.Shadowing {
		case ShadowForbid:
			return fmt.Errorf("%q %w", name, ErrShadowed)
		case ShadowWarn:
			g.logger.Warn("declaration shadows an outer declaration", "pos", g.pos.String(), "name", name)
		}
	}

	switch keyword {
	case operators.Let:
		return s.AddBound(name, typ)
	case operators.Const:
		return s.AddConstant(name, typ, value)
	default:
		return s.AddVariable(name, typ)
	}
}

// accept checks that e can be stored as target and returns its text
// converted for the target.
func (g *Generator) accept(target string, e Expression, n parser.Node) (string, error) {
	ok, narrowing := g.scope().Accepts(target, e)
	if !ok {
		return "", fmt.Errorf("%w: cannot use %s (%s) as %s", ErrTypeMismatch, n, e.Type, target)
	}
	return g.coerce(e, target, narrowing)
}

// convert compiles n and converts it to target.
func (g *Generator) convert(n parser.Node, target string) (string, error) {
	e, err := g.expression(n)
	if err != nil {
		return "", err
	}
	return g.accept(target, e, n)
}

// coerce spells e as a value of target. Narrowing conversions become
// explicit casts.
func (g *Generator) coerce(e Expression, target string, narrowing bool) (string, error) {
	switch {
	case target == "any" || target == e.Type && !e.Untyped:
		return e.Text, nil

	case e.Type == typeNullptr:
		return targetType(target) + "{}", nil

	case e.Type == typeArray && e.Elements != nil:
		elem, _, _ := splitArray(target)
		texts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			_, narrow := g.scope().Accepts(elem, el)
			text, err := g.coerce(el, elem, narrow)
			if err != nil {
				return "", err
			}
			texts[i] = text
		}
		return "{" + strings.Join(texts, ", ") + "}", nil

	case isArray(target) && isArray(e.Type) && target != e.Type:
		if _, dim, _ := splitArray(target); dim != "" {
			return "", fmt.Errorf("%w: cannot convert %s to %s", ErrTypeMismatch, e.Type, target)
		}
		if narrowing {
			g.warnNarrowing(e.Type, target)
		}
		return "tern::convert<" + targetType(target) + ">(" + e.Text + ")", nil

	case narrowing:
		g.warnNarrowing(e.Type, target)
		return "static_cast<" + targetType(target) + ">(" + e.Text + ")", nil

	case kindOf(target) == kinds.Complex && kindOf(e.Type) == kinds.Complex && target != e.Type:
		return "static_cast<" + targetType(target) + ">(" + e.Text + ")", nil
	}

	return e.Text, nil
}

func (g *Generator) assignment(n *parser.BinaryExpression) (string, error) {
	targets := flatten(n.Left, operators.Comma)
	values := flatten(n.Right, operators.Comma)

	if len(targets) > 1 {
		return g.multiAssignment(n, targets, values)
	}
	if len(values) != 1 {
		return "", fmt.Errorf("%w: 1 target but %d values", ErrTypeMismatch, len(values))
	}

	lhs, err := g.lvalue(targets[0])
	if err != nil {
		return "", err
	}
	rhs, err := g.expression(values[0])
	if err != nil {
		return "", err
	}

	if n.Operator == operators.Assign {
		text, err := g.accept(lhs.Type, rhs, values[0])
		if err != nil {
			return "", err
		}
		return lhs.Text + " = " + text, nil
	}

	infix, err := n.Operator.AssignmentToInfix()
	if err != nil {
		return "", err
	}
	result, err := g.binary(lhs, infix, rhs)
	if err != nil {
		return "", err
	}
	ok, narrowing := g.scope().CanAssign(lhs.Type, result.Type)
	if !ok {
		return "", fmt.Errorf("%w: %s %s %s is %s, not %s", ErrTypeMismatch, targets[0], infix, values[0], result.Type, lhs.Type)
	}

	switch {
	case narrowing:
		g.warnNarrowing(result.Type, lhs.Type)
		return lhs.Text + " = static_cast<" + targetType(lhs.Type) + ">(" + result.Text + ")", nil
	case result.helper:
		return lhs.Text + " = " + result.Text, nil
	default:
		return lhs.Text + " " + string(n.Operator) + " " + result.right, nil
	}
}

func (g *Generator) multiAssignment(n *parser.BinaryExpression, targets, values []parser.Node) (string, error) {
	if n.Operator != operators.Assign {
		return "", fmt.Errorf("%w: %s cannot assign several targets", ErrMisplaced, n.Operator)
	}

	lhs := make([]Expression, len(targets))
	texts := make([]string, len(targets))
	for i, target := range targets {
		e, err := g.lvalue(target)
		if err != nil {
			return "", err
		}
		lhs[i], texts[i] = e, e.Text
	}
	tie := "std::tie(" + strings.Join(texts, ", ") + ")"

	if len(values) == 1 {
		value, err := g.expression(values[0])
		if err != nil {
			return "", err
		}
		elems := tupleElems(value.Type)
		if len(elems) != len(lhs) {
			return "", fmt.Errorf("%w: %d targets but %s has %d values", ErrTypeMismatch, len(lhs), values[0], len(elems))
		}
		for i, elem := range elems {
			if ok, narrowing := g.scope().CanAssign(lhs[i].Type, elem); !ok || narrowing {
				return "", fmt.Errorf("%w: cannot assign %s to %s (%s)", ErrTypeMismatch, elem, targets[i], lhs[i].Type)
			}
		}
		return tie + " = " + value.Text, nil
	}

	if len(values) != len(lhs) {
		return "", fmt.Errorf("%w: %d targets but %d values", ErrTypeMismatch, len(lhs), len(values))
	}
	vals := make([]string, len(values))
	for i, valueNode := range values {
		text, err := g.convert(valueNode, lhs[i].Type)
		if err != nil {
			return "", err
		}
		vals[i] = text
	}

	return tie + " = std::make_tuple(" + strings.Join(vals, ", ") + ")", nil
}

func rootName(n parser.Node) string {
	switch n := n.(type) {
	case *parser.Variable:
		if n.Call {
			return ""
		}
		return n.Name
	case *parser.BinaryExpression:
		if n.Operator == operators.Member {
			return rootName(n.Left)
		}
	}
	return ""
}

// lvalue compiles an assignment target. The variable it is rooted at must
// be mutable.
func (g *Generator) lvalue(n parser.Node) (Expression, error) {
	root := rootName(n)
	if root == "" {
		return Expression{}, fmt.Errorf("%w: cannot assign to %s", ErrNotAssignable, n)
	}

	_, kind, ok := g.scope().Variable(root)
	if !ok {
		return Expression{}, fmt.Errorf("%w %q", ErrUnknownName, root)
	}
	if kind != Mutable {
		return Expression{}, fmt.Errorf("%w: %q is a %s", ErrNotAssignable, root, kind)
	}

	return g.expression(n)
}

func (g *Generator) increment(n *parser.UnaryExpression) (Expression, error) {
	x, err := g.lvalue(n.Operand)
	if err != nil {
		return Expression{}, err
	}
	if k := kindOf(x.Type); !k.IsInteger() && k != kinds.Float {
		return Expression{}, fmt.Errorf("%w: cannot apply %s to %s", ErrTypeMismatch, n.Operator, x.Type)
	}

	text := string(n.Operator) + x.wrap(operators.PrecedenceUnary, false)
	if n.Postfix {
		text = x.wrap(operators.PrecedencePrimary, false) + string(n.Operator)
	}

	return Expression{Text: text, Type: x.Type, prec: operators.PrecedenceUnary, effect: true}, nil
}
