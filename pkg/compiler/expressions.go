package compiler

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
	"github.com/rhino1998/tern/pkg/compiler/operators"
	"github.com/rhino1998/tern/pkg/parser"
)

// Expression is a translated expression and what is known about it.
type Expression struct {
	Text string
	Type string

	// Const is set for values known before the program runs. Value holds
	// the decimal value of constant integers.
	Const bool
	Value string

	// Untyped literals take on the type they are used as.
	Untyped bool

	// Elements holds the members of a bare {...} literal.
	Elements []Expression

	prec   operators.Precedence
	effect bool
	helper bool
	right  string
}

func (e Expression) precedence() operators.Precedence {
	if e.prec == 0 {
		return operators.PrecedencePrimary
	}
	return e.prec
}

// wrap parenthesizes e for use as an operand at prec. Right operands are
// also parenthesized at equal precedence.
func (e Expression) wrap(prec operators.Precedence, right bool) string {
	p := e.precedence()
	if p < prec || right && p == prec {
		return "(" + e.Text + ")"
	}
	return e.Text
}

// expression translates n. The innermost node that fails is kept so the
// statement error can show the expression around it.
func (g *Generator) expression(n parser.Node) (Expression, error) {
	e, err := g.translate(n)
	if err != nil && g.failed == nil {
		g.failed = n
	}
	return e, err
}

func (g *Generator) translate(n parser.Node) (Expression, error) {
	switch n := n.(type) {
	case *parser.NumberLiteral:
		return number(n), nil
	case *parser.BooleanLiteral:
		return Expression{Text: n.String(), Type: "bool", Const: true}, nil
	case *parser.CharLiteral:
		return Expression{Text: n.Text, Type: "char", Const: true}, nil
	case *parser.StringLiteral:
		return Expression{Text: n.Text + "s", Type: "string", Const: true}, nil
	case *parser.Nullptr:
		return Expression{Text: "nullptr", Type: typeNullptr, Const: true}, nil
	case *parser.Variable:
		return g.variable(n)
	case *parser.Type:
		return g.typeExpression(n)
	case *parser.Array:
		return g.bareArray(n)
	case *parser.UnaryExpression:
		return g.unary(n)
	case *parser.BinaryExpression:
		switch {
		case n.Operator == operators.Member:
			return g.member(n)
		case n.Operator == operators.Comma, n.Operator == operators.Colon:
			return Expression{}, fmt.Errorf("%w: unexpected %q in %s", ErrMisplaced, n.Operator, n)
		case n.Operator.IsAssignment():
			return Expression{}, fmt.Errorf("%w: assignment %s used as a value", ErrMisplaced, n)
		}

		l, err := g.expression(n.Left)
		if err != nil {
			return Expression{}, err
		}
		r, err := g.expression(n.Right)
		if err != nil {
			return Expression{}, err
		}
		return g.binary(l, n.Operator, r)
	default:
		return Expression{}, fmt.Errorf("%w: unexpected %s", ErrMisplaced, n)
	}
}

func (g *Generator) variable(n *parser.Variable) (Expression, error) {
	if n.Call {
		return g.call("", nil, n.Name, n.Args, n.Index)
	}

	typ, kind, ok := g.scope().Variable(n.Name)
	if !ok {
		if n.Index != nil && n.Index.Last().Array != nil && g.scope().IsStruct(n.Name) {
			return g.arrayLiteral(n.Name, n.Index)
		}
		return Expression{}, fmt.Errorf("%w %q", ErrUnknownName, n.Name)
	}

	e := Expression{Text: identifier(n.Name), Type: typ}
	if kind == Constant {
		e.Const = true
		if isInteger(typ) {
			e.Value, _ = g.scope().ConstantValue(n.Name)
		}
	}

	return g.index(e, n.Index)
}

// typeExpression handles built-in type names in value position: a
// conversion such as f64(x) or a typed array literal such as u8[]{1, 2}.
func (g *Generator) typeExpression(n *parser.Type) (Expression, error) {
	switch {
	case n.Call && n.Index == nil:
		return g.call("", nil, n.Name, n.Args, nil)
	case !n.Call && n.Index != nil && n.Index.Last().Array != nil:
		return g.arrayLiteral(n.Name, n.Index)
	default:
		return Expression{}, fmt.Errorf("%w: type %s used as a value", ErrMisplaced, n)
	}
}

func (g *Generator) arrayLiteral(name string, idx *parser.Index) (Expression, error) {
	typ, err := g.typeText(name, idx)
	if err != nil {
		return Expression{}, err
	}
	if !g.scope().CheckType(typ) {
		return Expression{}, fmt.Errorf("%w %q", ErrUnknownType, typ)
	}

	elem, dim, _ := splitArray(typ)
	elements := idx.Last().Array.Elements
	if size, err := strconv.Atoi(dim); err == nil && len(elements) > size {
		return Expression{}, fmt.Errorf("%w: %d elements in %s", ErrIndexRange, len(elements), typ)
	}

	texts := make([]string, len(elements))
	for i, el := range elements {
		text, err := g.convert(el, elem)
		if err != nil {
			return Expression{}, err
		}
		texts[i] = text
	}

	return Expression{Text: targetType(typ) + "{" + strings.Join(texts, ", ") + "}", Type: typ}, nil
}

// bareArray is a {...} literal whose type comes from where it is used.
func (g *Generator) bareArray(n *parser.Array) (Expression, error) {
	e := Expression{Type: typeArray, Const: true, Elements: make([]Expression, 0, len(n.Elements))}

	texts := make([]string, 0, len(n.Elements))
	for _, el := range n.Elements {
		x, err := g.expression(el)
		if err != nil {
			return Expression{}, err
		}
		e.Const = e.Const && x.Const
		e.Elements = append(e.Elements, x)
		texts = append(texts, x.Text)
	}
	e.Text = "{" + strings.Join(texts, ", ") + "}"

	return e, nil
}

// typeOf reads a type written in a declaration, parameter or struct header.
func (g *Generator) typeOf(n parser.Node) (string, error) {
	switch n := n.(type) {
	case *parser.Type:
		if !n.Call {
			return g.typeText(n.Name, n.Index)
		}
	case *parser.Variable:
		if !n.Call {
			return g.typeText(n.Name, n.Index)
		}
	}
	return "", fmt.Errorf("%w: %s is not a type", ErrUnknownType, n)
}

func (g *Generator) typeText(name string, idx *parser.Index) (string, error) {
	typ := name
	for cur := idx; cur != nil; cur = cur.Next {
		dim, err := g.dimension(cur.Expr)
		if err != nil {
			return "", err
		}
		typ += "[" + dim + "]"
	}
	return typ, nil
}

// dimension is empty for a dynamic array. Fixed sizes must be positive
// integer constants.
func (g *Generator) dimension(n parser.Node) (string, error) {
	if n == nil {
		return "", nil
	}

	e, err := g.expression(n)
	if err != nil {
		return "", err
	}
	size, err := strconv.Atoi(e.Value)
	if !e.Const || !isInteger(e.Type) || err != nil {
		return "", fmt.Errorf("array size %s is %w", n, ErrNotConstant)
	}
	if size <= 0 {
		return "", fmt.Errorf("%w: array size %d", ErrIndexRange, size)
	}

	return strconv.Itoa(size), nil
}

func (g *Generator) index(e Expression, idx *parser.Index) (Expression, error) {
	for cur := idx; cur != nil; cur = cur.Next {
		if cur.Expr == nil || cur.Array != nil {
			return Expression{}, fmt.Errorf("%w: invalid index %s", ErrMisplaced, cur)
		}

		var elem, dim string
		if e.Type == "string" {
			elem = "char"
		} else if el, d, ok := splitArray(e.Type); ok {
			elem, dim = el, d
		} else {
			return Expression{}, fmt.Errorf("%w: cannot index %s", ErrTypeMismatch, e.Type)
		}

		i, err := g.expression(cur.Expr)
		if err != nil {
			return Expression{}, err
		}
		if !isInteger(i.Type) {
			return Expression{}, fmt.Errorf("%w: index %s is %s", ErrTypeMismatch, cur.Expr, i.Type)
		}

		if v, err := strconv.Atoi(i.Value); err == nil {
			size, err := strconv.Atoi(dim)
			if v < 0 || err == nil && v >= size {
				return Expression{}, fmt.Errorf("%w: %d in %s", ErrIndexRange, v, e.Type)
			}
		}

		e = Expression{Text: e.wrap(operators.PrecedencePrimary, false) + "[" + i.Text + "]", Type: elem}
	}

	return e, nil
}

func (g *Generator) member(n *parser.BinaryExpression) (Expression, error) {
	recv, err := g.expression(n.Left)
	if err != nil {
		return Expression{}, err
	}

	right, ok := n.Right.(*parser.Variable)
	if !ok {
		return Expression{}, fmt.Errorf("%w: invalid member %s", ErrMisplaced, n.Right)
	}

	if right.Call {
		return g.call(recv.Type, &recv, right.Name, right.Args, right.Index)
	}

	typ, ok := g.scope().Field(recv.Type, right.Name)
	if !ok {
		return Expression{}, fmt.Errorf("%w %q in %s", ErrUnknownName, right.Name, recv.Type)
	}

	e := Expression{Text: recv.wrap(operators.PrecedencePrimary, false) + "." + identifier(right.Name), Type: typ}
	return g.index(e, right.Index)
}

func (g *Generator) call(owner string, recv *Expression, name string, argNodes []parser.Node, idx *parser.Index) (Expression, error) {
	args := make([]Expression, len(argNodes))
	for i, n := range argNodes {
		arg, err := g.expression(n)
		if err != nil {
			return Expression{}, err
		}
		args[i] = arg
	}

	ov, err := g.scope().Overload(owner, name, args)
	if err != nil {
		return Expression{}, err
	}

	e, err := g.emitCall(ov, recv, args)
	if err != nil {
		return Expression{}, err
	}

	return g.index(e, idx)
}

func (g *Generator) emitCall(ov Overload, recv *Expression, args []Expression) (Expression, error) {
	f := ov.Func

	texts := make([]string, 0, len(args))
	var packed []string
	for i, arg := range args {
		text, err := g.coerce(arg, f.Params[min(i, len(f.Params)-1)], ov.Narrowing[i])
		if err != nil {
			return Expression{}, err
		}
		if ov.VariadicFrom >= 0 && i >= ov.VariadicFrom && !f.Spread {
			packed = append(packed, text)
			continue
		}
		texts = append(texts, text)
	}
	if ov.VariadicFrom >= 0 && !f.Spread {
		rest := f.Params[len(f.Params)-1] + "[]"
		texts = append(texts, targetType(rest)+"{"+strings.Join(packed, ", ")+"}")
	}

	e := Expression{Type: f.returnType(), effect: true}

	switch f.Form {
	case FormCall:
		e.Text = f.Target + g.templateArgs(f, ov.Binding) + "(" + strings.Join(texts, ", ") + ")"

	case FormMember:
		e.Text = recv.wrap(operators.PrecedencePrimary, false) + "." + f.Target + "(" + strings.Join(texts, ", ") + ")"

	case FormReceiver:
		e.Text = f.Target + "(" + strings.Join(append([]string{recv.Text}, texts...), ", ") + ")"

	case FormCast:
		arg := args[0]
		if !isPrimitive(arg.Type) {
			return Expression{}, fmt.Errorf("%w: cannot convert %s to %s", ErrTypeMismatch, arg.Type, f.Return)
		}
		e.Text = "static_cast<" + targetType(f.Return) + ">(" + arg.Text + ")"
		e.Const, e.effect = arg.Const, false
		if isInteger(f.Return) {
			e.Value = castValue(arg.Value, f.Return)
		}

	case FormInit:
		inits := make([]string, 0, len(texts))
		for range g.scope().TreatedAs(f.Return) {
			inits = append(inits, "{}")
		}
		e.Text = f.Target + "{" + strings.Join(append(inits, texts...), ", ") + "}"
		e.effect = false
	}

	return e, nil
}

// castValue keeps a constant integer value through a conversion that
// preserves it.
func castValue(value, target string) string {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return ""
	}
	if p, ok := kinds.Lookup(target); !ok || !p.Fits(v) {
		return ""
	}
	return value
}

// templateArgs spells the bound generics of a call to a program's own
// generic function. Library templates are left to deduce their arguments.
func (g *Generator) templateArgs(f *FunType, binding Binding) string {
	if len(f.Generics) == 0 || strings.Contains(f.Target, "::") {
		return ""
	}
	args := make([]string, len(f.Generics))
	for i, generic := range f.Generics {
		args[i] = targetType(binding.substitute(generic))
	}
	return "<" + strings.Join(args, ", ") + ">"
}

func (g *Generator) isGeneric(typ string) bool {
	f := g.top().fun
	return f != nil && slices.Contains(f.Generics, baseType(typ))
}

func (g *Generator) unary(n *parser.UnaryExpression) (Expression, error) {
	switch {
	case n.Operator.IsDeclaration():
		return Expression{}, fmt.Errorf("%w: declaration %s used as a value", ErrMisplaced, n)
	case n.Operator == operators.Increment, n.Operator == operators.Decrement:
		return g.increment(n)
	}

	x, err := g.expression(n.Operand)
	if err != nil {
		return Expression{}, err
	}

	var ok bool
	switch n.Operator {
	case operators.Negate:
		ok = isNumeric(x.Type)
	case operators.Not:
		ok = x.Type == "bool"
	case operators.BitwiseNot:
		ok = isInteger(x.Type)
	}
	if !ok && !g.isGeneric(x.Type) {
		return Expression{}, fmt.Errorf("%w: cannot apply %s to %s", ErrTypeMismatch, n.Operator, x.Type)
	}

	operand := x.wrap(operators.PrecedenceUnary, false)
	if strings.HasPrefix(operand, string(n.Operator)) {
		operand = "(" + operand + ")"
	}

	e := Expression{
		Text:    string(n.Operator) + operand,
		Type:    x.Type,
		Const:   x.Const,
		Untyped: x.Untyped,
		prec:    operators.PrecedenceUnary,
	}
	if x.Untyped && x.Value != "" && (n.Operator == operators.Negate || n.Operator == operators.BitwiseNot) {
		e.Value, err = foldUnary(n.Operator, x.Value)
		if err != nil {
			return Expression{}, err
		}
	}

	return e, nil
}

// numericRank orders kinds for picking the type of a mix of untyped
// literals.
func numericRank(typ string) int {
	switch kindOf(typ) {
	case kinds.Complex:
		return 3
	case kinds.Float:
		return 2
	default:
		return 1
	}
}

// operandType picks the type both sides of a binary operator are
// converted to.
func (g *Generator) operandType(l Expression, op operators.Operator, r Expression) (string, error) {
	switch {
	case l.Untyped && r.Untyped:
		if numericRank(r.Type) > numericRank(l.Type) {
			return r.Type, nil
		}
		return l.Type, nil
	case l.Untyped:
		if ok, _ := g.scope().Accepts(r.Type, l); ok {
			return r.Type, nil
		}
	case r.Untyped:
		if ok, _ := g.scope().Accepts(l.Type, r); ok {
			return l.Type, nil
		}
	case l.Type == r.Type:
		return l.Type, nil
	default:
		if ok, narrowing := g.scope().CanAssign(l.Type, r.Type); ok && !narrowing {
			return l.Type, nil
		}
		if ok, narrowing := g.scope().CanAssign(r.Type, l.Type); ok && !narrowing {
			return r.Type, nil
		}
	}

	return "", fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l.Type, op, r.Type)
}

func (g *Generator) binary(l Expression, op operators.Operator, r Expression) (Expression, error) {
	if isVoid(l.Type) || isVoid(r.Type) {
		return Expression{}, fmt.Errorf("%w: operand of %s has no value", ErrTypeMismatch, op)
	}

	prec := op.Precedence()
	e := Expression{
		Const:   l.Const && r.Const,
		Untyped: l.Untyped && r.Untyped,
		prec:    prec,
	}

	var operand string
	switch {
	case g.isGeneric(l.Type) || g.isGeneric(r.Type):
		operand = l.Type
		if !g.isGeneric(operand) {
			operand = r.Type
		}
		e.Untyped = false

	case op == operators.LeftShift || op == operators.RightShift:
		if !isInteger(l.Type) || !isInteger(r.Type) {
			return Expression{}, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l.Type, op, r.Type)
		}
		operand = l.Type

	case op == operators.Addition && (l.Type == "string" || r.Type == "string"):
		if !slices.Contains([]string{"string", "char"}, l.Type) || !slices.Contains([]string{"string", "char"}, r.Type) {
			return Expression{}, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, l.Type, op, r.Type)
		}
		operand = "string"

	case op.IsEquality() && (l.Type == typeNullptr || r.Type == typeNullptr):
		other := l.Type
		if other == typeNullptr {
			other = r.Type
		}
		if isPrimitive(other) {
			return Expression{}, fmt.Errorf("%w: %s compared to nullptr", ErrTypeMismatch, other)
		}
		operand = other

	default:
		var err error
		operand, err = g.operandType(l, op, r)
		if err != nil {
			return Expression{}, err
		}

		var ok bool
		switch k := kindOf(operand); {
		case op.IsLogical():
			ok = operand == "bool"
		case op.IsEquality():
			ok = true
		case op.IsComparison():
			ok = k == kinds.Char || k == kinds.String || k.IsNumeric() && k != kinds.Complex
		case op == operators.Modulo:
			ok = k.IsNumeric() && k != kinds.Complex
		case op.IsArithmetic():
			ok = k.IsNumeric()
		case op.IsBitwise():
			ok = k.IsInteger()
		}
		if !ok {
			return Expression{}, fmt.Errorf("%w: cannot apply %s to %s", ErrTypeMismatch, op, operand)
		}
	}

	e.Type = operand
	if op.IsComparison() || op.IsLogical() {
		e.Type = "bool"
		e.Untyped = false
	}

	// Mixed complex arithmetic only compiles when both sides have the
	// same complex type.
	if kindOf(operand) == kinds.Complex {
		if l.Type != operand {
			l = Expression{Text: targetType(operand) + "(" + l.Text + ")", Type: operand}
		}
		if r.Type != operand {
			r = Expression{Text: targetType(operand) + "(" + r.Text + ")", Type: operand}
		}
	}
	e.right = r.Text

	if e.Untyped && l.Value != "" && r.Value != "" {
		value, err := foldInteger(l.Value, op, r.Value)
		if err != nil {
			return Expression{}, err
		}
		e.Value = value
	}

	if helper, ok := op.Helper(kindOf(operand)); ok {
		e.Text = helper + "(" + l.Text + ", " + r.Text + ")"
		e.prec, e.helper = operators.PrecedencePrimary, true
		return e, nil
	}

	e.Text = l.wrap(prec, false) + " " + string(op) + " " + r.wrap(prec, true)

	return e, nil
}

// int32 bounds of the int arithmetic untyped constants are emitted as.
var (
	minConstant = big.NewInt(math.MinInt32)
	maxConstant = big.NewInt(math.MaxInt32)
)

func constantResult(v *big.Int, expr string) (string, error) {
	if v.Cmp(minConstant) < 0 || v.Cmp(maxConstant) > 0 {
		return "", fmt.Errorf("%w: %s is %s", ErrOverflow, expr, v)
	}
	return v.String(), nil
}

func foldUnary(op operators.Operator, xv string) (string, error) {
	x, ok := new(big.Int).SetString(xv, 10)
	if !ok {
		return "", nil
	}

	v := new(big.Int)
	if op == operators.BitwiseNot {
		v.Not(x)
	} else {
		v.Neg(x)
	}
	return constantResult(v, string(op)+xv)
}

// foldInteger evaluates integer arithmetic between untyped constants so
// range and bounds checks see the result. Results must stay within int.
func foldInteger(lv string, op operators.Operator, rv string) (string, error) {
	a, aok := new(big.Int).SetString(lv, 10)
	b, bok := new(big.Int).SetString(rv, 10)
	if !aok || !bok {
		return "", nil
	}
	expr := lv + " " + string(op) + " " + rv

	v := new(big.Int)
	switch op {
	case operators.Addition:
		v.Add(a, b)
	case operators.Subtraction:
		v.Sub(a, b)
	case operators.Multiplication:
		v.Mul(a, b)
	case operators.Division, operators.Modulo:
		if b.Sign() == 0 {
			return "", fmt.Errorf("%w: %s", ErrDivisionByZero, expr)
		}
		if op == operators.Division {
			v.Quo(a, b)
		} else {
			v.Rem(a, b)
		}
	case operators.LeftShift, operators.RightShift:
		if b.Sign() < 0 || b.Cmp(big.NewInt(31)) > 0 {
			return "", fmt.Errorf("%w: shift count of %s", ErrOverflow, expr)
		}
		if op == operators.LeftShift {
			v.Lsh(a, uint(b.Int64()))
		} else {
			v.Rsh(a, uint(b.Int64()))
		}
	case operators.BitwiseAnd:
		v.And(a, b)
	case operators.BitwiseOr:
		v.Or(a, b)
	case operators.BitwiseXor:
		v.Xor(a, b)
	case operators.Exponentiation:
		return foldPower(a, b, expr)
	default:
		return "", nil
	}

	return constantResult(v, expr)
}

// foldPower mirrors tern::ipow, which yields 1 for negative exponents.
func foldPower(base, exp *big.Int, expr string) (string, error) {
	v := big.NewInt(1)
	if exp.Sign() <= 0 {
		return v.String(), nil
	}
	if base.CmpAbs(v) <= 0 {
		if base.Sign() < 0 && exp.Bit(0) == 1 {
			return "-1", nil
		}
		if base.Sign() == 0 {
			return "0", nil
		}
		return "1", nil
	}

	for i := int64(0); i < exp.Int64(); i++ {
		v.Mul(v, base)
		if _, err := constantResult(v, expr); err != nil {
			return "", err
		}
	}
	return v.String(), nil
}
