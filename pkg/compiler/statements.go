package compiler

import (
	"fmt"
	"strings"

	"github.com/rhino1998/tern/pkg/compiler/operators"
	"github.com/rhino1998/tern/pkg/parser"
)

func (g *Generator) topLevel(what string) error {
	if g.Depth() != 0 {
		return fmt.Errorf("%w: %s inside a %s", ErrMisplaced, what, g.top().kind)
	}
	return nil
}

func (g *Generator) mainBlock() (string, error) {
	if err := g.topLevel("main"); err != nil {
		return "", err
	}
	if g.hasMain {
		return "", fmt.Errorf("main is %w", ErrRedeclared)
	}
	g.hasMain = true

	b := g.push(blockMain)
	b.fun = &FunType{Name: "main", Return: "i32"}
	if err := b.scope.AddBound("argc", "i32"); err != nil {
		return "", err
	}

	return "int main(int argc, char **argv) {\n", nil
}

func (g *Generator) function(stmt *parser.Statement) (string, error) {
	if err := g.topLevel("function declaration"); err != nil {
		return "", err
	}

	var owner string
	var callee *parser.Variable
	switch target := stmt.Nodes[0].(type) {
	case *parser.Variable:
		callee = target
	case *parser.BinaryExpression:
		owner = target.Left.(*parser.Variable).Name
		callee = target.Right.(*parser.Variable)
	default:
		return "", fmt.Errorf("%w: invalid function name %s", ErrMisplaced, target)
	}

	f := &FunType{
		Owner:    owner,
		Name:     callee.Name,
		Generics: stmt.Generics,
		Return:   stmt.Returns,
		Form:     FormCall,
		Target:   identifier(callee.Name),
	}

	b := g.push(blockFunction)
	b.fun = f
	for _, generic := range stmt.Generics {
		if err := b.scope.AddType(generic); err != nil {
			return "", err
		}
	}

	var params []string
	if owner != "" {
		if !b.scope.IsStruct(owner) {
			return "", fmt.Errorf("%w %q", ErrUnknownType, owner)
		}
		f.Form = FormReceiver
		f.Target = owner + "_" + callee.Name
		params = append(params, targetType(owner)+" &self")
		if err := b.scope.AddVariable("self", owner); err != nil {
			return "", err
		}
	}

	for i, arg := range callee.Args {
		param := arg.(*parser.BinaryExpression)
		name := param.Left.(*parser.Variable).Name
		typeNode := param.Right.(*parser.Type)

		typ, err := g.typeOf(typeNode)
		if err != nil {
			return "", err
		}
		if !b.scope.CheckType(typ) {
			return "", fmt.Errorf("%w %q for parameter %q", ErrUnknownType, typ, name)
		}

		declared, spelled := typ, targetType(typ)
		if typeNode.Variadic {
			if i != len(callee.Args)-1 {
				return "", fmt.Errorf("%w: only the last parameter may be variadic", ErrMisplaced)
			}
			f.Variadic = true
			declared = typ + "[]"
			spelled = targetType(declared)
		}
		f.Params = append(f.Params, typ)

		if err := b.scope.AddVariable(name, declared); err != nil {
			return "", err
		}
		params = append(params, spelled+" "+identifier(name))
	}

	for _, ret := range tupleElems(f.Return) {
		if !b.scope.CheckType(ret) {
			g.logger.Warn("return type is not declared", "pos", g.pos.String(), "function", f.Name, "type", ret)
		}
	}

	if err := g.module().AddFunction(f); err != nil {
		return "", err
	}

	var template string
	if len(f.Generics) > 0 {
		names := make([]string, len(f.Generics))
		for i, generic := range f.Generics {
			names[i] = "typename " + identifier(generic)
		}
		template = "template <" + strings.Join(names, ", ") + "> "
	}

	return fmt.Sprintf("%s%s %s(%s) {\n", template, targetType(f.Return), f.Target, strings.Join(params, ", ")), nil
}

func (g *Generator) structure(stmt *parser.Statement) (string, error) {
	if err := g.topLevel("struct declaration"); err != nil {
		return "", err
	}

	name := stmt.Nodes[0].(*parser.Variable).Name
	if g.scope().CheckType(name) {
		return "", fmt.Errorf("type %q is %w", name, ErrRedeclared)
	}

	var parents []string
	for _, n := range stmt.Nodes[1:] {
		parent, err := g.typeOf(n)
		if err != nil {
			return "", err
		}
		if !g.scope().IsStruct(parent) {
			return "", fmt.Errorf("%w: struct %s cannot extend %q", ErrTypeMismatch, name, parent)
		}
		parents = append(parents, parent)
	}

	if err := g.module().AddType(name, parents...); err != nil {
		return "", err
	}

	b := g.push(blockStruct)
	b.name = name

	if len(parents) == 0 {
		return fmt.Sprintf("struct %s {\n", identifier(name)), nil
	}
	bases := make([]string, len(parents))
	for i, parent := range parents {
		bases[i] = identifier(parent)
	}
	return fmt.Sprintf("struct %s : %s {\n", identifier(name), strings.Join(bases, ", ")), nil
}

// field declares struct members. Both "x, y: f64" and "var x, y: f64" are
// accepted.
func (g *Generator) field(n parser.Node) (string, error) {
	var names []parser.Node
	var typeNode parser.Node

	if d, ok := splitDeclaration(n); ok {
		if d.keyword != operators.Var || d.values != nil {
			return "", fmt.Errorf("%w: struct fields are declared without initializers", ErrMisplaced)
		}
		names, typeNode = d.names, d.typ
	} else if b, ok := n.(*parser.BinaryExpression); ok && b.Operator == operators.Colon {
		names, typeNode = flatten(b.Left, operators.Comma), b.Right
	}
	if typeNode == nil {
		return "", fmt.Errorf("%w: only field declarations are allowed in a struct", ErrMisplaced)
	}

	typ, err := g.typeOf(typeNode)
	if err != nil {
		return "", err
	}
	if !g.scope().CheckType(typ) {
		return "", fmt.Errorf("%w %q", ErrUnknownType, typ)
	}

	b := g.top()
	texts := make([]string, 0, len(names))
	for _, nameNode := range names {
		name, err := declaredName(nameNode)
		if err != nil {
			return "", err
		}
		if err := g.module().AddField(b.name, name, typ); err != nil {
			return "", err
		}
		b.fields = append(b.fields, typ)
		texts = append(texts, identifier(name))
	}

	return targetType(typ) + " " + strings.Join(texts, ", ") + "\n", nil
}

// finishStruct registers the constructor of a closed struct. It takes the
// struct's own fields in declaration order.
func (g *Generator) finishStruct(b *block) error {
	return g.module().AddFunction(&FunType{
		Name:        b.name,
		Params:      b.fields,
		Return:      b.name,
		Constructor: true,
		Form:        FormInit,
		Target:      identifier(b.name),
	})
}

func (g *Generator) condition(n parser.Node) (Expression, error) {
	cond, err := g.expression(n)
	if err != nil {
		return Expression{}, err
	}
	if cond.Type != "bool" {
		return Expression{}, fmt.Errorf("%w: condition %s is %s, not bool", ErrTypeMismatch, n, cond.Type)
	}
	return cond, nil
}

func (g *Generator) conditional(stmt *parser.Statement) (string, error) {
	cond, err := g.condition(stmt.Nodes[0])
	if err != nil {
		return "", err
	}

	switch stmt.Keyword {
	case "if":
		g.push(blockIf)
		return fmt.Sprintf("if(%s) {\n", cond.Text), nil
	case "else if":
		g.push(blockIf)
		return fmt.Sprintf("} else if(%s) {\n", cond.Text), nil
	default:
		g.push(blockWhile)
		return fmt.Sprintf("while(%s) {\n", cond.Text), nil
	}
}

func (g *Generator) forLoop(stmt *parser.Statement) (string, error) {
	g.push(blockFor)

	var clauses [3]string
	for i, n := range stmt.Nodes {
		if n == nil {
			continue
		}

		var err error
		if i == 1 {
			var cond Expression
			cond, err = g.condition(n)
			clauses[i] = cond.Text
		} else {
			clauses[i], err = g.simple(n)
		}
		if err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("for(%s; %s; %s) {\n", clauses[0], clauses[1], clauses[2]), nil
}

func (g *Generator) returnStatement(stmt *parser.Statement) (string, error) {
	f := g.top().fun
	if f == nil {
		return "", fmt.Errorf("%w: return outside a function", ErrMisplaced)
	}

	if len(stmt.Nodes) == 0 {
		if !isVoid(f.Return) {
			return "", fmt.Errorf("%w: missing return value of type %s", ErrTypeMismatch, f.Return)
		}
		return "return\n", nil
	}
	if isVoid(f.Return) {
		return "", fmt.Errorf("%w: %s returns no value", ErrTypeMismatch, f.Name)
	}

	values := flatten(stmt.Nodes[0], operators.Comma)
	if len(values) == 1 {
		text, err := g.convert(values[0], f.Return)
		if err != nil {
			return "", err
		}
		return "return " + text + "\n", nil
	}

	expected := tupleElems(f.Return)
	if len(values) != len(expected) {
		return "", fmt.Errorf("%w: %d return values, %s returns %d", ErrTypeMismatch, len(values), f.Name, len(expected))
	}
	texts := make([]string, len(values))
	for i, value := range values {
		text, err := g.convert(value, expected[i])
		if err != nil {
			return "", err
		}
		texts[i] = text
	}

	return "return std::make_tuple(" + strings.Join(texts, ", ") + ")\n", nil
}

func (g *Generator) jump(stmt *parser.Statement) (string, error) {
	for i := len(g.blocks) - 1; i > 0; i-- {
		kind := g.blocks[i].kind
		if kind.isLoop() {
			return stmt.Keyword + "\n", nil
		}
		if kind == blockFunction || kind == blockMain || kind == blockStruct {
			break
		}
	}
	return "", fmt.Errorf("%w: %s outside a loop", ErrMisplaced, stmt.Keyword)
}
