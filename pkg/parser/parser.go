package parser

import (
	"strings"

	"github.com/rhino1998/tern/pkg/compiler/kinds"
	"github.com/rhino1998/tern/pkg/compiler/operators"
	"github.com/rhino1998/tern/pkg/lexer"
)

type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse parses every token group produced by the lexer into a statement.
func Parse(groups [][]lexer.Token) ([]*Statement, error) {
	stmts := make([]*Statement, 0, len(groups))
	for _, group := range groups {
		stmt, err := ParseStatement(group)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseStatement parses a single token group. Comments are skipped and a
// missing trailing EOF is supplied.
func ParseStatement(group []lexer.Token) (*Statement, error) {
	toks := make([]lexer.Token, 0, len(group)+1)
	for _, tok := range group {
		if tok.Kind == lexer.EOF {
			break
		}
		if tok.Kind == lexer.Comment {
			continue
		}
		toks = append(toks, tok)
	}

	end := lexer.Token{Kind: lexer.EOF}
	if len(group) > 0 {
		last := group[len(group)-1]
		end.Pos = last.Pos
		if last.Kind != lexer.EOF {
			end.Pos.Column += len(last.Text)
		}
	}
	toks = append(toks, end)

	p := &Parser{toks: toks}
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	stmt.link()

	return stmt, nil
}

func (p *Parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) next() lexer.Token {
	tok := p.toks[p.pos]
	if tok.Kind != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) is(kind lexer.Kind, texts ...string) bool {
	return p.peek().Is(kind, texts...)
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == lexer.EOF
}

// opensBlock reports whether the next token is a brace ending the statement.
func (p *Parser) opensBlock() bool {
	return p.is(lexer.Punct, "{") && p.toks[p.pos+1].Kind == lexer.EOF
}

func (p *Parser) expect(kind lexer.Kind, text string, expected string) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind || text != "" && tok.Text != text {
		return tok, unexpected(tok, expected)
	}
	return p.next(), nil
}

func (p *Parser) end() error {
	if !p.atEnd() {
		return unexpected(p.peek(), "end of statement")
	}
	return nil
}

func (p *Parser) blockOpen(s *Statement) error {
	if !p.opensBlock() {
		return unexpected(p.peek(), "{ at end of line")
	}
	p.next()
	s.Opens = true
	return nil
}

func (p *Parser) statement() (*Statement, error) {
	s := &Statement{base: base{pos: p.peek().Pos}}

	if p.is(lexer.Punct, "}") {
		p.next()
		s.Closes = true
		if p.atEnd() {
			return s, nil
		}
		if !p.is(lexer.Keyword, "else") {
			return nil, unexpected(p.peek(), "else or end of statement")
		}
	}

	if p.atEnd() {
		return s, nil
	}

	var err error
	tok := p.peek()
	switch {
	case tok.Is(lexer.Keyword, "else"):
		if !s.Closes {
			return nil, unexpected(tok, "statement")
		}
		err = p.elseBranch(s)
	case tok.Is(lexer.Keyword, "main"):
		p.next()
		s.Keyword = tok.Text
		err = p.blockOpen(s)
	case tok.Is(lexer.Keyword, "if", "while"):
		err = p.conditional(s)
	case tok.Is(lexer.Keyword, "for"):
		err = p.forLoop(s)
	case tok.Is(lexer.Keyword, "fun"):
		err = p.function(s)
	case tok.Is(lexer.Keyword, "struct"):
		err = p.structure(s)
	case tok.Is(lexer.Keyword, "return"):
		err = p.returnStatement(s)
	case tok.Is(lexer.Keyword, "break", "continue"):
		p.next()
		s.Keyword = tok.Text
		err = p.end()
	default:
		err = p.expressionStatement(s)
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (p *Parser) elseBranch(s *Statement) error {
	p.next()
	s.Keyword = "else"
	if p.is(lexer.Keyword, "if") {
		p.next()
		s.Keyword = "else if"
		cond, err := p.expression(operators.PrecedenceLogicalOr)
		if err != nil {
			return err
		}
		s.Nodes = []Node{cond}
	}
	return p.blockOpen(s)
}

func (p *Parser) conditional(s *Statement) error {
	s.Keyword = p.next().Text
	cond, err := p.expression(operators.PrecedenceLogicalOr)
	if err != nil {
		return err
	}
	s.Nodes = []Node{cond}
	return p.blockOpen(s)
}

func (p *Parser) forLoop(s *Statement) error {
	s.Keyword = p.next().Text
	s.Nodes = make([]Node, 3)
	for i := range s.Nodes {
		empty := i < 2 && p.is(lexer.Punct, ";") || i == 2 && p.opensBlock()
		if !empty {
			clause, err := p.expression(operators.PrecedenceAssignment)
			if err != nil {
				return err
			}
			s.Nodes[i] = clause
		}
		if i < 2 {
			if _, err := p.expect(lexer.Punct, ";", "; between for clauses"); err != nil {
				return err
			}
		}
	}
	return p.blockOpen(s)
}

func (p *Parser) returnStatement(s *Statement) error {
	s.Keyword = p.next().Text
	if !p.atEnd() {
		value, err := p.expression(operators.PrecedenceList)
		if err != nil {
			return err
		}
		s.Nodes = []Node{value}
	}
	return p.end()
}

func (p *Parser) expressionStatement(s *Statement) error {
	expr, err := p.expression(operators.PrecedenceAssignment)
	if err != nil {
		return err
	}
	s.Nodes = []Node{expr}
	return p.end()
}

func (p *Parser) function(s *Statement) error {
	s.Keyword = p.next().Text

	name, err := p.expect(lexer.Ident, "", "function name")
	if err != nil {
		return err
	}

	callee := &Variable{base: base{pos: name.Pos}, Name: name.Text, Call: true}
	var target Node = callee
	if p.is(lexer.Operator, ".") {
		dot := p.next()
		method, err := p.expect(lexer.Ident, "", "method name")
		if err != nil {
			return err
		}
		owner := &Variable{base: base{pos: name.Pos}, Name: name.Text}
		callee = &Variable{base: base{pos: method.Pos}, Name: method.Text, Call: true}
		target = &BinaryExpression{base: base{pos: dot.Pos}, Operator: operators.Member, Left: owner, Right: callee}
	}

	if p.is(lexer.Operator, "<") {
		p.next()
		for {
			generic, err := p.expect(lexer.Ident, "", "type parameter")
			if err != nil {
				return err
			}
			s.Generics = append(s.Generics, generic.Text)
			if !p.is(lexer.Punct, ",") {
				break
			}
			p.next()
		}
		if _, err := p.expect(lexer.Operator, ">", "> after type parameters"); err != nil {
			return err
		}
	}

	if _, err := p.expect(lexer.Punct, "(", "parameter list"); err != nil {
		return err
	}
	for !p.is(lexer.Punct, ")") {
		param, err := p.expect(lexer.Ident, "", "parameter name")
		if err != nil {
			return err
		}
		colon, err := p.expect(lexer.Punct, ":", ": after parameter name")
		if err != nil {
			return err
		}
		typ, err := p.typeRef()
		if err != nil {
			return err
		}
		if p.is(lexer.Operator, "...") {
			p.next()
			typ.Variadic = true
		}
		callee.Args = append(callee.Args, &BinaryExpression{
			base:     base{pos: colon.Pos},
			Operator: operators.Colon,
			Left:     &Variable{base: base{pos: param.Pos}, Name: param.Text},
			Right:    typ,
		})
		if !p.is(lexer.Punct, ",") {
			break
		}
		p.next()
	}
	if _, err := p.expect(lexer.Punct, ")", ") after parameters"); err != nil {
		return err
	}

	var returns []string
	for !p.opensBlock() {
		typ, err := p.typeRef()
		if err != nil {
			return err
		}
		returns = append(returns, typ.String())
		if !p.is(lexer.Punct, ",") {
			break
		}
		p.next()
	}
	s.Returns = strings.Join(returns, " ")
	s.Nodes = []Node{target}

	return p.blockOpen(s)
}

func (p *Parser) structure(s *Statement) error {
	s.Keyword = p.next().Text

	name, err := p.expect(lexer.Ident, "", "struct name")
	if err != nil {
		return err
	}
	s.Nodes = []Node{&Variable{base: base{pos: name.Pos}, Name: name.Text}}

	if p.is(lexer.Punct, ":") {
		p.next()
		for {
			parent, err := p.typeRef()
			if err != nil {
				return err
			}
			s.Nodes = append(s.Nodes, parent)
			if !p.is(lexer.Punct, ",") {
				break
			}
			p.next()
		}
	}

	return p.blockOpen(s)
}

// typeRef parses a type name with optional array dimensions.
func (p *Parser) typeRef() (*Type, error) {
	tok := p.peek()
	if !tok.Is(lexer.Ident) && !(tok.Kind == lexer.Keyword && kinds.IsBuiltin(tok.Text)) {
		return nil, unexpected(tok, "type")
	}
	p.next()

	t := &Type{base: base{pos: tok.Pos}, Name: tok.Text}
	if p.is(lexer.Punct, "[") {
		idx, err := p.index(false)
		if err != nil {
			return nil, err
		}
		t.Index = idx
	}
	return t, nil
}

func binaryOperator(tok lexer.Token) (operators.Operator, operators.Precedence, bool) {
	if tok.Kind != lexer.Operator && tok.Kind != lexer.Punct {
		return "", 0, false
	}
	return operators.Binary(tok.Text)
}

func isDeclaration(n Node) bool {
	switch n := n.(type) {
	case *UnaryExpression:
		return n.Operator.IsDeclaration()
	case *BinaryExpression:
		return n.Operator == operators.Colon && isDeclaration(n.Left)
	default:
		return false
	}
}

func isInitializedDeclaration(n Node) bool {
	b, ok := n.(*BinaryExpression)
	return ok && b.Operator.IsAssignment() && isDeclaration(b.Left)
}

// expression parses operators binding at least as tightly as min.
func (p *Parser) expression(min operators.Precedence) (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		if tok.Is(lexer.Operator, "++", "--") && min <= operators.PrecedencePower {
			p.next()
			left = &UnaryExpression{
				base:     base{pos: tok.Pos},
				Operator: operators.Operator(tok.Text),
				Operand:  left,
				Postfix:  true,
			}
			continue
		}

		op, prec, ok := binaryOperator(tok)
		if !ok || prec < min {
			return left, nil
		}

		if op.IsAssignment() && isInitializedDeclaration(left) {
			return nil, unexpected(tok, "end of declaration")
		}
		p.next()

		var right Node
		switch {
		case op == operators.Member:
			right, err = p.primary()
		case op.IsAssignment() && isDeclaration(left):
			right, err = p.expression(operators.PrecedenceList)
		case op.RightAssociative():
			right, err = p.expression(prec)
		default:
			right, err = p.expression(prec + 1)
		}
		if err != nil {
			return nil, err
		}

		left = &BinaryExpression{base: base{pos: tok.Pos}, Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) unary() (Node, error) {
	tok := p.peek()
	if tok.Kind == lexer.Operator || tok.Kind == lexer.Keyword {
		if op, prec, ok := operators.Unary(tok.Text); ok {
			p.next()
			operand, err := p.expression(prec)
			if err != nil {
				return nil, err
			}
			return &UnaryExpression{base: base{pos: tok.Pos}, Operator: op, Operand: operand}, nil
		}
	}
	return p.primary()
}

func (p *Parser) primary() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case lexer.Int, lexer.Float, lexer.Imaginary:
		return p.number(tok)
	case lexer.Char:
		return &CharLiteral{base: base{pos: tok.Pos}, Text: tok.Text}, nil
	case lexer.String:
		return &StringLiteral{base: base{pos: tok.Pos}, Text: tok.Text}, nil
	case lexer.Ident:
		return p.variable(tok)
	case lexer.Keyword:
		switch {
		case tok.Text == "true" || tok.Text == "false":
			return &BooleanLiteral{base: base{pos: tok.Pos}, Value: tok.Text == "true"}, nil
		case tok.Text == "nullptr":
			return &Nullptr{base: base{pos: tok.Pos}}, nil
		case kinds.IsBuiltin(tok.Text):
			return p.typeValue(tok)
		}
	case lexer.Punct:
		switch tok.Text {
		case "(":
			expr, err := p.expression(operators.PrecedenceLogicalOr)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Punct, ")", ")"); err != nil {
				return nil, err
			}
			return expr, nil
		case "{":
			if !p.atEnd() {
				arr, err := p.array(tok)
				if err != nil {
					return nil, err
				}
				return arr, nil
			}
		}
	}
	return nil, unexpected(tok, "expression")
}

func (p *Parser) number(tok lexer.Token) (Node, error) {
	n := &NumberLiteral{base: base{pos: tok.Pos}, Text: tok.Text}

	var err error
	switch {
	case tok.Kind == lexer.Int:
		n.Kind = Integer
		n.Int, err = ParseInteger(tok.Text)
	case tok.Kind == lexer.Float && strings.HasSuffix(tok.Text, "f"):
		n.Kind = Float32
		n.Float, err = parseFloat(strings.TrimSuffix(tok.Text, "f"), 32)
	case tok.Kind == lexer.Float:
		n.Kind = Float64
		n.Float, err = parseFloat(tok.Text, 64)
	case strings.HasSuffix(tok.Text, "if"):
		n.Kind = Imaginary64
		n.Float, err = parseFloat(strings.TrimSuffix(tok.Text, "if"), 32)
	default:
		n.Kind = Imaginary128
		n.Float, err = parseFloat(strings.TrimSuffix(tok.Text, "i"), 64)
	}
	if err != nil {
		return nil, &PositionError{Pos: tok.Pos, Err: err}
	}

	return n, nil
}

func (p *Parser) variable(tok lexer.Token) (Node, error) {
	v := &Variable{base: base{pos: tok.Pos}, Name: tok.Text}
	if p.is(lexer.Punct, "(") {
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		v.Call, v.Args = true, args
	}
	if p.is(lexer.Punct, "[") {
		idx, err := p.index(true)
		if err != nil {
			return nil, err
		}
		v.Index = idx
	}
	return v, nil
}

// typeValue parses a built-in type name used as a value: a conversion call
// or the type of an array literal.
func (p *Parser) typeValue(tok lexer.Token) (Node, error) {
	t := &Type{base: base{pos: tok.Pos}, Name: tok.Text}
	if p.is(lexer.Punct, "[") {
		idx, err := p.index(true)
		if err != nil {
			return nil, err
		}
		t.Index = idx
	}
	if p.is(lexer.Punct, "(") {
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		t.Call, t.Args = true, args
	}
	return t, nil
}

func (p *Parser) args() ([]Node, error) {
	p.next()
	var args []Node
	for !p.is(lexer.Punct, ")") {
		arg, err := p.expression(operators.PrecedenceLogicalOr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.is(lexer.Punct, ",") {
			break
		}
		p.next()
	}
	if _, err := p.expect(lexer.Punct, ")", ", or )"); err != nil {
		return nil, err
	}
	return args, nil
}

// index parses a chain of brackets. With allowArray, a brace literal
// directly after the chain is attached to its last link.
func (p *Parser) index(allowArray bool) (*Index, error) {
	var head, tail *Index
	for p.is(lexer.Punct, "[") {
		open := p.next()
		idx := &Index{base: base{pos: open.Pos}}
		if !p.is(lexer.Punct, "]") {
			expr, err := p.expression(operators.PrecedenceLogicalOr)
			if err != nil {
				return nil, err
			}
			idx.Expr = expr
		}
		if _, err := p.expect(lexer.Punct, "]", "]"); err != nil {
			return nil, err
		}
		if head == nil {
			head = idx
		} else {
			tail.Next = idx
		}
		tail = idx
	}

	if allowArray && p.is(lexer.Punct, "{") && !p.opensBlock() {
		arr, err := p.array(p.next())
		if err != nil {
			return nil, err
		}
		tail.Array = arr
	}

	return head, nil
}

func (p *Parser) array(open lexer.Token) (*Array, error) {
	arr := &Array{base: base{pos: open.Pos}}
	for !p.is(lexer.Punct, "}") {
		elem, err := p.expression(operators.PrecedenceLogicalOr)
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, elem)
		if !p.is(lexer.Punct, ",") {
			break
		}
		p.next()
	}
	if _, err := p.expect(lexer.Punct, "}", ", or }"); err != nil {
		return nil, err
	}
	return arr, nil
}
