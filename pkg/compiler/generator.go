package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhino1998/tern/pkg/lexer"
	"github.com/rhino1998/tern/pkg/parser"
)

type blockKind int

const (
	blockModule blockKind = iota
	blockMain
	blockFunction
	blockStruct
	blockIf
	blockElse
	blockWhile
	blockFor
)

func (k blockKind) String() string {
	switch k {
	case blockModule:
		return "module"
	case blockMain:
		return "main block"
	case blockFunction:
		return "function body"
	case blockStruct:
		return "struct body"
	case blockIf:
		return "if block"
	case blockElse:
		return "else block"
	case blockWhile:
		return "while loop"
	case blockFor:
		return "for loop"
	default:
		return "<unknown block>"
	}
}

func (k blockKind) isLoop() bool {
	return k == blockWhile || k == blockFor
}

type block struct {
	kind  blockKind
	scope Scope
	pos   lexer.Position

	fun    *FunType
	name   string
	fields []string
}

// Generator translates statements one at a time, keeping the block and
// scope state that spans them.
type Generator struct {
	logger *slog.Logger
	config Config

	root    Scope
	blocks  []*block
	pos     lexer.Position
	hasMain bool
	failed  parser.Node
}

func NewGenerator(logger *slog.Logger, config Config) *Generator {
	if config.Indent <= 0 {
		config.Indent = DefaultIndent
	}
	if config.Shadowing == "" {
		config.Shadowing = ShadowWarn
	}

	root := NewRootScope()
	return &Generator{
		logger: logger,
		config: config,
		root:   root,
		blocks: []*block{{kind: blockModule, scope: root.Child()}},
	}
}

func (g *Generator) top() *block {
	return g.blocks[len(g.blocks)-1]
}

func (g *Generator) scope() Scope {
	return g.top().scope
}

// Depth is the number of open blocks.
func (g *Generator) Depth() int {
	return len(g.blocks) - 1
}

func (g *Generator) push(kind blockKind) *block {
	b := &block{
		kind:  kind,
		scope: g.scope().Child(),
		pos:   g.pos,
		fun:   g.top().fun,
	}
	g.blocks = append(g.blocks, b)
	return b
}

func (g *Generator) pop() (*block, error) {
	if g.Depth() == 0 {
		return nil, fmt.Errorf("%w: } without an open block", ErrUnbalanced)
	}
	b := g.top()
	b.scope.Release()
	g.blocks = g.blocks[:len(g.blocks)-1]
	return b, nil
}

// module returns the scope top level declarations go into.
func (g *Generator) module() Scope {
	return g.blocks[0].scope
}

// Generate translates a whole file. Lines are indented by block depth and
// terminated with a semicolon unless they open or close a block.
func (g *Generator) Generate(stmts []*parser.Statement) (string, error) {
	var b strings.Builder
	for _, stmt := range stmts {
		depth := g.Depth()
		if stmt.Closes {
			depth--
		}

		text, err := g.Statement(stmt)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}

		b.WriteString(strings.Repeat(" ", max(depth, 0)*g.config.Indent))
		b.WriteString(terminate(text))
	}

	if err := g.Finish(); err != nil {
		return "", err
	}

	return b.String(), nil
}

// Finish reports a block left open at the end of input.
func (g *Generator) Finish() error {
	if g.Depth() > 0 {
		b := g.top()
		return fmt.Errorf("%s: %w: %s is never closed", b.pos, ErrUnbalanced, b.kind)
	}
	return nil
}

func terminate(text string) string {
	line := strings.TrimSuffix(text, "\n")
	if !strings.HasSuffix(line, "{") && !strings.HasSuffix(line, "}") && !strings.HasSuffix(line, ";") {
		line += ";"
	}
	return line + "\n"
}

// Statement translates one statement to its unindented output line.
func (g *Generator) Statement(stmt *parser.Statement) (string, error) {
	g.pos = stmt.Position()
	g.failed = nil

	text, err := g.statement(stmt)
	if err != nil {
		return "", &StatementError{
			Pos:       stmt.Position(),
			Statement: stmt.String(),
			Context:   enclosing(stmt, g.failed),
			Err:       err,
		}
	}

	return text, nil
}

// enclosing renders the expression directly around n, or nothing when that
// is the whole statement.
func enclosing(stmt *parser.Statement, n parser.Node) string {
	if n == nil {
		return ""
	}
	parent := stmt.Parent(n)
	if parent == nil || parent == parser.Node(stmt) || stmt.Parent(parent) == parser.Node(stmt) {
		return ""
	}
	return parent.String()
}

func (g *Generator) statement(stmt *parser.Statement) (string, error) {
	if stmt.Closes {
		closed, err := g.pop()
		if err != nil {
			return "", err
		}

		if stmt.Keyword == "" {
			if closed.kind == blockStruct {
				return "};\n", g.finishStruct(closed)
			}
			return "}\n", nil
		}

		if closed.kind != blockIf {
			return "", fmt.Errorf("%w: %s must follow an if block, not a %s", ErrMisplaced, stmt.Keyword, closed.kind)
		}
	}

	switch stmt.Keyword {
	case "":
		return g.simpleStatement(stmt)
	case "main":
		return g.mainBlock()
	case "fun":
		return g.function(stmt)
	case "struct":
		return g.structure(stmt)
	case "if", "else if", "while":
		return g.conditional(stmt)
	case "else":
		g.push(blockElse)
		return "} else {\n", nil
	case "for":
		return g.forLoop(stmt)
	case "return":
		return g.returnStatement(stmt)
	case "break", "continue":
		return g.jump(stmt)
	default:
		return "", fmt.Errorf("%w: unsupported statement %q", ErrMisplaced, stmt.Keyword)
	}
}

// simpleStatement handles expression statements and struct fields.
func (g *Generator) simpleStatement(stmt *parser.Statement) (string, error) {
	if len(stmt.Nodes) == 0 {
		return "", nil
	}

	if g.top().kind == blockStruct {
		return g.field(stmt.Nodes[0])
	}

	text, err := g.simple(stmt.Nodes[0])
	if err != nil {
		return "", err
	}
	return text + "\n", nil
}

// simple translates a node that stands on its own: a declaration, an
// assignment, an increment or a call.
func (g *Generator) simple(n parser.Node) (string, error) {
	if declares(n) {
		return g.declaration(n)
	}

	if b, ok := n.(*parser.BinaryExpression); ok && b.Operator.IsAssignment() {
		return g.assignment(b)
	}

	e, err := g.expression(n)
	if err != nil {
		return "", err
	}
	if !e.effect {
		return "", fmt.Errorf("%w: %s is evaluated but not used", ErrMisplaced, n)
	}
	return e.Text, nil
}

func (g *Generator) warnNarrowing(from, to string) {
	g.logger.Warn("narrowing conversion", "pos", g.pos.String(), "from", from, "to", to)
}
