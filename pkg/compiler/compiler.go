package compiler

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/rhino1998/tern/pkg/lexer"
	"github.com/rhino1998/tern/pkg/parser"
	"github.com/ztrue/tracerr"
)

// SourceExt is the extension of tern source files.
const SourceExt = ".tn"

type source struct {
	name string
	text string
}

type Compiler struct {
	logger *slog.Logger
	Config Config

	sources []source
}

func New(logger *slog.Logger, config Config) (*Compiler, error) {
	err := config.Validate(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to validate compiler config: %w", err)
	}

	return &Compiler{
		logger: logger,
		Config: config,
	}, nil
}

// AddFile queues a source file in addition to those listed in the config.
func (c *Compiler) AddFile(name string, r io.Reader) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", name, err)
	}

	c.sources = append(c.sources, source{name: name, text: string(text)})
	return nil
}

func (c *Compiler) readSource(name string) (source, error) {
	stat, err := fs.Stat(c.Config.Src, name)
	if err != nil {
		return source{}, err
	}
	if stat.IsDir() {
		return source{}, fmt.Errorf("%q is %w", name, ErrNotAFile)
	}

	text, err := fs.ReadFile(c.Config.Src, name)
	if err != nil {
		return source{}, err
	}

	return source{name: name, text: string(text)}, nil
}

// CompileSource translates one file and returns the body of its output.
func (c *Compiler) CompileSource(ctx context.Context, name, src string) (string, error) {
	groups, err := lexer.Lex(src, name)
	if err != nil {
		return "", err
	}
	c.logger.DebugContext(ctx, "lexed file", "file", name, "statements", len(groups))

	stmts, err := parser.Parse(groups)
	if err != nil {
		return "", err
	}

	gen := NewGenerator(c.logger, c.Config)
	body, err := gen.Generate(stmts)
	if err != nil {
		return "", err
	}
	c.logger.DebugContext(ctx, "generated file", "file", name, "bytes", len(body))

	return body, nil
}

// Output maps output file names to their contents.
type Output struct {
	Files map[string]string
}

func (o *Output) Names() []string {
	names := make([]string, 0, len(o.Files))
	for name := range o.Files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OutputName is the name of the file generated for a source file.
func OutputName(name string) string {
	return strings.TrimSuffix(path.Base(name), path.Ext(name)) + ".cpp"
}

// Compile translates every configured and added file. Nothing is returned
// unless all of them compile.
func (c *Compiler) Compile(ctx context.Context) (*Output, error) {
	errs := newErrorSet()

	sources := slices.Clone(c.sources)
	for _, name := range c.Config.Files {
		src, err := c.readSource(name)
		if err != nil {
			errs.Add(FileError{File: name, Err: err})
			continue
		}
		sources = append(sources, src)
	}

	out := &Output{Files: make(map[string]string, len(sources))}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.CompileSource(ctx, src.name, src.text)
		if err != nil {
			errs.Add(FileError{File: src.name, Err: err})
			continue
		}

		name := OutputName(src.name)
		if _, dup := out.Files[name]; dup {
			errs.Add(FileError{File: src.name, Err: fmt.Errorf("output %q is %w", name, ErrRedeclared)})
			continue
		}

		text, err := render(unit{Source: src.name, Includes: c.Config.Includes, Body: body})
		if err != nil {
			return nil, tracerr.Wrap(err)
		}
		out.Files[name] = text
	}

	if err := errs.Defer(nil); err != nil {
		return nil, tracerr.Wrap(err)
	}

	c.logger.DebugContext(ctx, "compiled", "files", len(out.Files))
	return out, nil
}
