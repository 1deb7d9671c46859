package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/repr"
	"github.com/rhino1998/tern/pkg/compiler"
	"github.com/rhino1998/tern/pkg/lexer"
	"github.com/rhino1998/tern/pkg/parser"
	"github.com/urfave/cli/v3"
	"github.com/ztrue/tracerr"
)

const configName = "tern.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := &cli.Command{
		Name:  "tern",
		Usage: "Translate tern source code to C++",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write a default " + configName + " into a new project directory",
				ArgsUsage: "<dir>",
				Action: func(ctx context.Context, c *cli.Command) error {
					dir := c.Args().First()
					if dir == "" {
						dir = "."
					}

					err := os.MkdirAll(dir, 0o755)
					if err != nil {
						return fmt.Errorf("failed to create project directory: %w", err)
					}

					out, err := os.OpenFile(filepath.Join(dir, configName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
					if err != nil {
						return fmt.Errorf("failed to create config: %w", err)
					}
					defer out.Close()

					return compiler.WriteConfig(out, compiler.DefaultConfig())
				},
			},
			{
				Name:      "build",
				Usage:     "Translate a tern file or directory into C++",
				ArgsUsage: "<file or dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "project config, defaults to " + configName + " next to the sources",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output directory",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "print a stack trace for errors",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					err := build(ctx, c)
					if err != nil && c.Bool("trace") {
						tracerr.PrintSourceColor(err)
					}
					return err
				},
			},
			{
				Name:      "tokens",
				Usage:     "Print the tokens of a tern file",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, c *cli.Command) error {
					src, err := readArg(c)
					if err != nil {
						return err
					}

					groups, err := lexer.Lex(src, c.Args().First())
					if err != nil {
						return err
					}

					fmt.Println(repr.String(groups, repr.Indent("  ")))
					return nil
				},
			},
			{
				Name:      "ast",
				Usage:     "Print the parsed statements of a tern file",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, c *cli.Command) error {
					src, err := readArg(c)
					if err != nil {
						return err
					}

					groups, err := lexer.Lex(src, c.Args().First())
					if err != nil {
						return err
					}

					stmts, err := parser.Parse(groups)
					if err != nil {
						return err
					}

					for _, stmt := range stmts {
						fmt.Printf("%s: %s\n", stmt.Position(), stmt)
					}
					return nil
				},
			},
			{
				Name:      "config",
				Usage:     "Print the effective project config",
				ArgsUsage: "[file]",
				Action: func(ctx context.Context, c *cli.Command) error {
					config, err := loadConfig(c.Args().First())
					if err != nil {
						return err
					}

					err = config.Validate(newLogger(c))
					if err != nil {
						return err
					}

					fmt.Println(repr.String(config, repr.Indent("  ")))
					return nil
				},
			},
		},
	}

	err := cmd.Run(ctx, os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}

func newLogger(c *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func readArg(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("must provide exactly one tern file as argument")
	}

	src, err := os.ReadFile(c.Args().First())
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(src), nil
}

// loadConfig reads a project config. A missing file yields the defaults.
func loadConfig(name string) (compiler.Config, error) {
	if name == "" {
		name = configName
	}

	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return compiler.DefaultConfig(), nil
	} else if err != nil {
		return compiler.Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return compiler.LoadConfig(f)
}

func build(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("must provide one tern file or directory as argument")
	}

	path := c.Args().First()
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	dir, files := path, []string{}
	if stat.IsDir() {
		matches, err := filepath.Glob(filepath.Join(path, "*"+compiler.SourceExt))
		if err != nil {
			return fmt.Errorf("failed to find tern files in directory: %w", err)
		}
		for _, match := range matches {
			files = append(files, filepath.Base(match))
		}
	} else {
		dir, files = filepath.Dir(path), []string{filepath.Base(path)}
	}

	configPath := c.String("config")
	if configPath == "" {
		configPath = filepath.Join(dir, configName)
	}
	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	config.Src = os.DirFS(dir)
	config.Files = files
	if output := c.String("output"); output != "" {
		config.Output = output
	} else if !filepath.IsAbs(config.Output) {
		config.Output = filepath.Join(dir, config.Output)
	}

	logger := newLogger(c)

	comp, err := compiler.New(logger, config)
	if err != nil {
		return fmt.Errorf("failed to initialize compiler: %w", err)
	}

	out, err := comp.Compile(ctx)
	if err != nil {
		return err
	}

	err = os.MkdirAll(config.Output, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, name := range out.Names() {
		err := os.WriteFile(filepath.Join(config.Output, name), []byte(out.Files[name]), 0o644)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		logger.Info("wrote output", "file", name)
	}

	return os.WriteFile(filepath.Join(config.Output, compiler.HeaderName), []byte(compiler.RuntimeHeader), 0o644)
}
