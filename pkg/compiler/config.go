package compiler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"gopkg.in/yaml.v3"
)

type ShadowPolicy string

const (
	ShadowAllow  ShadowPolicy = "allow"
	ShadowWarn   ShadowPolicy = "warn"
	ShadowForbid ShadowPolicy = "forbid"
)

const (
	DefaultOutput = "build"
	DefaultIndent = 4
)

type Config struct {
	Src fs.FS `yaml:"-"`

	Files     []string     `yaml:"files,omitempty"`
	Output    string       `yaml:"output,omitempty"`
	Shadowing ShadowPolicy `yaml:"shadowing,omitempty"`
	Includes  []string     `yaml:"includes,omitempty"`
	Indent    int          `yaml:"indent,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Output:    DefaultOutput,
		Shadowing: ShadowWarn,
		Indent:    DefaultIndent,
	}
}

// LoadConfig reads a yaml project file over the defaults. Unknown keys are
// rejected.
func LoadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return config, nil
}

func WriteConfig(w io.Writer, config Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func (c *Config) Validate(logger *slog.Logger) error {
	switch c.Shadowing {
	case "":
		logger.Debug("no shadowing policy configured", "default", ShadowWarn)
		c.Shadowing = ShadowWarn
	case ShadowAllow, ShadowWarn, ShadowForbid:
	default:
		return fmt.Errorf("invalid shadowing policy %q", c.Shadowing)
	}

	if c.Indent < 0 {
		return fmt.Errorf("invalid indent %d", c.Indent)
	} else if c.Indent == 0 {
		c.Indent = DefaultIndent
	}

	if c.Output == "" {
		c.Output = DefaultOutput
	}

	if len(c.Files) > 0 && c.Src == nil {
		return fmt.Errorf("%d source files configured without a source filesystem", len(c.Files))
	}

	return nil
}
