// Package config loads markup tool settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/markup/format"
	"github.com/dhamidi/markup/parser"
)

// EnvVar names the environment variable consulted for a config path.
const EnvVar = "MARKUP_CONFIG"

var log = commonlog.GetLogger("markup.config")

// Config holds the complete tool configuration.
type Config struct {
	Parser    ParserConfig    `toml:"parser" yaml:"parser"`
	Output    OutputConfig    `toml:"output" yaml:"output"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	UI        UIConfig        `toml:"ui" yaml:"ui"`
	Workspace WorkspaceConfig `toml:"workspace" yaml:"workspace"`

	path string
}

type ParserConfig struct {
	MaxDepth           int  `toml:"max_depth" yaml:"max_depth"`
	PreserveWhitespace bool `toml:"preserve_whitespace" yaml:"preserve_whitespace"`
	Positions          bool `toml:"positions" yaml:"positions"`
}

type OutputConfig struct {
	Format string `toml:"format" yaml:"format"`
	Color  bool   `toml:"color" yaml:"color"`
	Indent int    `toml:"indent" yaml:"indent"`
}

type LogConfig struct {
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	File      string `toml:"file" yaml:"file"`
}

type UIConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

type WorkspaceConfig struct {
	Extensions   []string `toml:"extensions" yaml:"extensions"`
	PollInterval Duration `toml:"poll_interval" yaml:"poll_interval"`
}

// Duration wraps time.Duration so it can be written as "500ms" in files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration file at path. The format is chosen by
// extension: .yaml and .yml are YAML, everything else is TOML.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := parse(data, detectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	log.Infof("loaded configuration from %s", path)
	return cfg, nil
}

// LoadFromEnv loads the file named by MARKUP_CONFIG, or the first default
// location that exists. When no file is found the defaults are returned.
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	log.Debug("no config file found, using defaults")
	return Default(), nil
}

// Resolve loads path when it is set and falls back to LoadFromEnv.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	return LoadFromEnv()
}

// DefaultPaths lists the locations searched when MARKUP_CONFIG is unset.
func DefaultPaths() []string {
	paths := []string{"./markup.toml", "./.markup.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "markup", "config.toml"))
	}
	return paths
}

// LoadFromString parses content in the given format ("toml" or "yaml").
func LoadFromString(content, format string) (*Config, error) {
	cfg, err := parse([]byte(content), format)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

func parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = parser.DefaultMaxDepth
	}

	if c.Output.Format == "" {
		c.Output.Format = "tree"
	}
	if c.Output.Indent == 0 {
		c.Output.Indent = 2
	}

	c.Log.File = os.ExpandEnv(c.Log.File)

	if c.UI.Addr == "" {
		c.UI.Addr = "localhost:8080"
	}

	if len(c.Workspace.Extensions) == 0 {
		c.Workspace.Extensions = []string{".html", ".xml", ".markup"}
	}
	if c.Workspace.PollInterval.Duration == 0 {
		c.Workspace.PollInterval.Duration = time.Second
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Parser.MaxDepth < 0 {
		return fmt.Errorf("parser.max_depth must not be negative, got %d", c.Parser.MaxDepth)
	}
	if !slices.Contains(format.Names(), c.Output.Format) {
		return fmt.Errorf("output.format must be one of %s, got %q", strings.Join(format.Names(), ", "), c.Output.Format)
	}
	if c.Output.Indent < 0 {
		return fmt.Errorf("output.indent must not be negative, got %d", c.Output.Indent)
	}
	if len(c.Workspace.Extensions) == 0 {
		return errors.New("workspace.extensions must not be empty")
	}
	for _, ext := range c.Workspace.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("workspace.extensions: %q must start with a dot", ext)
		}
	}
	if c.Workspace.PollInterval.Duration < 0 {
		return fmt.Errorf("workspace.poll_interval must be positive, got %s", c.Workspace.PollInterval.Duration)
	}
	return nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// ParserOptions converts the [parser] section into parser options.
func (c *Config) ParserOptions() []parser.Option {
	opts := []parser.Option{parser.WithMaxDepth(c.Parser.MaxDepth)}
	if c.Parser.Positions {
		opts = append(opts, parser.WithPositions())
	}
	if c.Parser.PreserveWhitespace {
		opts = append(opts, parser.WithPreserveWhitespace())
	}
	return opts
}

// FormatOptions converts the [output] section into encoder options.
func (c *Config) FormatOptions() format.Options {
	return format.Options{Color: c.Output.Color, Indent: c.Output.Indent}
}

// ConfigureLogging applies the [log] section to commonlog. extra is added
// to the configured verbosity, typically from repeated -v flags.
func (c *Config) ConfigureLogging(extra int) {
	var path *string
	if c.Log.File != "" {
		path = &c.Log.File
	}
	commonlog.Configure(c.Log.Verbosity+extra, path)
}
