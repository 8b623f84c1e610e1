// Package driver loads aps.yml, the optional per-project configuration that
// supplies defaults for the aps command.
package driver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file FindConfig looks for.
const ConfigFileName = "aps.yml"

// DefaultThreshold mirrors the interpreter's default collection threshold.
const DefaultThreshold = 256

// Diagnostic output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the parsed contents of aps.yml.
type Config struct {
	Path        string
	GC          GCConfig
	Diagnostics DiagnosticsConfig
	Input       InputConfig
	Random      RandomConfig
	Logging     LoggingConfig
}

// GCConfig controls the collector. A Threshold of 0 disables automatic
// collection. Stats prints heap statistics after each run.
type GCConfig struct {
	Threshold int
	Stats     bool
}

// DiagnosticsConfig controls how diagnostics are printed.
type DiagnosticsConfig struct {
	Format string
	Color  string
}

// InputConfig controls INPUT.
type InputConfig struct {
	Echo bool
}

// RandomConfig controls RANDOM. A zero Seed means time-seeded.
type RandomConfig struct {
	Seed uint64
}

// LoggingConfig controls the structured debug log on stderr.
type LoggingConfig struct {
	Debug bool
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ErrNoConfig is returned by FindConfig when no aps.yml exists.
var ErrNoConfig = errors.New("config: no " + ConfigFileName + " found")

// DefaultConfig returns the settings used when no aps.yml is present.
func DefaultConfig() *Config {
	return &Config{
		GC:          GCConfig{Threshold: DefaultThreshold},
		Diagnostics: DiagnosticsConfig{Format: FormatText, Color: ColorAuto},
	}
}

// FindConfig searches start and its parents for aps.yml. start may name a
// file, in which case the search begins in its directory.
func FindConfig(start string) (string, error) {
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("config: stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}

// LoadConfig parses aps.yml from disk. Fields left out keep their defaults;
// an empty file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg := raw.toConfig(absPath)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadNearest finds and loads the aps.yml governing start, falling back to
// DefaultConfig when there is none.
func LoadNearest(start string) (*Config, error) {
	path, err := FindConfig(start)
	if errors.Is(err, ErrNoConfig) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return LoadConfig(path)
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.GC.Threshold < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("gc.threshold must be zero or positive, got %d", c.GC.Threshold))
	}
	if !ValidFormat(c.Diagnostics.Format) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("diagnostics.format must be %q or %q, got %q", FormatText, FormatJSON, c.Diagnostics.Format))
	}
	if !ValidColor(c.Diagnostics.Color) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("diagnostics.color must be %q, %q or %q, got %q", ColorAuto, ColorAlways, ColorNever, c.Diagnostics.Color))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// ValidFormat reports whether format names a diagnostics format.
func ValidFormat(format string) bool {
	return format == FormatText || format == FormatJSON
}

// ValidColor reports whether mode names a color mode.
func ValidColor(mode string) bool {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

type configFile struct {
	GC *struct {
		Threshold *int `yaml:"threshold"`
		Stats     bool `yaml:"stats"`
	} `yaml:"gc"`
	Diagnostics *struct {
		Format string `yaml:"format"`
		Color  string `yaml:"color"`
	} `yaml:"diagnostics"`
	Input *struct {
		Echo bool `yaml:"echo"`
	} `yaml:"input"`
	Random *struct {
		Seed uint64 `yaml:"seed"`
	} `yaml:"random"`
	Logging *struct {
		Debug bool `yaml:"debug"`
	} `yaml:"logging"`
}

func (cf configFile) toConfig(path string) *Config {
	cfg := DefaultConfig()
	cfg.Path = path
	if cf.GC != nil {
		if cf.GC.Threshold != nil {
			cfg.GC.Threshold = *cf.GC.Threshold
		}
		cfg.GC.Stats = cf.GC.Stats
	}
	if cf.Diagnostics != nil {
		if format := strings.TrimSpace(cf.Diagnostics.Format); format != "" {
			cfg.Diagnostics.Format = strings.ToLower(format)
		}
		if color := strings.TrimSpace(cf.Diagnostics.Color); color != "" {
			cfg.Diagnostics.Color = strings.ToLower(color)
		}
	}
	if cf.Input != nil {
		cfg.Input.Echo = cf.Input.Echo
	}
	if cf.Random != nil {
		cfg.Random.Seed = cf.Random.Seed
	}
	if cf.Logging != nil {
		cfg.Logging.Debug = cf.Logging.Debug
	}
	return cfg
}
