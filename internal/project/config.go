package project

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"pasres/internal/trace"
)

// DefaultMaxDiagnostics caps diagnostics per file when pasres.toml is silent.
const DefaultMaxDiagnostics = 100

// DefaultInclude matches bundles anywhere below the project root.
var DefaultInclude = []string{"**.pbundle"}

// Config is the decoded pasres.toml.
type Config struct {
	Path string `toml:"-"`
	Root string `toml:"-"`

	Analysis AnalysisConfig `toml:"analysis"`
	Files    FilesConfig    `toml:"files"`
	Units    UnitsConfig    `toml:"units"`
}

type AnalysisConfig struct {
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	TraceLevel     string `toml:"trace_level"`
}

type FilesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// UnitsConfig controls how partial unit names are completed: `Classes`
// may stand for `System.Classes` when "System" is a scope name.
type UnitsConfig struct {
	ScopeNames []string          `toml:"scope_names"`
	Aliases    map[string]string `toml:"aliases"`
}

// Default returns the configuration used without pasres.toml.
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{
			Jobs:           runtime.GOMAXPROCS(0),
			MaxDiagnostics: DefaultMaxDiagnostics,
			TraceLevel:     trace.LevelOff.String(),
		},
		Files: FilesConfig{Include: append([]string(nil), DefaultInclude...)},
	}
}

// TraceLevel parses [analysis].trace_level.
func (c Config) TraceLevel() (trace.Level, error) {
	return trace.ParseLevel(strings.ToLower(strings.TrimSpace(c.Analysis.TraceLevel)))
}

// LoadConfig decodes path on top of Default and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0].String())
	}
	if meta.IsDefined("analysis", "jobs") && cfg.Analysis.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [analysis].jobs must not be negative", path)
	}
	if cfg.Analysis.Jobs == 0 {
		cfg.Analysis.Jobs = runtime.GOMAXPROCS(0)
	}
	if meta.IsDefined("analysis", "max_diagnostics") && cfg.Analysis.MaxDiagnostics <= 0 {
		return Config{}, fmt.Errorf("%s: [analysis].max_diagnostics must be positive", path)
	}
	if _, err := cfg.TraceLevel(); err != nil {
		return Config{}, fmt.Errorf("%s: [analysis].trace_level: %w", path, err)
	}
	if meta.IsDefined("files", "include") && len(cfg.Files.Include) == 0 {
		return Config{}, fmt.Errorf("%s: [files].include must not be empty", path)
	}
	if _, err := NewMatcher(cfg.Files.Include, cfg.Files.Exclude); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	for i, name := range cfg.Units.ScopeNames {
		if strings.TrimSpace(name) == "" {
			return Config{}, fmt.Errorf("%s: [units].scope_names[%d] is empty", path, i)
		}
	}
	for alias, target := range cfg.Units.Aliases {
		if strings.TrimSpace(alias) == "" || strings.TrimSpace(target) == "" {
			return Config{}, fmt.Errorf("%s: [units].aliases has an empty entry", path)
		}
	}
	return cfg, nil
}

// Discover finds pasres.toml from startDir upwards and loads it. Without a
// config file the defaults apply and Root is startDir.
func Discover(startDir string) (Config, bool, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, false, err
	}
	if !ok {
		cfg := Default()
		cfg.Root = startDir
		return cfg, false, nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, true, err
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, true, nil
}
