package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kokistudios/playsh/internal/boundary"
	"github.com/kokistudios/playsh/internal/exec"
)

// SandboxConfig declares the playground: root directories (glob patterns,
// expanded once at startup) and the home directory the shell starts in.
type SandboxConfig struct {
	Roots []string `yaml:"roots,omitempty"`
	Home  string   `yaml:"home,omitempty"`
}

// LimitsConfig holds execution limits.
type LimitsConfig struct {
	MaxPipelineDepth int `yaml:"max_pipeline_depth"`
	MaxOutputLines   int `yaml:"max_output_lines"`
}

// Config holds playsh configuration.
type Config struct {
	Version string        `yaml:"version"`
	Sandbox SandboxConfig `yaml:"sandbox,omitempty"`
	Limits  LimitsConfig  `yaml:"limits,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults. An empty roots list
// means the current working directory becomes the playground.
func DefaultConfig() Config {
	return Config{
		Version: "1",
		Limits: LimitsConfig{
			MaxPipelineDepth: exec.DefaultMaxDepth,
			MaxOutputLines:   exec.DefaultMaxLines,
		},
	}
}

// Store represents a loaded PLAYSH_HOME.
type Store struct {
	Home   string
	Config Config
}

// Issue represents a health check finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Home returns the PLAYSH_HOME path, respecting the PLAYSH_HOME env var.
func Home() string {
	if h := os.Getenv("PLAYSH_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".playsh")
	}
	return filepath.Join(home, ".playsh")
}

// Init creates the PLAYSH_HOME directory with a default config.
func Init(home string, force bool) error {
	if _, err := os.Stat(home); err == nil && !force {
		return fmt.Errorf("PLAYSH_HOME already exists at %s (use --force to reinitialize)", home)
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", home, err)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Load reads an existing PLAYSH_HOME. Missing config fields are filled from
// defaults; a missing home entirely yields pure defaults so playsh works out
// of the box.
func Load(home string) (*Store, error) {
	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{Home: home, Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("cannot read PLAYSH_HOME config at %s: %w", cfgPath, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config.yaml: %w", err)
	}
	return &Store{Home: home, Config: cfg}, nil
}

// SaveConfig writes the current config to config.yaml, creating PLAYSH_HOME
// if needed.
func (s *Store) SaveConfig() error {
	if err := os.MkdirAll(s.Home, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.Home, err)
	}
	data, err := yaml.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	cfgPath := filepath.Join(s.Home, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SetConfigValue sets a config value by dot-path key (e.g. "sandbox.home").
// sandbox.roots takes a comma-separated list of directory patterns.
func (s *Store) SetConfigValue(key, value string) error {
	switch key {
	case "sandbox.roots":
		var roots []string
		for _, r := range strings.Split(value, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roots = append(roots, r)
			}
		}
		s.Config.Sandbox.Roots = roots
	case "sandbox.home":
		s.Config.Sandbox.Home = value
	case "limits.max_pipeline_depth":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n < 1 {
			return fmt.Errorf("limits.max_pipeline_depth must be a positive integer")
		}
		s.Config.Limits.MaxPipelineDepth = n
	case "limits.max_output_lines":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n < 1 {
			return fmt.Errorf("limits.max_output_lines must be a positive integer")
		}
		s.Config.Limits.MaxOutputLines = n
	default:
		return fmt.Errorf("unknown config key: %s\nValid keys: sandbox.roots, sandbox.home, limits.max_pipeline_depth, limits.max_output_lines", key)
	}
	return s.SaveConfig()
}

// BuildBoundary expands the configured root patterns and constructs the
// immutable boundary set. Expansion happens exactly once, here; everything
// downstream works with the fixed result. Patterns that match nothing or
// match non-directories are skipped. With no roots configured the current
// working directory is the playground.
func (s *Store) BuildBoundary() (*boundary.Set, error) {
	patterns := s.Config.Sandbox.Roots
	if len(patterns) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		patterns = []string{cwd}
	}

	var roots []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("invalid root pattern %q: %w", p, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.IsDir() {
				continue
			}
			roots = append(roots, m)
		}
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no sandbox roots matched; check sandbox.roots in config")
	}
	sort.Strings(roots)
	return boundary.NewSet(roots, s.Config.Sandbox.Home)
}

// CheckHealth verifies PLAYSH_HOME integrity and the configured sandbox.
func CheckHealth(home string) []Issue {
	var issues []Issue

	cfgPath := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			issues = append(issues, Issue{"warning", "no config.yaml; running on defaults"})
			return issues
		}
		issues = append(issues, Issue{"error", fmt.Sprintf("cannot read config.yaml: %v", err)})
		return issues
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		issues = append(issues, Issue{"error", fmt.Sprintf("config.yaml is not valid YAML: %v", err)})
		return issues
	}

	if cfg.Limits.MaxPipelineDepth < 1 {
		issues = append(issues, Issue{"error", "limits.max_pipeline_depth must be positive"})
	}
	if cfg.Limits.MaxOutputLines < 1 {
		issues = append(issues, Issue{"error", "limits.max_output_lines must be positive"})
	}

	s := &Store{Home: home, Config: cfg}
	if _, err := s.BuildBoundary(); err != nil {
		issues = append(issues, Issue{"error", err.Error()})
	}
	return issues
}
