package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables read by DefaultLoader.
const (
	EnvConfigPath  = "RUNSON_CONFIG"
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvGHToken     = "GH_TOKEN"
	EnvNoColor     = "NO_COLOR"
)

// DefaultLoader reads Config from a YAML file. A missing file is not an
// error; defaults and environment overrides still apply.
type DefaultLoader struct {
	path   string
	getenv func(string) string
}

// NewDefaultLoader returns a loader for $RUNSON_CONFIG, falling back to
// ~/.config/runson/config.yaml.
func NewDefaultLoader() *DefaultLoader {
	return &DefaultLoader{path: defaultPath(os.Getenv), getenv: os.Getenv}
}

// NewDefaultLoaderWithPath returns a loader reading path. getenv supplies
// environment overrides; nil uses os.Getenv.
func NewDefaultLoaderWithPath(path string, getenv func(string) string) *DefaultLoader {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &DefaultLoader{path: path, getenv: getenv}
}

// ConfigPath implements Loader.
func (l *DefaultLoader) ConfigPath() string {
	return l.path
}

// Load implements Loader.
func (l *DefaultLoader) Load() (*Config, error) {
	cfg := Default()

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", l.path, err)
			}
		}
	}

	applyEnv(cfg, l.getenv)

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, errors.Join(errs...))
	}
	return cfg, nil
}

// applyEnv overrides file values with the environment.
func applyEnv(cfg *Config, getenv func(string) string) {
	if tok := getenv(EnvGitHubToken); tok != "" {
		cfg.GitHub.Token = tok
	} else if tok := getenv(EnvGHToken); tok != "" {
		cfg.GitHub.Token = tok
	}
	if getenv(EnvNoColor) != "" {
		cfg.Output.Color = ColorNever
	}
	if cfg.GitHub.Timeout == 0 {
		cfg.GitHub.Timeout = DefaultTimeout
	}
	if cfg.Output.Color == "" {
		cfg.Output.Color = ColorAuto
	}
}

// Validate returns every problem in cfg.
func Validate(cfg *Config) []error {
	var errs []error
	switch cfg.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("output.color: invalid value %q; valid values: auto, always, never", cfg.Output.Color))
	}
	if cfg.GitHub.Timeout < 0 {
		errs = append(errs, fmt.Errorf("github.timeout: must not be negative"))
	}
	return errs
}

func defaultPath(getenv func(string) string) string {
	if p := getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "runson", "config.yaml")
}
