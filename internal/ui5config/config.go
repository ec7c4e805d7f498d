// Package ui5config provides configuration loading for the ui5 tools.
//
// It supports two configuration formats:
//   - ui5ls.toml: TOML configuration
//   - ui5ls.yaml / ui5ls.yml: YAML configuration
//
// The package provides automatic discovery of configuration files,
// walking up the directory tree from the current directory to the
// repository root.
//
// Configuration can also be specified via:
//   - UI5LS_CONFIG environment variable
//   - -config flag on individual tools
package ui5config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config file names in priority order.
const (
	ConfigTOML = "ui5ls.toml"
	ConfigYAML = "ui5ls.yaml"
	ConfigYML  = "ui5ls.yml"
)

// EnvConfig is the environment variable for specifying config file path.
const EnvConfig = "UI5LS_CONFIG"

// ErrConflict is returned when multiple config files exist in the same directory.
var ErrConflict = errors.New("multiple config files found in the same directory; use only one")

// Config represents the ui5 tools configuration.
type Config struct {
	Framework  FrameworkConfig  `json:"framework" toml:"framework" yaml:"framework"`
	Service    ServiceConfig    `json:"service" toml:"service" yaml:"service"`
	Project    ProjectConfig    `json:"project" toml:"project" yaml:"project"`
	CodeAssist CodeAssistConfig `json:"code_assist" toml:"code_assist" yaml:"code_assist"`
}

// FrameworkConfig selects the framework metadata.
type FrameworkConfig struct {
	// Name is the framework flavour, "SAPUI5" or "OpenUI5".
	Name string `json:"name" toml:"name" yaml:"name"`

	// Version is the framework version (e.g., "1.120.0").
	Version string `json:"version" toml:"version" yaml:"version"`

	// Metadata lists api.json files or directories holding them.
	Metadata []string `json:"metadata" toml:"metadata" yaml:"metadata"`

	// LoadTimeout bounds reading the metadata (e.g., "30s").
	LoadTimeout Duration `json:"load_timeout" toml:"load_timeout" yaml:"load_timeout"`
}

// ServiceConfig points at the OData service of the application.
type ServiceConfig struct {
	// Metadata is the path of the service's $metadata document.
	Metadata string `json:"metadata" toml:"metadata" yaml:"metadata"`
}

// ProjectConfig contains project-wide validation settings.
type ProjectConfig struct {
	// FlexEnabled requires stable ids on all controls.
	FlexEnabled bool `json:"flex_enabled" toml:"flex_enabled" yaml:"flex_enabled"`

	// IDPrefix is prepended to generated ids (default: "_IDGen").
	IDPrefix string `json:"id_prefix" toml:"id_prefix" yaml:"id_prefix"`

	// Include lists the file name patterns of views and fragments.
	Include []string `json:"include" toml:"include" yaml:"include"`
}

// CodeAssistConfig controls which symbols completion offers.
type CodeAssistConfig struct {
	Deprecated   bool `json:"deprecated" toml:"deprecated" yaml:"deprecated"`
	Experimental bool `json:"experimental" toml:"experimental" yaml:"experimental"`
}

// Duration wraps time.Duration for TOML/YAML/JSON string parsing.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	if d.Duration == 0 {
		return nil, nil
	}
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			Name:        "SAPUI5",
			LoadTimeout: Duration{30 * time.Second},
		},
		Project: ProjectConfig{
			IDPrefix: "_IDGen",
			Include:  []string{"*.view.xml", "*.fragment.xml"},
		},
	}
}

// LoadConfig loads configuration from the specified path on top of the
// defaults. The format is auto-detected based on file extension, and
// relative paths in the file are resolved against its directory.
func LoadConfig(path string) (*Config, error) {
	var (
		file *Config
		err  error
	)
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		file, err = LoadTOMLConfig(path)
	case ".yaml", ".yml":
		file, err = LoadYAMLConfig(path)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s (expected .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, err
	}
	file.resolvePaths(filepath.Dir(path))

	cfg := DefaultConfig()
	cfg.Merge(file)
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, p := range c.Framework.Metadata {
		c.Framework.Metadata[i] = abs(p)
	}
	c.Service.Metadata = abs(c.Service.Metadata)
}

// DiscoverConfig searches for a configuration file.
//
// Resolution order:
//  1. If UI5LS_CONFIG env var is set, use that path
//  2. Walk up from startDir looking for config files, stopping at the
//     git root
//
// If multiple config files exist in the same directory, an error is returned.
// Returns the loaded config, the path to the config file, and any error.
// If no config is found, returns (DefaultConfig(), "", nil).
func DiscoverConfig(startDir string) (*Config, string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		cfg, err := LoadConfig(envPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading config from %s: %w", EnvConfig, err)
		}
		return cfg, envPath, nil
	}

	if startDir == "" {
		var err error
		startDir, err = os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("getting working directory: %w", err)
		}
	}

	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path: %w", err)
	}

	gitRoot := findGitRoot(absDir)

	dir := absDir
	for {
		configPath, err := findConfigInDir(dir)
		if err != nil {
			return nil, "", err
		}
		if configPath != "" {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return nil, "", err
			}
			return cfg, configPath, nil
		}

		if gitRoot != "" && dir == gitRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return DefaultConfig(), "", nil
}

// findConfigInDir looks for config files in a directory.
// Returns the path to the config file if exactly one is found.
// Returns an error if multiple config files exist.
// Returns ("", nil) if no config files exist.
func findConfigInDir(dir string) (string, error) {
	var found []string
	for _, name := range []string{ConfigTOML, ConfigYAML, ConfigYML} {
		if fileExists(filepath.Join(dir, name)) {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return filepath.Join(dir, found[0]), nil
	default:
		return "", fmt.Errorf("%w: found %s in %s", ErrConflict, strings.Join(found, ", "), dir)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// findGitRoot finds the git repository root from a starting directory.
// Returns empty string if not in a git repository.
func findGitRoot(startDir string) string {
	dir := startDir
	for {
		if fileExists(filepath.Join(dir, ".git")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Merge merges the other config into this one.
// Non-zero values from other override values in c; lists replace.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Framework.Name != "" {
		c.Framework.Name = other.Framework.Name
	}
	if other.Framework.Version != "" {
		c.Framework.Version = other.Framework.Version
	}
	if len(other.Framework.Metadata) > 0 {
		c.Framework.Metadata = other.Framework.Metadata
	}
	if other.Framework.LoadTimeout.Duration != 0 {
		c.Framework.LoadTimeout = other.Framework.LoadTimeout
	}

	if other.Service.Metadata != "" {
		c.Service.Metadata = other.Service.Metadata
	}

	if other.Project.FlexEnabled {
		c.Project.FlexEnabled = true
	}
	if other.Project.IDPrefix != "" {
		c.Project.IDPrefix = other.Project.IDPrefix
	}
	if len(other.Project.Include) > 0 {
		c.Project.Include = other.Project.Include
	}

	if other.CodeAssist.Deprecated {
		c.CodeAssist.Deprecated = true
	}
	if other.CodeAssist.Experimental {
		c.CodeAssist.Experimental = true
	}
}

// Matches reports whether a file name matches the project's include
// patterns.
func (c *Config) Matches(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range c.Project.Include {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
