// Package config loads the setup configuration from yaml or toml files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project root.
const FileName = "enginesetup.yaml"

// Defaults for the pinned bootstrap tool.
const (
	DefaultRepository = "https://github.com/corporateshark/bootstrapping.git"
	DefaultRevision   = "f395ada"
	DefaultBranch     = "setup-commit"
)

// Config describes where the project lives and how its dependencies are bootstrapped.
type Config struct {
	Root         string    `yaml:"root,omitempty" toml:"root,omitempty"`
	LibrariesDir string    `yaml:"libraries_dir" toml:"libraries_dir"`
	Mode         string    `yaml:"mode,omitempty" toml:"mode,omitempty"`
	PinPolicy    string    `yaml:"pin_policy" toml:"pin_policy"`
	Bootstrap    Bootstrap `yaml:"bootstrap" toml:"bootstrap"`
	PostStep     PostStep  `yaml:"post_step" toml:"post_step"`
}

// Bootstrap pins the dependency-fetching tool and describes how to run it.
type Bootstrap struct {
	Repository        string `yaml:"repository" toml:"repository"`
	Revision          string `yaml:"revision" toml:"revision"`
	Directory         string `yaml:"directory" toml:"directory"` // relative to libraries_dir
	Branch            string `yaml:"branch" toml:"branch"`
	Interpreter       string `yaml:"interpreter" toml:"interpreter"`
	Script            string `yaml:"script" toml:"script"`     // relative to directory
	Manifest          string `yaml:"manifest" toml:"manifest"` // relative to libraries_dir
	BreakOnFirstError bool   `yaml:"break_on_first_error" toml:"break_on_first_error"`
}

// PostStep is the build command run after bootstrapping by the tools entry point.
type PostStep struct {
	Enabled bool     `yaml:"enabled" toml:"enabled"`
	Script  string   `yaml:"script" toml:"script"` // relative to root
	Args    []string `yaml:"args,omitempty" toml:"args,omitempty"`
	Shell   bool     `yaml:"shell" toml:"shell"`
}

func DefaultConfig() *Config {
	return DefaultConfigFor(runtime.GOOS)
}

// DefaultConfigFor returns defaults for the given platform.
func DefaultConfigFor(goos string) *Config {
	shaders := "tools/compile-shaders.sh"
	if goos == "windows" {
		shaders = "tools/compile-shaders.bat"
	}
	return &Config{
		LibrariesDir: "libraries",
		PinPolicy:    "warn",
		Bootstrap: Bootstrap{
			Repository:        DefaultRepository,
			Revision:          DefaultRevision,
			Directory:         "bootstrapping",
			Branch:            DefaultBranch,
			Interpreter:       "python3",
			Script:            "bootstrap.py",
			Manifest:          "bootstrap.json",
			BreakOnFirstError: true,
		},
		PostStep: PostStep{
			Enabled: true,
			Script:  shaders,
			Shell:   true,
		},
	}
}

// DefaultPath returns the config path inside root.
func DefaultPath(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the config at path over the defaults.
// A missing file yields the defaults with Root left empty for the caller to resolve.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// A relative root is relative to the config file, not the caller's cwd.
	if root := ExpandPath(cfg.Root); root == "" {
		cfg.Root = filepath.Dir(path)
	} else if !filepath.IsAbs(root) {
		cfg.Root = filepath.Join(filepath.Dir(path), root)
	} else {
		cfg.Root = root
	}

	return cfg, nil
}

// Save writes the config to path, choosing the format by extension.
func (c *Config) Save(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		out, err := yaml.Marshal(c)
		if err != nil {
			return err
		}
		data = out
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the fields the setup flow depends on are present.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.LibrariesDir) == "" {
		errs = append(errs, errors.New("libraries_dir is required"))
	}
	if strings.TrimSpace(c.Bootstrap.Repository) == "" {
		errs = append(errs, errors.New("bootstrap.repository is required"))
	}
	if strings.TrimSpace(c.Bootstrap.Revision) == "" {
		errs = append(errs, errors.New("bootstrap.revision is required"))
	}
	if strings.TrimSpace(c.Bootstrap.Directory) == "" {
		errs = append(errs, errors.New("bootstrap.directory is required"))
	}
	if strings.TrimSpace(c.Bootstrap.Script) == "" {
		errs = append(errs, errors.New("bootstrap.script is required"))
	}
	if strings.TrimSpace(c.Bootstrap.Manifest) == "" {
		errs = append(errs, errors.New("bootstrap.manifest is required"))
	}
	if c.PostStep.Enabled && strings.TrimSpace(c.PostStep.Script) == "" {
		errs = append(errs, errors.New("post_step.script is required when post_step is enabled"))
	}
	return errors.Join(errs...)
}

// RootDir returns the absolute project root.
func (c *Config) RootDir() (string, error) {
	root := ExpandPath(c.Root)
	if root == "" {
		root = "."
	}
	return filepath.Abs(root)
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unexpanded if home unavailable
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
