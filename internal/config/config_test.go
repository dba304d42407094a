package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	// Check the pinned coordinate
	if cfg.Bootstrap.Repository != DefaultRepository {
		t.Errorf("Repository = %q, expected %q", cfg.Bootstrap.Repository, DefaultRepository)
	}
	if cfg.Bootstrap.Revision != "f395ada" {
		t.Errorf("Revision = %q, expected %q", cfg.Bootstrap.Revision, "f395ada")
	}
	if cfg.Bootstrap.Branch != "setup-commit" {
		t.Errorf("Branch = %q, expected %q", cfg.Bootstrap.Branch, "setup-commit")
	}

	// Check layout defaults
	if cfg.LibrariesDir != "libraries" {
		t.Errorf("LibrariesDir = %q, expected %q", cfg.LibrariesDir, "libraries")
	}
	if cfg.Bootstrap.Directory != "bootstrapping" || cfg.Bootstrap.Manifest != "bootstrap.json" {
		t.Errorf("unexpected bootstrap layout: %+v", cfg.Bootstrap)
	}
	if !cfg.Bootstrap.BreakOnFirstError {
		t.Error("BreakOnFirstError should default to true")
	}
	if cfg.PinPolicy != "warn" {
		t.Errorf("PinPolicy = %q, expected %q", cfg.PinPolicy, "warn")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDefaultConfigFor(t *testing.T) {
	tests := []struct {
		goos   string
		script string
	}{
		{"windows", "tools/compile-shaders.bat"},
		{"linux", "tools/compile-shaders.sh"},
		{"darwin", "tools/compile-shaders.sh"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cfg := DefaultConfigFor(tt.goos)
			if cfg.PostStep.Script != tt.script {
				t.Errorf("PostStep.Script = %q, expected %q", cfg.PostStep.Script, tt.script)
			}
			if !cfg.PostStep.Shell || !cfg.PostStep.Enabled {
				t.Errorf("post step should be enabled with shell indirection: %+v", cfg.PostStep)
			}
		})
	}
}

func TestLoadMissingConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(DefaultPath(dir))
	if err != nil {
		t.Fatalf("Load failed for missing config: %v", err)
	}
	if cfg.Root != "" {
		t.Errorf("Root = %q, expected empty so the caller's root applies", cfg.Root)
	}
	if cfg.Bootstrap.Revision != DefaultRevision {
		t.Errorf("Expected default revision, got %q", cfg.Bootstrap.Revision)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enginesetup.yaml")
	content := `
libraries_dir: third_party
pin_policy: abort
mode: observed
bootstrap:
  repository: https://example.com/bootstrapping.git
  revision: abc1234
  break_on_first_error: false
post_step:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LibrariesDir != "third_party" {
		t.Errorf("LibrariesDir = %q, expected %q", cfg.LibrariesDir, "third_party")
	}
	if cfg.PinPolicy != "abort" || cfg.Mode != "observed" {
		t.Errorf("PinPolicy/Mode = %q/%q", cfg.PinPolicy, cfg.Mode)
	}
	if cfg.Bootstrap.Repository != "https://example.com/bootstrapping.git" {
		t.Errorf("Repository = %q", cfg.Bootstrap.Repository)
	}
	if cfg.Bootstrap.Revision != "abc1234" {
		t.Errorf("Revision = %q", cfg.Bootstrap.Revision)
	}
	if cfg.Bootstrap.BreakOnFirstError {
		t.Error("BreakOnFirstError should be overridden to false")
	}
	if cfg.PostStep.Enabled {
		t.Error("PostStep.Enabled should be overridden to false")
	}

	// Unspecified fields keep their defaults
	if cfg.Bootstrap.Branch != DefaultBranch {
		t.Errorf("Branch = %q, expected default", cfg.Bootstrap.Branch)
	}
	if cfg.Bootstrap.Interpreter != "python3" {
		t.Errorf("Interpreter = %q, expected default", cfg.Bootstrap.Interpreter)
	}
	if cfg.Root != dir {
		t.Errorf("Root = %q, expected %q", cfg.Root, dir)
	}
}

func TestLoadTOMLConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enginesetup.toml")
	content := `
root = "engine"
pin_policy = "ignore"

[bootstrap]
revision = "deadbee"
interpreter = "python"

[post_step]
script = "tools/build.sh"
args = ["--release"]
shell = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Root != filepath.Join(dir, "engine") {
		t.Errorf("Root = %q, expected relative to config file", cfg.Root)
	}
	if cfg.PinPolicy != "ignore" {
		t.Errorf("PinPolicy = %q", cfg.PinPolicy)
	}
	if cfg.Bootstrap.Revision != "deadbee" || cfg.Bootstrap.Interpreter != "python" {
		t.Errorf("unexpected bootstrap: %+v", cfg.Bootstrap)
	}
	if cfg.Bootstrap.Repository != DefaultRepository {
		t.Errorf("Repository should keep default, got %q", cfg.Bootstrap.Repository)
	}
	if cfg.PostStep.Script != "tools/build.sh" || cfg.PostStep.Shell {
		t.Errorf("unexpected post step: %+v", cfg.PostStep)
	}
	if len(cfg.PostStep.Args) != 1 || cfg.PostStep.Args[0] != "--release" {
		t.Errorf("Args = %v", cfg.PostStep.Args)
	}
}

func TestLoadAbsoluteRoot(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	path := filepath.Join(dir, "enginesetup.yaml")
	if err := os.WriteFile(path, []byte("root: "+other+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Root != other {
		t.Errorf("Root = %q, expected %q", cfg.Root, other)
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "enginesetup.yaml", "this: is: not: valid: yaml: [[["},
		{"toml", "enginesetup.toml", "[bootstrap\nrevision = "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load should fail for malformed config")
			}
			if !strings.Contains(err.Error(), "parse") {
				t.Errorf("error %q should mention parse", err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"enginesetup.yaml", "enginesetup.toml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "nested", name)

			cfg := DefaultConfigFor("linux")
			cfg.Bootstrap.Revision = "1234567"
			cfg.PinPolicy = "abort"
			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Bootstrap.Revision != "1234567" || loaded.PinPolicy != "abort" {
				t.Errorf("round trip lost values: %+v", loaded)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("missing coordinate", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Bootstrap.Repository = ""
		cfg.Bootstrap.Revision = " "
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "bootstrap.repository") || !strings.Contains(err.Error(), "bootstrap.revision") {
			t.Errorf("error %q should name both fields", err)
		}
	})

	t.Run("post step script only needed when enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PostStep.Script = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for enabled post step without script")
		}
		cfg.PostStep.Enabled = false
		if err := cfg.Validate(); err != nil {
			t.Errorf("disabled post step should validate: %v", err)
		}
	})
}

func TestRootDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = ""
	root, err := cfg.RootDir()
	if err != nil {
		t.Fatalf("RootDir failed: %v", err)
	}
	if !filepath.IsAbs(root) {
		t.Errorf("RootDir = %q, expected absolute", root)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/engine"); got != filepath.Join(home, "engine") {
		t.Errorf("ExpandPath = %q", got)
	}
	if got := ExpandPath("/abs/engine"); got != "/abs/engine" {
		t.Errorf("ExpandPath should leave absolute paths, got %q", got)
	}
}
