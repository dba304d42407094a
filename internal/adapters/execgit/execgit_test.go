package execgit

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mcdonaldj/enginesetup/internal/mocks"
	"github.com/mcdonaldj/enginesetup/internal/ports"
)

func TestNew(t *testing.T) {
	t.Run("default git path", func(t *testing.T) {
		client := New()
		if client.gitPath != "git" {
			t.Errorf("expected default git path 'git', got %q", client.gitPath)
		}
		if client.runner == nil {
			t.Error("expected a default runner")
		}
		if client.fs == nil {
			t.Error("expected a default filesystem")
		}
	})

	t.Run("custom git path", func(t *testing.T) {
		client := New(WithGitPath("/usr/local/bin/git"))
		if client.gitPath != "/usr/local/bin/git" {
			t.Errorf("expected custom path, got %q", client.gitPath)
		}
	})
}

func TestClone(t *testing.T) {
	t.Run("runs from parent directory", func(t *testing.T) {
		runner := mocks.NewMockCommandRunner()
		client := New(WithRunner(runner))

		_, err := client.Clone(context.Background(), "https://github.com/corporateshark/bootstrapping.git", "/proj/libraries/bootstrapping")
		if err != nil {
			t.Fatalf("Clone failed: %v", err)
		}
		if len(runner.Calls) != 1 {
			t.Fatalf("expected 1 call, got %d", len(runner.Calls))
		}
		call := runner.Calls[0]
		want := []string{"clone", "https://github.com/corporateshark/bootstrapping.git", "bootstrapping"}
		if !reflect.DeepEqual(call.Args, want) {
			t.Errorf("args = %q, expected %q", call.Args, want)
		}
		if call.Dir != "/proj/libraries" {
			t.Errorf("dir = %q, expected /proj/libraries", call.Dir)
		}
		if call.Contract != ports.Strict {
			t.Errorf("contract = %v, expected strict", call.Contract)
		}
	})

	t.Run("failure includes output", func(t *testing.T) {
		runner := mocks.NewMockCommandRunner()
		runner.Results["git clone"] = mocks.MockRunResult{Output: "fatal: could not resolve host\n", ExitCode: 128}
		client := New(WithRunner(runner))

		res, err := client.Clone(context.Background(), "https://example.invalid/x.git", "/proj/libraries/x")
		if err == nil {
			t.Fatal("expected clone error")
		}
		if res.ExitCode != 128 {
			t.Errorf("exit code = %d, expected 128", res.ExitCode)
		}
		if !strings.Contains(err.Error(), "could not resolve host") {
			t.Errorf("error %q should contain git output", err)
		}
	})

	t.Run("missing arguments", func(t *testing.T) {
		client := New(WithRunner(mocks.NewMockCommandRunner()))
		if _, err := client.Clone(context.Background(), "", "/dest"); err == nil {
			t.Error("expected error for empty repository")
		}
	})
}

func TestCreateBranch(t *testing.T) {
	runner := mocks.NewMockCommandRunner()
	runner.Results["git branch"] = mocks.MockRunResult{Output: "fatal: not a valid object name: 'f395ada'", ExitCode: 128}
	client := New(WithRunner(runner), WithGitPath("git"))

	res, err := client.CreateBranch(context.Background(), "/proj/libraries/bootstrapping", "setup-commit", "f395ada")
	if err == nil {
		t.Fatal("expected branch error")
	}
	if res.ExitCode != 128 {
		t.Errorf("exit code = %d, expected 128", res.ExitCode)
	}
	call := runner.Calls[0]
	if !reflect.DeepEqual(call.Args, []string{"branch", "setup-commit", "f395ada"}) {
		t.Errorf("args = %q", call.Args)
	}
	if call.Dir != "/proj/libraries/bootstrapping" {
		t.Errorf("dir = %q", call.Dir)
	}
	if call.Contract != ports.BestEffort {
		t.Errorf("contract = %v, expected best-effort", call.Contract)
	}
}

func TestResolveRef(t *testing.T) {
	runner := mocks.NewMockCommandRunner()
	runner.Results["git rev-parse"] = mocks.MockRunResult{Output: "f395ada1234567890\n"}
	client := New(WithRunner(runner))

	if got := client.ResolveRef("/repo", "setup-commit"); got != "f395ada1234567890" {
		t.Errorf("ResolveRef = %q", got)
	}

	runner.Results["git rev-parse"] = mocks.MockRunResult{ExitCode: 1}
	if got := client.ResolveRef("/repo", "missing"); got != "" {
		t.Errorf("ResolveRef should be empty on error, got %q", got)
	}
}

func TestIsRepo(t *testing.T) {
	client := New()

	t.Run("plain directory", func(t *testing.T) {
		if client.IsRepo(t.TempDir()) {
			t.Error("expected false for directory without .git")
		}
	})

	t.Run("directory with .git", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
			t.Fatal(err)
		}
		if !client.IsRepo(dir) {
			t.Error("expected true for directory with .git")
		}
	})
}

func TestIsRepoUsesFileSystem(t *testing.T) {
	fs := mocks.NewMockFileSystem()
	fs.AddDir("/proj/libraries/bootstrapping/.git")
	fs.Files["/proj/libraries/plain/.git"] = []byte("gitdir: ../elsewhere")
	client := New(WithFileSystem(fs), WithRunner(mocks.NewMockCommandRunner()))

	if !client.IsRepo("/proj/libraries/bootstrapping") {
		t.Error("expected true when .git is a directory")
	}
	if client.IsRepo("/proj/libraries/plain") {
		t.Error("expected false when .git is not a directory")
	}
	if client.IsRepo("/proj/libraries/missing") {
		t.Error("expected false when .git is missing")
	}
	if len(fs.StatCalls) != 3 {
		t.Errorf("expected 3 Stat calls through the filesystem, got %d", len(fs.StatCalls))
	}
}

func TestImplementsInterface(t *testing.T) {
	var _ ports.GitClient = (*ExecGitClient)(nil)
}

// Integration test requires git to be installed.

func TestIntegrationCloneAndBranch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed, skipping integration test")
	}

	ctx := context.Background()
	tmp := t.TempDir()
	origin := filepath.Join(tmp, "origin")
	git := func(dir string, args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Skipf("git %v unavailable: %v: %s", args, err, out)
		}
	}
	if err := os.MkdirAll(origin, 0755); err != nil {
		t.Fatal(err)
	}
	git(origin, "init", "-q")
	if err := os.WriteFile(filepath.Join(origin, "bootstrap.py"), []byte("print('ok')\n"), 0644); err != nil {
		t.Fatal(err)
	}
	git(origin, "add", ".")
	git(origin, "commit", "-q", "-m", "initial")

	client := New()
	head := client.ResolveRef(origin, "HEAD")
	if head == "" {
		t.Fatal("could not resolve origin HEAD")
	}

	dest := filepath.Join(tmp, "libraries", "bootstrapping")
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Clone(ctx, origin, dest); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if !client.IsRepo(dest) {
		t.Fatal("destination should be a git repo after clone")
	}
	if _, err := client.CreateBranch(ctx, dest, "setup-commit", head[:7]); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}
	if got := client.ResolveRef(dest, "setup-commit"); got != head {
		t.Errorf("setup-commit = %q, expected %q", got, head)
	}

	// Second branch creation fails because the branch exists.
	if _, err := client.CreateBranch(ctx, dest, "setup-commit", head[:7]); err == nil {
		t.Error("expected error when branch already exists")
	}
}
