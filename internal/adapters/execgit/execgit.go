// Package execgit provides a git client adapter on top of a command runner.
package execgit

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mcdonaldj/enginesetup/internal/adapters/execrunner"
	"github.com/mcdonaldj/enginesetup/internal/adapters/osfs"
	"github.com/mcdonaldj/enginesetup/internal/ports"
)

// ExecGitClient implements ports.GitClient by invoking the git binary.
type ExecGitClient struct {
	// gitPath is the path to the git binary. Defaults to "git".
	gitPath string
	runner  ports.CommandRunner
	fs      ports.FileSystem
}

// Option is a functional option for configuring ExecGitClient.
type Option func(*ExecGitClient)

// WithGitPath sets a custom path to the git binary.
func WithGitPath(path string) Option {
	return func(c *ExecGitClient) {
		c.gitPath = path
	}
}

// WithRunner sets the command runner used to execute git.
func WithRunner(r ports.CommandRunner) Option {
	return func(c *ExecGitClient) {
		c.runner = r
	}
}

// WithFileSystem sets the filesystem used to detect repositories.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(c *ExecGitClient) {
		c.fs = fs
	}
}

// New creates a new ExecGitClient adapter.
func New(opts ...Option) *ExecGitClient {
	c := &ExecGitClient{gitPath: "git"}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = execrunner.New()
	}
	if c.fs == nil {
		c.fs = osfs.New()
	}
	return c
}

// Clone clones repoURL into dest, running from dest's parent directory.
func (g *ExecGitClient) Clone(ctx context.Context, repoURL, dest string) (ports.RunResult, error) {
	if repoURL == "" || dest == "" {
		return ports.RunResult{}, fmt.Errorf("git clone requires a repository and a destination")
	}
	res, err := g.runner.Run(ctx, ports.Invocation{
		Name:     g.gitPath,
		Args:     []string{"clone", repoURL, filepath.Base(dest)},
		Dir:      filepath.Dir(dest),
		Contract: ports.Strict,
	})
	if err != nil {
		return res, fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(res.Output))
	}
	return res, nil
}

// CreateBranch creates branch name pointing at revision inside repoPath.
func (g *ExecGitClient) CreateBranch(ctx context.Context, repoPath, name, revision string) (ports.RunResult, error) {
	res, err := g.runner.Run(ctx, ports.Invocation{
		Name:     g.gitPath,
		Args:     []string{"branch", name, revision},
		Dir:      repoPath,
		Contract: ports.BestEffort,
	})
	if err != nil {
		return res, fmt.Errorf("git branch failed: %w: %s", err, strings.TrimSpace(res.Output))
	}
	return res, nil
}

// ResolveRef returns the commit hash ref points to in repoPath.
// Returns empty string if not a git repo or on error.
func (g *ExecGitClient) ResolveRef(repoPath, ref string) string {
	res, err := g.runner.Run(context.Background(), ports.Invocation{
		Name:     g.gitPath,
		Args:     []string{"rev-parse", "--verify", "--quiet", ref + "^{commit}"},
		Dir:      repoPath,
		Contract: ports.BestEffort,
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(res.Output)
}

// IsRepo checks if the given path is a git repository.
func (g *ExecGitClient) IsRepo(path string) bool {
	gitDir := filepath.Join(path, ".git")
	info, err := g.fs.Stat(gitDir)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Compile-time check that ExecGitClient implements ports.GitClient.
var _ ports.GitClient = (*ExecGitClient)(nil)
