package ports

import "context"

// GitClient abstracts the version-control operations used during acquisition.
// Production code uses ExecGitClient adapter; tests use MockGitClient.
type GitClient interface {
	// Clone clones repoURL into dest. The parent of dest must exist.
	// Returns the combined output of the clone command.
	Clone(ctx context.Context, repoURL, dest string) (RunResult, error)

	// CreateBranch creates branch name at revision inside repoPath.
	CreateBranch(ctx context.Context, repoPath, name, revision string) (RunResult, error)

	// ResolveRef returns the commit hash ref points to in repoPath.
	// Returns empty string if not a git repo or on error.
	ResolveRef(repoPath, ref string) string

	// IsRepo checks if the given path is a git repository.
	IsRepo(path string) bool
}
