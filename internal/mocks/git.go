package mocks

import (
	"context"

	"github.com/mcdonaldj/enginesetup/internal/ports"
)

// CloneCall records parameters of a Clone call.
type CloneCall struct {
	RepoURL string
	Dest    string
}

// BranchCall records parameters of a CreateBranch call.
type BranchCall struct {
	RepoPath string
	Name     string
	Revision string
}

// MockGitClient implements ports.GitClient for testing.
type MockGitClient struct {
	// CloneCalls records calls to Clone in order
	CloneCalls []CloneCall
	// BranchCalls records calls to CreateBranch in order
	BranchCalls []BranchCall
	// Refs maps "repoPath@ref" to commit hashes
	Refs map[string]string
	// Repos maps paths to whether they are git repos
	Repos map[string]bool
	// FS, when set, gets the clone destination added as a directory
	FS *MockFileSystem
	// CloneResult and BranchResult are returned by the matching calls
	CloneResult  ports.RunResult
	BranchResult ports.RunResult
	// Errors allows simulating errors for specific operations
	Errors struct {
		Clone        error
		CreateBranch error
	}
}

// NewMockGitClient creates a new mock git client.
func NewMockGitClient() *MockGitClient {
	return &MockGitClient{
		Refs:  make(map[string]string),
		Repos: make(map[string]bool),
	}
}

// Clone records the call and marks dest as a cloned repository.
func (m *MockGitClient) Clone(ctx context.Context, repoURL, dest string) (ports.RunResult, error) {
	m.CloneCalls = append(m.CloneCalls, CloneCall{RepoURL: repoURL, Dest: dest})
	if m.Errors.Clone != nil {
		return m.CloneResult, m.Errors.Clone
	}
	m.Repos[dest] = true
	if m.FS != nil {
		m.FS.AddDir(dest)
	}
	return m.CloneResult, nil
}

// CreateBranch records the call and stores the branch as a resolvable ref.
func (m *MockGitClient) CreateBranch(ctx context.Context, repoPath, name, revision string) (ports.RunResult, error) {
	m.BranchCalls = append(m.BranchCalls, BranchCall{RepoPath: repoPath, Name: name, Revision: revision})
	if m.Errors.CreateBranch != nil {
		return m.BranchResult, m.Errors.CreateBranch
	}
	m.Refs[repoPath+"@"+name] = revision
	return m.BranchResult, nil
}

// ResolveRef returns the hash stored for repoPath@ref.
// Returns empty string if unknown.
func (m *MockGitClient) ResolveRef(repoPath, ref string) string {
	return m.Refs[repoPath+"@"+ref]
}

// IsRepo checks if the given path is a git repository.
func (m *MockGitClient) IsRepo(path string) bool {
	if isRepo, ok := m.Repos[path]; ok {
		return isRepo
	}
	return false
}

// Compile-time check that MockGitClient implements ports.GitClient.
var _ ports.GitClient = (*MockGitClient)(nil)
