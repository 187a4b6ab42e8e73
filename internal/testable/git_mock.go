package testable

import (
	"io"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// MockGitOpener returns Repo or OpenErr and records opened paths.
type MockGitOpener struct {
	Repo    GitRepository
	OpenErr error

	mu        sync.Mutex
	OpenCalls []string
}

// Open records the call and returns Repo, OpenErr, or
// git.ErrRepositoryNotExists when neither is set.
func (m *MockGitOpener) Open(path string) (GitRepository, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, path)
	m.mu.Unlock()
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	if m.Repo != nil {
		return m.Repo, nil
	}
	return nil, git.ErrRepositoryNotExists
}

// MockGitRepository serves a fixed commit list from Log.
type MockGitRepository struct {
	RootDir string
	Commits []*object.Commit
	LogErr  error

	mu       sync.Mutex
	LogCalls []*git.LogOptions
}

// Root returns RootDir.
func (m *MockGitRepository) Root() string { return m.RootDir }

// Log records opts and iterates Commits.
func (m *MockGitRepository) Log(opts *git.LogOptions) (object.CommitIter, error) {
	m.mu.Lock()
	m.LogCalls = append(m.LogCalls, opts)
	m.mu.Unlock()
	if m.LogErr != nil {
		return nil, m.LogErr
	}
	return &sliceCommitIter{commits: m.Commits}, nil
}

// sliceCommitIter implements object.CommitIter over a slice.
type sliceCommitIter struct {
	commits []*object.Commit
	pos     int
}

func (it *sliceCommitIter) Next() (*object.Commit, error) {
	if it.pos >= len(it.commits) {
		return nil, io.EOF
	}
	c := it.commits[it.pos]
	it.pos++
	return c, nil
}

func (it *sliceCommitIter) ForEach(fn func(*object.Commit) error) error {
	for {
		c, err := it.Next()
		if err != nil {
			return nil
		}
		if err := fn(c); err != nil {
			if err == storer.ErrStop {
				return nil
			}
			return err
		}
	}
}

func (it *sliceCommitIter) Close() {}

var _ GitOpener = (*MockGitOpener)(nil)
var _ GitRepository = (*MockGitRepository)(nil)
var _ object.CommitIter = (*sliceCommitIter)(nil)
