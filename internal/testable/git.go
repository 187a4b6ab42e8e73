package testable

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitOpener opens the repository containing a path.
type GitOpener interface {
	Open(path string) (GitRepository, error)
}

// GitRepository is the subset of *git.Repository used for history lookups.
type GitRepository interface {
	// Root is the absolute work tree root.
	Root() string
	Log(opts *git.LogOptions) (object.CommitIter, error)
}

// RealGitOpener opens repositories with go-git, searching parent
// directories for .git.
type RealGitOpener struct{}

// Open opens the repository containing path.
func (RealGitOpener) Open(path string) (GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	return &RealGitRepository{repo: repo, root: wt.Filesystem.Root()}, nil
}

// RealGitRepository wraps *git.Repository.
type RealGitRepository struct {
	repo *git.Repository
	root string
}

// Root returns the work tree root.
func (r *RealGitRepository) Root() string { return r.root }

// Log returns the commit history matching opts.
func (r *RealGitRepository) Log(opts *git.LogOptions) (object.CommitIter, error) {
	return r.repo.Log(opts)
}

// DefaultGitOpener is the production GitOpener.
var DefaultGitOpener GitOpener = RealGitOpener{}

// Compile-time interface checks.
var _ GitOpener = RealGitOpener{}
var _ GitRepository = (*RealGitRepository)(nil)
