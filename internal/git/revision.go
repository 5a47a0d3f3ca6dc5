package git

import (
	stderrors "errors"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

// ErrNotRepository is returned when the content root is not inside a git work tree.
var ErrNotRepository = stderrors.New("not a git repository")

// Revision describes the HEAD commit of a work tree.
type Revision struct {
	Commit  string
	Branch  string
	Subject string
	Author  string
	Time    time.Time
	// Dirty reports uncommitted changes to tracked files.
	Dirty bool
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Commit) > 7 {
		return r.Commit[:7]
	}
	return r.Commit
}

// IsZero reports whether no revision was read.
func (r Revision) IsZero() bool { return r.Commit == "" }

func (r Revision) String() string {
	if r.IsZero() {
		return ""
	}
	if r.Dirty {
		return r.Short() + "-dirty"
	}
	return r.Short()
}

// ReadRevision opens the repository containing root, searching parent
// directories, and describes its HEAD.
func ReadRevision(root string) (Revision, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Revision{}, errors.GitError("resolve content root").WithCause(err).
			WithContext("root", root).Build()
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, ErrNotRepository
		}
		return Revision{}, errors.GitError("open repository").WithCause(err).
			WithContext("root", abs).Build()
	}

	ref, err := repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			// Freshly initialised repository without commits.
			return Revision{}, nil
		}
		return Revision{}, errors.GitError("resolve HEAD").WithCause(err).
			WithContext("root", abs).Build()
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return Revision{}, errors.GitError("read HEAD commit").WithCause(err).
			WithContext("root", abs).WithContext("commit", ref.Hash().String()).Build()
	}

	rev := Revision{
		Commit:  commit.Hash.String(),
		Subject: firstLine(commit.Message),
		Author:  commit.Author.Name,
		Time:    commit.Committer.When,
	}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}
	if dirty, err := isDirty(repo); err == nil {
		rev.Dirty = dirty
	}
	return rev, nil
}

// isDirty ignores untracked files so build output and caches inside the
// work tree do not mark every build as dirty.
func isDirty(repo *git.Repository) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	for _, st := range status {
		if st.Staging == git.Untracked && st.Worktree == git.Untracked {
			continue
		}
		if st.Staging != git.Unmodified || st.Worktree != git.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

func firstLine(s string) string {
	for i := range len(s) {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
