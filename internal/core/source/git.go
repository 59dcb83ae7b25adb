// Package source extracts changed configuration files between two
// revisions of a git repository.
package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/solatis/changegate/internal/types"
)

// FileChange is one file that differs between the base and head revisions.
// Base is nil for added files, Head is nil for deleted files.
type FileChange struct {
	Path   string
	Status types.FileStatus
	Base   []byte
	Head   []byte
}

// Options selects the repository, revision pair and optional suffix filter.
type Options struct {
	RepoPath     string
	BaseRev      string
	HeadRev      string
	OnlySuffixes []string
}

// ChangedFiles lists the files that differ between the two revisions,
// sorted by path. Renames surface as a delete plus an add; only blob
// entries are reported.
func ChangedFiles(ctx context.Context, opts Options) ([]FileChange, error) {
	repo, err := gogit.PlainOpenWithOptions(opts.RepoPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", opts.RepoPath, err)
	}

	baseTree, err := treeAt(repo, opts.BaseRev)
	if err != nil {
		return nil, err
	}
	headTree, err := treeAt(repo, opts.HeadRev)
	if err != nil {
		return nil, err
	}

	diff, err := baseTree.DiffContext(ctx, headTree)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", opts.BaseRev, opts.HeadRev, err)
	}

	var files []FileChange
	for _, change := range diff {
		action, err := change.Action()
		if err != nil {
			return nil, fmt.Errorf("classify change: %w", err)
		}

		fc := FileChange{}
		switch action {
		case merkletrie.Insert:
			fc.Path = change.To.Name
			fc.Status = types.FileAdded
		case merkletrie.Delete:
			fc.Path = change.From.Name
			fc.Status = types.FileDeleted
		case merkletrie.Modify:
			fc.Path = change.To.Name
			fc.Status = types.FileModified
		default:
			continue
		}

		if !suffixMatch(fc.Path, opts.OnlySuffixes) {
			continue
		}

		if action != merkletrie.Insert {
			fc.Base, err = fileContents(baseTree, change.From.Name)
			if err != nil {
				return nil, err
			}
		}
		if action != merkletrie.Delete {
			fc.Head, err = fileContents(headTree, change.To.Name)
			if err != nil {
				return nil, err
			}
		}

		files = append(files, fc)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// treeAt resolves a revision expression (branch, tag, SHA, HEAD~n) to
// its commit tree.
func treeAt(repo *gogit.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", hash, err)
	}
	return tree, nil
}

func fileContents(tree *object.Tree, path string) ([]byte, error) {
	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return []byte(contents), nil
}

// suffixMatch applies the optional allow-list; an empty list admits
// every path.
func suffixMatch(path string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}
