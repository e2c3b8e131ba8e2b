package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

// Fatal root errors. Anything else that goes wrong during the walk degrades
// to a warning node instead of aborting the traversal.
var (
	ErrRootNotFound      = errors.New("root directory not found")
	ErrRootNotADirectory = errors.New("root is not a directory")
)

// Engine is the traversal: it walks the filesystem to a bounded depth,
// applies exclusions and the predicate set, invokes the content matcher on
// surviving files, and returns an ordered tree of nodes.
type Engine struct {
	Depth        int // 0 = unlimited, N > 0 = at most N levels below the root
	Excludes     map[string]bool
	Predicate    *PredicateSet
	Sort         SortPolicy
	Matcher      *ContentMatcher
	UseGitignore bool

	root   string
	ignore gitignore.IgnoreMatcher
}

// Build validates the root and runs the walk. The returned diagnostics list
// every non-fatal problem encountered; the tree is complete apart from the
// entries those warnings describe.
func (e *Engine) Build(root string) (*Node, *Diagnostics, error) {
	info, err := os.Stat(root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	case err != nil:
		return nil, nil, fmt.Errorf("cannot access root %s: %w", root, err)
	case !info.IsDir():
		return nil, nil, fmt.Errorf("%w: %s", ErrRootNotADirectory, root)
	}

	e.root = filepath.Clean(root)
	e.ignore = nil
	if e.UseGitignore {
		gitIgnorePath := filepath.Join(e.root, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(gitIgnorePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not parse .gitignore file %s: %v\n", gitIgnorePath, err)
			} else {
				e.ignore = matcher
			}
		}
	}

	meta := EntryMeta{
		Path:    e.root,
		RelPath: "",
		Name:    filepath.Base(e.root),
		Kind:    KindDir,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}

	diags := &Diagnostics{}
	node := e.walkDir(e.root, "", meta, 0, diags)
	if node.Warning != "" {
		// The root itself was unreadable: that one is fatal.
		return nil, nil, fmt.Errorf("cannot read root %s: %s", root, node.Warning)
	}
	return node, diags, nil
}

// walkDir visits one directory at the given depth below the root and returns
// its node. Survival of the returned node is the caller's decision; this
// function only collects and orders the children that survive.
func (e *Engine) walkDir(path, rel string, meta EntryMeta, depth int, diags *Diagnostics) *Node {
	node := &Node{Meta: meta}

	entries, err := os.ReadDir(path)
	if err != nil {
		node.Warning = readFailure(err)
		diags.Warnf(path, "%s", node.Warning)
		return node
	}
	node.ChildCount = len(entries)
	node.Meta.IsEmpty = len(entries) == 0

	// Depth boundary: the directory itself is listed, its children are not.
	if e.Depth > 0 && depth >= e.Depth {
		return node
	}

	for _, entry := range entries {
		name := entry.Name()
		if e.Excludes[name] {
			// Exact-name exclusion prunes the whole subtree unvisited.
			continue
		}
		childPath := filepath.Join(path, name)
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		// The matcher resolves paths against its own base directory, so it
		// needs the root-joined path, not the root-relative one.
		if e.ignore != nil && e.ignore.Match(childPath, entry.IsDir()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Without metadata there is nothing to classify, so the entry is
			// listed unconditionally with its warning instead of filtered.
			warn := readFailure(err)
			diags.Warnf(childPath, "%s", warn)
			node.Children = append(node.Children, &Node{
				Meta:    EntryMeta{Path: childPath, RelPath: childRel, Name: name, Kind: kindOf(entry.Type())},
				Warning: warn,
			})
			continue
		}

		childMeta := EntryMeta{
			Path:    childPath,
			RelPath: childRel,
			Name:    name,
			Kind:    kindOf(info.Mode()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
			IsEmpty: !info.IsDir() && info.Size() == 0,
		}

		if childMeta.Kind == KindDir {
			// Directories are provisionally visited: their survival depends
			// on what lives below them, so recurse first and decide after.
			child := e.walkDir(childPath, childRel, childMeta, depth+1, diags)
			if e.keepDir(child) {
				node.Children = append(node.Children, child)
			}
			continue
		}

		// Symlinks are listed but never followed, so a link to a directory
		// terminates here just like a file.
		if !e.Predicate.Keep(childMeta) {
			continue
		}
		child := &Node{Meta: childMeta}
		if childMeta.Kind == KindFile {
			excerpt, err := e.Matcher.Extract(childPath, childMeta.Size)
			if err != nil {
				child.Warning = readFailure(err)
				diags.Warnf(childPath, "%s", child.Warning)
			} else {
				child.Excerpt = excerpt
			}
		}
		node.Children = append(node.Children, child)
	}

	e.Sort.Order(node.Children)
	return node
}

// keepDir applies the directory survival rule: with no filter at all every
// directory stays; otherwise it stays when the predicate matches its own
// metadata, when any descendant survived, or when it carries a warning worth
// showing.
func (e *Engine) keepDir(dir *Node) bool {
	if e.Predicate.Empty() {
		return true
	}
	if len(dir.Children) > 0 || dir.Warning != "" {
		return true
	}
	return e.Predicate.KeepDir(dir.Meta)
}

func readFailure(err error) string {
	if errors.Is(err, fs.ErrPermission) {
		return "permission denied"
	}
	return fmt.Sprintf("unreadable: %v", err)
}
