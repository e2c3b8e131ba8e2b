package main

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, depth int, excludes []string, typeSpecs []string) *Engine {
	t.Helper()
	tokens, err := ParseTypeTokens(typeSpecs)
	require.NoError(t, err)

	excludeSet := make(map[string]bool, len(excludes))
	for _, name := range excludes {
		excludeSet[name] = true
	}
	return &Engine{
		Depth:     depth,
		Excludes:  excludeSet,
		Predicate: NewPredicateSet(tokens, newClassifier(nil)),
		Sort:      SortPolicy{Key: SortName, DirsFirst: true},
		Matcher:   &ContentMatcher{},
	}
}

func mkFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func childNames(n *Node) []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Meta.Name
	}
	return out
}

// findChild returns the direct child with the given name, or nil.
func findChild(n *Node, name string) *Node {
	for _, c := range n.Children {
		if c.Meta.Name == name {
			return c
		}
	}
	return nil
}

func TestBuildRootErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		e := newTestEngine(t, 0, nil, nil)
		_, _, err := e.Build(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRootNotFound)
	})

	t.Run("file as root", func(t *testing.T) {
		dir := t.TempDir()
		mkFile(t, filepath.Join(dir, "f.txt"), "x")
		e := newTestEngine(t, 0, nil, nil)
		_, _, err := e.Build(filepath.Join(dir, "f.txt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRootNotADirectory)
	})
}

func TestBuildBasicTree(t *testing.T) {
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, "b.txt"), "b")
	mkFile(t, filepath.Join(dir, "a.txt"), "a")
	mkFile(t, filepath.Join(dir, "sub", "c.txt"), "c")

	e := newTestEngine(t, 0, nil, nil)
	root, diags, err := e.Build(dir)
	require.NoError(t, err)
	assert.Empty(t, diags.Warnings)

	assert.Equal(t, []string{"sub", "a.txt", "b.txt"}, childNames(root), "dirs first, then names")
	sub := findChild(root, "sub")
	require.NotNil(t, sub)
	assert.Equal(t, []string{"c.txt"}, childNames(sub))
	assert.Equal(t, "sub/c.txt", sub.Children[0].Meta.RelPath)
}

func TestBuildDepthLimit(t *testing.T) {
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, "l1", "l2", "l3", "deep.txt"), "x")
	mkFile(t, filepath.Join(dir, "top.txt"), "x")

	var maxDepthSeen func(n *Node) int
	maxDepthSeen = func(n *Node) int {
		deepest := 0
		for _, c := range n.Children {
			d := 1 + maxDepthSeen(c)
			if d > deepest {
				deepest = d
			}
		}
		return deepest
	}

	tests := []struct {
		depth int
		want  int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{0, 4}, // unlimited reaches deep.txt at depth 4
	}

	for _, tt := range tests {
		e := newTestEngine(t, tt.depth, nil, nil)
		root, _, err := e.Build(dir)
		require.NoError(t, err)
		assert.Equal(t, tt.want, maxDepthSeen(root), "depth limit %d", tt.depth)
	}
}

func TestBuildExclusionSkipsSubtree(t *testing.T) {
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, "node_modules", "pkg", "a.js"), "x")
	mkFile(t, filepath.Join(dir, "src", "main.js"), "x")

	e := newTestEngine(t, 0, []string{"node_modules"}, nil)
	root, _, err := e.Build(dir)
	require.NoError(t, err)

	assert.Nil(t, findChild(root, "node_modules"))
	assert.Equal(t, []string{"src"}, childNames(root))
}

func TestBuildTypeFilterScenario(t *testing.T) {
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, "a.py"), "x")
	mkFile(t, filepath.Join(dir, "b.html"), "x")
	mkFile(t, filepath.Join(dir, "c.txt"), "x")

	e := newTestEngine(t, 0, nil, []string{"ext:py", "group:web"})
	root, _, err := e.Build(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py", "b.html"}, childNames(root))
}

func TestBuildDirectoryRouting(t *testing.T) {
	// A directory that matches nothing itself is kept when a descendant
	// survives, and pruned when none does.
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, "keepme", "nested", "a.py"), "x")
	mkFile(t, filepath.Join(dir, "dropme", "b.txt"), "x")

	e := newTestEngine(t, 0, nil, []string{"ext:py"})
	root, _, err := e.Build(dir)
	require.NoError(t, err)

	require.Equal(t, []string{"keepme"}, childNames(root))
	nested := findChild(findChild(root, "keepme"), "nested")
	require.NotNil(t, nested)
	assert.Equal(t, []string{"a.py"}, childNames(nested))
}

func TestBuildEmptyDirScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "emptydir"), 0o755))
	mkFile(t, filepath.Join(dir, "a.py"), "x")

	t.Run("kept with empty token", func(t *testing.T) {
		e := newTestEngine(t, 0, nil, []string{"empty"})
		root, _, err := e.Build(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"emptydir"}, childNames(root))
	})

	t.Run("pruned under other filters", func(t *testing.T) {
		e := newTestEngine(t, 0, nil, []string{"ext:py"})
		root, _, err := e.Build(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.py"}, childNames(root))
	})

	t.Run("kept with no filter", func(t *testing.T) {
		e := newTestEngine(t, 0, nil, nil)
		root, _, err := e.Build(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"emptydir", "a.py"}, childNames(root))
		assert.True(t, findChild(root, "emptydir").Meta.IsEmpty)
	})
}

func TestBuildSymlinkNotFollowed(t *testing.T) {
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, "target", "inner.txt"), "x")
	if err := os.Symlink(filepath.Join(dir, "target"), filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks not supported here: %v", err)
	}

	e := newTestEngine(t, 0, nil, nil)
	root, _, err := e.Build(dir)
	require.NoError(t, err)

	link := findChild(root, "link")
	require.NotNil(t, link)
	assert.Equal(t, KindSymlink, link.Meta.Kind)
	assert.Empty(t, link.Children, "symlinked directories are never descended into")
}

func TestBuildUnreadableSubdir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	mkFile(t, filepath.Join(locked, "secret.txt"), "x")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	e := newTestEngine(t, 0, nil, nil)
	root, diags, err := e.Build(dir)
	require.NoError(t, err, "an unreadable subdirectory must not abort the walk")

	lockedNode := findChild(root, "locked")
	require.NotNil(t, lockedNode)
	assert.NotEmpty(t, lockedNode.Warning)
	assert.Empty(t, lockedNode.Children)
	require.Len(t, diags.Warnings, 1)
	assert.Contains(t, diags.Warnings[0].Message, "permission denied")
}

func TestBuildContentAttached(t *testing.T) {
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, "file.py"), "x=1\nTODO fix\ny=2\n")

	e := newTestEngine(t, 0, nil, nil)
	e.Matcher = &ContentMatcher{
		Enabled:   true,
		Pattern:   regexp.MustCompile("TODO"),
		MaxSize:   100000,
		Context:   1,
		Highlight: true,
	}

	root, _, err := e.Build(dir)
	require.NoError(t, err)

	file := findChild(root, "file.py")
	require.NotNil(t, file)
	require.Equal(t, ExcerptMatches, file.Excerpt.Kind)
	require.Len(t, file.Excerpt.Spans, 1)
	assert.Equal(t, 1, file.Excerpt.Spans[0].Start)
	assert.Equal(t, 3, file.Excerpt.Spans[0].End)
}

func TestBuildGitignore(t *testing.T) {
	// t.TempDir gives an absolute root, the common case for --gitignore.
	dir := t.TempDir()
	mkFile(t, filepath.Join(dir, ".gitignore"), "ignored.txt\nbuild/\n")
	mkFile(t, filepath.Join(dir, "ignored.txt"), "x")
	mkFile(t, filepath.Join(dir, "kept.txt"), "x")
	mkFile(t, filepath.Join(dir, "build", "out.js"), "x")
	mkFile(t, filepath.Join(dir, "src", "main.go"), "x")

	t.Run("disabled by default", func(t *testing.T) {
		e := newTestEngine(t, 0, nil, nil)
		root, _, err := e.Build(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"build", "src", ".gitignore", "ignored.txt", "kept.txt"}, childNames(root))
	})

	t.Run("enabled skips matched entries", func(t *testing.T) {
		e := newTestEngine(t, 0, nil, nil)
		e.UseGitignore = true
		root, _, err := e.Build(dir)
		require.NoError(t, err)

		assert.Equal(t, []string{"src", ".gitignore", "kept.txt"}, childNames(root))
		assert.Nil(t, findChild(root, "ignored.txt"), "file pattern is honored")
		assert.Nil(t, findChild(root, "build"), "directory pattern prunes the subtree")
		src := findChild(root, "src")
		require.NotNil(t, src)
		assert.Equal(t, []string{"main.go"}, childNames(src), "unmatched entries survive")
	})
}

func TestBuildHiddenDirMatchedBySelf(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	mkFile(t, filepath.Join(dir, "visible.txt"), "x")

	e := newTestEngine(t, 0, nil, []string{"hidden"})
	root, _, err := e.Build(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{".git"}, childNames(root), "hidden token matches the directory itself")
}
