package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string, kind EntryKind, size int64, mod time.Time) *Node {
	return &Node{Meta: EntryMeta{Name: name, Kind: kind, Size: size, ModTime: mod}}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Meta.Name
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	for s, want := range map[string]SortKey{
		"name": SortName, "date": SortDate, "size": SortSize, "type": SortType, "ext": SortExt,
	} {
		got, err := ParseSortKey(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSortKey("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort key")
}

func TestParseSortDirection(t *testing.T) {
	desc, err := ParseSortDirection("asc")
	require.NoError(t, err)
	assert.False(t, desc)

	desc, err = ParseSortDirection("desc")
	require.NoError(t, err)
	assert.True(t, desc)

	_, err = ParseSortDirection("sideways")
	require.Error(t, err)
}

func TestOrderByName(t *testing.T) {
	base := time.Now()
	nodes := []*Node{
		node("Zeta.go", KindFile, 1, base),
		node("alpha.go", KindFile, 1, base),
		node("beta.go", KindFile, 1, base),
	}

	SortPolicy{Key: SortName}.Order(nodes)
	assert.Equal(t, []string{"alpha.go", "beta.go", "Zeta.go"}, names(nodes),
		"name comparison is case-insensitive")

	SortPolicy{Key: SortName, Desc: true}.Order(nodes)
	assert.Equal(t, []string{"Zeta.go", "beta.go", "alpha.go"}, names(nodes))
}

func TestOrderByDate(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	nodes := []*Node{
		node("new", KindFile, 1, base.Add(2*time.Hour)),
		node("old", KindFile, 1, base),
		node("mid", KindFile, 1, base.Add(time.Hour)),
	}

	SortPolicy{Key: SortDate}.Order(nodes)
	assert.Equal(t, []string{"old", "mid", "new"}, names(nodes))

	SortPolicy{Key: SortDate, Desc: true}.Order(nodes)
	assert.Equal(t, []string{"new", "mid", "old"}, names(nodes))
}

func TestOrderBySize(t *testing.T) {
	base := time.Now()
	nodes := []*Node{
		node("big.bin", KindFile, 500, base),
		node("bdir", KindDir, 4096, base),
		node("small.txt", KindFile, 5, base),
		node("adir", KindDir, 4096, base),
	}

	SortPolicy{Key: SortSize}.Order(nodes)
	// Directories compare as size zero and tie-break by name, so they land
	// ahead of both files even without dirs-first.
	assert.Equal(t, []string{"adir", "bdir", "small.txt", "big.bin"}, names(nodes))
}

func TestOrderByExt(t *testing.T) {
	base := time.Now()
	nodes := []*Node{
		node("main.go", KindFile, 1, base),
		node("README", KindFile, 1, base),
		node("app.css", KindFile, 1, base),
	}

	SortPolicy{Key: SortExt}.Order(nodes)
	assert.Equal(t, []string{"README", "app.css", "main.go"}, names(nodes),
		"empty extension sorts first")
}

func TestOrderByType(t *testing.T) {
	base := time.Now()
	nodes := []*Node{
		node("ln", KindSymlink, 0, base),
		node("b.rb", KindFile, 1, base),
		node("a.go", KindFile, 1, base),
		node("dir", KindDir, 0, base),
	}

	SortPolicy{Key: SortType}.Order(nodes)
	assert.Equal(t, []string{"dir", "a.go", "b.rb", "ln"}, names(nodes),
		"directory before files before other kinds, files by extension")
}

func TestOrderDirsFirst(t *testing.T) {
	base := time.Now()
	build := func() []*Node {
		return []*Node{
			node("zz.txt", KindFile, 10, base),
			node("mid", KindDir, 0, base),
			node("aa.txt", KindFile, 20, base),
			node("top", KindDir, 0, base),
		}
	}

	for _, desc := range []bool{false, true} {
		for _, key := range []SortKey{SortName, SortDate, SortSize, SortType, SortExt} {
			nodes := build()
			SortPolicy{Key: key, Desc: desc, DirsFirst: true}.Order(nodes)
			seenFile := false
			for _, n := range nodes {
				if n.Meta.Kind == KindDir {
					assert.False(t, seenFile, "directory after file with key=%v desc=%v: %v", key, desc, names(nodes))
				} else {
					seenFile = true
				}
			}
		}
	}

	// Direction still applies within each partition.
	nodes := build()
	SortPolicy{Key: SortName, Desc: true, DirsFirst: true}.Order(nodes)
	assert.Equal(t, []string{"top", "mid", "zz.txt", "aa.txt"}, names(nodes))
}

func TestOrderInterleavedWithoutDirsFirst(t *testing.T) {
	base := time.Now()
	nodes := []*Node{
		node("zfile.txt", KindFile, 1, base),
		node("adir", KindDir, 0, base),
		node("mfile.txt", KindFile, 1, base),
	}

	SortPolicy{Key: SortName, DirsFirst: false}.Order(nodes)
	assert.Equal(t, []string{"adir", "mfile.txt", "zfile.txt"}, names(nodes))
}

func TestOrderStableAndIdempotent(t *testing.T) {
	base := time.Now()
	// Equal dates across the board: a stable sort must preserve listing order.
	nodes := []*Node{
		node("c", KindFile, 1, base),
		node("a", KindFile, 1, base),
		node("b", KindFile, 1, base),
	}
	policy := SortPolicy{Key: SortDate}

	policy.Order(nodes)
	assert.Equal(t, []string{"c", "a", "b"}, names(nodes), "equal keys keep original order")

	policy.Order(nodes)
	assert.Equal(t, []string{"c", "a", "b"}, names(nodes), "sorting again changes nothing")
}
