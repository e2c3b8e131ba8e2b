package main

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the primary ordering of sibling entries.
type SortKey int

const (
	SortName SortKey = iota
	SortDate
	SortSize
	SortType
	SortExt
)

func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(s) {
	case "name":
		return SortName, nil
	case "date":
		return SortDate, nil
	case "size":
		return SortSize, nil
	case "type":
		return SortType, nil
	case "ext":
		return SortExt, nil
	}
	return SortName, fmt.Errorf("unknown sort key %q (use name, date, size, type, or ext)", s)
}

func (k SortKey) String() string {
	switch k {
	case SortDate:
		return "date"
	case SortSize:
		return "size"
	case SortType:
		return "type"
	case SortExt:
		return "ext"
	}
	return "name"
}

// ParseSortDirection returns true for descending order.
func ParseSortDirection(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "asc", "":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, fmt.Errorf("unknown sort direction %q (use asc or desc)", s)
}

// SortPolicy orders sibling nodes by key and direction, optionally keeping
// directories ahead of everything else. Sorting is stable: entries that
// compare equal keep their listing order.
type SortPolicy struct {
	Key       SortKey
	Desc      bool
	DirsFirst bool
}

// Order sorts siblings in place. With DirsFirst set, directories come before
// non-directories regardless of direction; the direction applies within each
// partition.
func (p SortPolicy) Order(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if p.DirsFirst {
			ad, bd := a.Meta.Kind == KindDir, b.Meta.Kind == KindDir
			if ad != bd {
				return ad
			}
		}
		c := p.compare(a, b)
		if p.Desc {
			return c > 0
		}
		return c < 0
	})
}

// kindRank orders kinds for the type key: directories, then regular files,
// then everything else.
func kindRank(k EntryKind) int {
	switch k {
	case KindDir:
		return 0
	case KindFile:
		return 1
	}
	return 2
}

func (p SortPolicy) compare(a, b *Node) int {
	switch p.Key {
	case SortDate:
		am, bm := a.Meta.ModTime, b.Meta.ModTime
		switch {
		case am.Before(bm):
			return -1
		case am.After(bm):
			return 1
		}
		return 0
	case SortSize:
		// Recursive directory sizes are never computed; directories compare
		// as size zero and fall through to the name tie-break.
		as, bs := a.Meta.Size, b.Meta.Size
		if a.Meta.Kind == KindDir {
			as = 0
		}
		if b.Meta.Kind == KindDir {
			bs = 0
		}
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return compareName(a, b)
	case SortType:
		if c := kindRank(a.Meta.Kind) - kindRank(b.Meta.Kind); c != 0 {
			return c
		}
		return strings.Compare(a.Meta.Ext(), b.Meta.Ext())
	case SortExt:
		// Empty extension sorts first naturally.
		if c := strings.Compare(a.Meta.Ext(), b.Meta.Ext()); c != 0 {
			return c
		}
		return compareName(a, b)
	}
	return compareName(a, b)
}

func compareName(a, b *Node) int {
	if c := strings.Compare(strings.ToLower(a.Meta.Name), strings.ToLower(b.Meta.Name)); c != 0 {
		return c
	}
	// Case-insensitive ties resolve on the raw name so ordering is total.
	return strings.Compare(a.Meta.Name, b.Meta.Name)
}
