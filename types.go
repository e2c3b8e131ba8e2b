package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// EntryKind classifies a filesystem object at visit time. The set is closed;
// everything the walker can encounter maps onto one of these.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
	KindSymlink
	KindSocket
	KindPipe
	KindDevice
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindSocket:
		return "socket"
	case KindPipe:
		return "pipe"
	case KindDevice:
		return "device"
	}
	return "unknown"
}

// kindOf derives the EntryKind from a file mode. Symlink wins over everything
// else because the walker never follows links.
func kindOf(mode fs.FileMode) EntryKind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSocket != 0:
		return KindSocket
	case mode&fs.ModeNamedPipe != 0:
		return KindPipe
	case mode&fs.ModeDevice != 0:
		return KindDevice
	}
	return KindFile
}

// EntryMeta is an immutable snapshot of one filesystem entry, taken when the
// walker visits it.
type EntryMeta struct {
	Path    string // path as given / joined onto the root argument
	RelPath string // relative to the traversal root, "" for the root itself
	Name    string
	Kind    EntryKind
	Size    int64
	ModTime time.Time
	Mode    fs.FileMode
	IsEmpty bool // zero-length file, or directory with no entries before filtering
}

// Ext returns the lowercased extension without the leading dot, or "" for
// directories and extensionless names.
func (m EntryMeta) Ext() string {
	if m.Kind == KindDir {
		return ""
	}
	ext := filepath.Ext(m.Name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Hidden reports whether the entry is hidden by the dot-prefix convention.
// This tool targets Unix naming; no Windows hidden-attribute check is made.
func (m EntryMeta) Hidden() bool {
	return strings.HasPrefix(m.Name, ".") && m.Name != "." && m.Name != ".."
}

// Executable reports whether any execute permission bit is set.
func (m EntryMeta) Executable() bool {
	return m.Kind == KindFile && m.Mode.Perm()&0o111 != 0
}

// TokenKind discriminates the three forms a -t filter can take.
type TokenKind int

const (
	TokenExt TokenKind = iota
	TokenGroup
	TokenSpecial
)

// SpecialKind is the closed set of bare type-filter keywords.
type SpecialKind int

const (
	SpecialBinary SpecialKind = iota
	SpecialText
	SpecialDir
	SpecialSocket
	SpecialPipe
	SpecialExecutable
	SpecialSymlink
	SpecialDevice
	SpecialHidden
	SpecialEmpty
	SpecialArchive
	SpecialAll
)

var specialKeywords = map[string]SpecialKind{
	"binary":     SpecialBinary,
	"text":       SpecialText,
	"dir":        SpecialDir,
	"socket":     SpecialSocket,
	"pipe":       SpecialPipe,
	"executable": SpecialExecutable,
	"symlink":    SpecialSymlink,
	"device":     SpecialDevice,
	"hidden":     SpecialHidden,
	"empty":      SpecialEmpty,
	"archive":    SpecialArchive,
	"all":        SpecialAll,
}

// TypeToken is one parsed type filter: an extension (ext:py), a named group
// (group:web), or a special keyword (binary, dir, hidden, ...). Tokens are
// parsed once from configuration and never mutated.
type TypeToken struct {
	Kind    TokenKind
	Name    string // extension or group name, lowercased
	Special SpecialKind
}

func (t TypeToken) String() string {
	switch t.Kind {
	case TokenExt:
		return "ext:" + t.Name
	case TokenGroup:
		return "group:" + t.Name
	}
	for kw, sk := range specialKeywords {
		if sk == t.Special {
			return kw
		}
	}
	return fmt.Sprintf("special(%d)", int(t.Special))
}

// Highlight carries the character offset ranges of every pattern occurrence
// on one line, for the renderer to emphasize. Line numbers are 1-indexed.
type Highlight struct {
	Line   int
	Ranges [][2]int // [start, end) byte offsets within the line
}

// MatchSpan is a contiguous run of lines shown around one or more pattern
// matches. Start and End are 1-indexed and inclusive; Lines holds exactly
// End-Start+1 lines. Spans whose context windows overlap or touch are merged
// before they reach the renderer.
type MatchSpan struct {
	Start      int
	End        int
	Lines      []string
	MatchLines []int       // subset of [Start, End] whose lines matched
	Highlights []Highlight // populated only when highlighting was requested
}

// ExcerptKind tells the renderer what a ContentExcerpt holds.
type ExcerptKind int

const (
	// ExcerptNone: content display disabled, file oversized, or binary.
	ExcerptNone ExcerptKind = iota
	// ExcerptMatches: pattern given, one or more merged spans produced.
	ExcerptMatches
	// ExcerptWholeFile: full content, either because no pattern was given or
	// because whole-file mode fired on at least one match.
	ExcerptWholeFile
	// ExcerptNoMatch: pattern given, nothing matched; the file is still
	// listed but carries no content.
	ExcerptNoMatch
)

// ContentExcerpt is the content annotation attached to a file node.
type ContentExcerpt struct {
	Kind       ExcerptKind
	Spans      []MatchSpan // ExcerptMatches
	Lines      []string    // ExcerptWholeFile
	MatchLines []int       // ExcerptWholeFile with a pattern
	Highlights []Highlight // ExcerptWholeFile with highlighting requested
	TotalLines int
	Oversized  bool // size exceeded the content bound; Kind is ExcerptNone
}

// Node is the traversal's output unit: entry metadata, an optional content
// excerpt for files, and ordered children for directories.
type Node struct {
	Meta       EntryMeta
	Excerpt    ContentExcerpt
	Children   []*Node
	Warning    string // non-fatal read failure on this entry
	TokenCount int    // populated by the token post-pass when enabled
	ChildCount int    // direct entries before filtering (directories only)
}

// Warning records one non-fatal problem encountered during the walk.
type Warning struct {
	Path    string
	Message string
}

// Diagnostics accumulates non-fatal warnings alongside the tree. A single
// collector is threaded through the recursion so the engine stays reentrant.
type Diagnostics struct {
	Warnings []Warning
}

func (d *Diagnostics) Warnf(path, format string, args ...any) {
	d.Warnings = append(d.Warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Summary holds the aggregate figures printed after the tree.
type Summary struct {
	TotalFiles  int
	TotalDirs   int
	TotalSize   int64
	TotalTokens int
}
