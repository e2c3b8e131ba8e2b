package main

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// builtinGroups maps group names to the extensions they cover. A groups.yml
// in the config directory can add to or override these (see language.go).
var builtinGroups = map[string][]string{
	"web":    {"html", "htm", "css", "scss", "less", "js", "jsx", "ts", "tsx"},
	"docs":   {"md", "txt", "pdf", "doc", "docx", "odt", "rtf"},
	"images": {"jpg", "jpeg", "png", "gif", "svg", "webp", "bmp"},
	"code":   {"py", "java", "cpp", "c", "h", "hpp", "cs", "go", "rs", "php", "rb", "pl", "scala", "kt", "swift"},
	"config": {"json", "yaml", "yml", "toml", "ini", "conf", "xml"},
	"data":   {"csv", "sql", "db", "sqlite"},
	"script": {"sh", "bash", "zsh", "fish", "ps1", "bat", "cmd"},
}

var archiveExts = map[string]bool{
	"zip": true, "tar": true, "gz": true, "tgz": true, "bz2": true,
	"xz": true, "7z": true, "rar": true, "zst": true, "jar": true,
}

// windowsExecExts is the executable fallback for platforms without POSIX
// permission bits.
var windowsExecExts = map[string]bool{
	"exe": true, "bat": true, "cmd": true, "com": true, "ps1": true,
}

// binaryProbeBytes is how much of a file the text/binary sniff inspects.
const binaryProbeBytes = 8000

// Classifier decides whether an entry matches a single type token.
type Classifier struct {
	groups map[string]map[string]bool
}

// newClassifier builds a classifier from the built-in groups merged with any
// user-defined extras. User entries extend a built-in group rather than
// replacing it.
func newClassifier(extra map[string][]string) *Classifier {
	groups := make(map[string]map[string]bool, len(builtinGroups))
	add := func(name string, exts []string) {
		set := groups[name]
		if set == nil {
			set = make(map[string]bool, len(exts))
			groups[name] = set
		}
		for _, ext := range exts {
			set[normalizeExt(ext)] = true
		}
	}
	for name, exts := range builtinGroups {
		add(name, exts)
	}
	for name, exts := range extra {
		add(name, exts)
	}
	return &Classifier{groups: groups}
}

// Matches reports whether the entry satisfies one token. Text/binary tokens
// need a content probe; the caller supplies isText so repeated tokens probe a
// file at most once.
func (c *Classifier) Matches(meta EntryMeta, tok TypeToken, isText func() bool) bool {
	switch tok.Kind {
	case TokenExt:
		return meta.Kind == KindFile && meta.Ext() == tok.Name
	case TokenGroup:
		// Unknown group names match nothing; they are not an error.
		set := c.groups[tok.Name]
		return meta.Kind == KindFile && set != nil && set[meta.Ext()]
	}

	switch tok.Special {
	case SpecialBinary:
		return meta.Kind == KindFile && !isText()
	case SpecialText:
		return meta.Kind == KindFile && isText()
	case SpecialDir:
		return meta.Kind == KindDir
	case SpecialSocket:
		return meta.Kind == KindSocket
	case SpecialPipe:
		return meta.Kind == KindPipe
	case SpecialExecutable:
		if runtime.GOOS == "windows" {
			return meta.Kind == KindFile && windowsExecExts[meta.Ext()]
		}
		return meta.Executable()
	case SpecialSymlink:
		return meta.Kind == KindSymlink
	case SpecialDevice:
		return meta.Kind == KindDevice
	case SpecialHidden:
		return meta.Hidden()
	case SpecialEmpty:
		return meta.IsEmpty
	case SpecialArchive:
		return meta.Kind == KindFile && archiveExts[meta.Ext()]
	case SpecialAll:
		return true
	}
	return false
}

// isTextFile sniffs the first binaryProbeBytes of a file and reports whether
// it looks like text: no NUL byte and a low ratio of non-printable bytes.
// Empty and unreadable files count as text so they are never silently
// dropped by a binary check.
func isTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, binaryProbeBytes)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	return looksLikeText(buf[:n])
}

func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	var suspect int
	for _, b := range data {
		if b == 0 {
			return false
		}
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' && b != '\f' {
			suspect++
		}
	}
	return suspect*10 <= len(data)*3
}

func normalizeExt(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return strings.ToLower(ext)
}
