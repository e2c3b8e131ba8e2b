package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fenceLanguages maps extensions to the language identifier used on fenced
// code blocks in markdown output.
var fenceLanguages = map[string]string{
	"py":   "python",
	"js":   "javascript",
	"jsx":  "jsx",
	"ts":   "typescript",
	"tsx":  "tsx",
	"php":  "php",
	"java": "java",
	"rb":   "ruby",
	"go":   "go",
	"rs":   "rust",
	"c":    "c",
	"cpp":  "cpp",
	"hpp":  "cpp",
	"h":    "c",
	"cs":   "csharp",
	"kt":   "kotlin",
	"kts":  "kotlin",
	"sc":   "scala",
	"sh":   "bash",
	"bash": "bash",
	"zsh":  "bash",
	"fish": "fish",
	"pl":   "perl",
	"pm":   "perl",
	"css":  "css",
	"scss": "scss",
	"less": "less",
	"sql":  "sql",
	"md":   "markdown",
	"json": "json",
	"xml":  "xml",
	"yaml": "yaml",
	"yml":  "yaml",
	"toml": "toml",
	"ini":  "ini",
	"conf": "conf",
	"csv":  "csv",
	"html": "html",
	"htm":  "html",
}

// specialFilenames covers extensionless files whose name implies a language.
var specialFilenames = map[string]string{
	"Dockerfile": "dockerfile",
	"Makefile":   "makefile",
}

// guessLanguage returns the fence language for a file, defaulting to "text".
func guessLanguage(meta EntryMeta) string {
	if lang, ok := specialFilenames[meta.Name]; ok {
		return lang
	}
	if lang, ok := fenceLanguages[meta.Ext()]; ok {
		return lang
	}
	return "text"
}

// fileTypeDesc is the short descriptor shown next to a file entry. Not a
// MIME sniff; the language table plus the archive set cover what the listing
// needs.
func fileTypeDesc(meta EntryMeta) string {
	switch meta.Kind {
	case KindSymlink, KindSocket, KindPipe, KindDevice:
		return meta.Kind.String()
	}
	if archiveExts[meta.Ext()] {
		return "archive"
	}
	if lang, ok := specialFilenames[meta.Name]; ok {
		return lang
	}
	if lang, ok := fenceLanguages[meta.Ext()]; ok {
		return lang
	}
	return "file"
}

// loadCustomGroups looks for a groups.yml in the standard config locations
// and parses it as a map of group name to extension list. A missing file is
// not an error; a malformed one is reported and skipped.
func loadCustomGroups() map[string][]string {
	configPaths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(home, ".config", "canopy"))
	}
	configPaths = append(configPaths, ".")

	var groupsPath string
	for _, p := range configPaths {
		testPath := filepath.Join(p, "groups.yml")
		if _, err := os.Stat(testPath); err == nil {
			groupsPath = testPath
			break
		}
	}
	if groupsPath == "" {
		return nil
	}

	raw, err := os.ReadFile(groupsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read %s: %v\n", groupsPath, err)
		return nil
	}
	var groups map[string][]string
	if err := yaml.Unmarshal(raw, &groups); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not parse %s: %v\n", groupsPath, err)
		return nil
	}
	return groups
}
