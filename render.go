package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Renderer serializes a finished tree into markdown or plain text. It makes
// no filtering or ordering decisions of its own; the nodes arrive complete
// and already sorted.
type Renderer struct {
	Format     string // "markdown" or "text"
	SortKey    SortKey
	ShowTokens bool
}

var matchColor = color.New(color.FgYellow, color.Bold)

// Render writes the tree below the root node. The root itself is announced
// by the header, not repeated here.
func (r *Renderer) Render(root *Node) string {
	var b strings.Builder
	r.renderChildren(&b, root, "")
	return b.String()
}

func (r *Renderer) renderChildren(b *strings.Builder, dir *Node, prefix string) {
	for _, node := range dir.Children {
		if node.Meta.Kind == KindDir {
			r.renderDir(b, node, prefix)
			r.renderChildren(b, node, prefix+"  ")
		} else {
			r.renderFile(b, node, prefix)
		}
	}
}

func (r *Renderer) renderDir(b *strings.Builder, node *Node, prefix string) {
	var annot string
	switch r.SortKey {
	case SortDate:
		annot = fmt.Sprintf(" (modified: %s)", formatModified(node.Meta.ModTime))
	case SortSize:
		annot = fmt.Sprintf(" (%d items)", node.ChildCount)
	}
	if node.Warning != "" {
		annot += fmt.Sprintf(" (! %s)", node.Warning)
	}

	if r.Format == "markdown" {
		fmt.Fprintf(b, "%s\U0001F4C1 **%s/**%s\n", prefix, node.Meta.Name, annot)
	} else {
		fmt.Fprintf(b, "%s[DIR] %s/%s\n", prefix, node.Meta.Name, annot)
	}
}

func (r *Renderer) renderFile(b *strings.Builder, node *Node, prefix string) {
	meta := node.Meta
	extInfo := ""
	if ext := meta.Ext(); ext != "" {
		extInfo = "." + ext
	}
	tokenInfo := ""
	if r.ShowTokens && meta.Kind == KindFile {
		tokenInfo = fmt.Sprintf(" (%d tokens)", node.TokenCount)
	}
	warnInfo := ""
	if node.Warning != "" {
		warnInfo = fmt.Sprintf(" (! %s)", node.Warning)
	}

	icon := "[FILE] "
	if r.Format == "markdown" {
		icon = "\U0001F4C4 "
	}
	fmt.Fprintf(b, "%s%s%s (%s, %s) [%s]%s%s%s\n",
		prefix, icon, meta.Name, formatSize(meta.Size), formatModified(meta.ModTime),
		fileTypeDesc(meta), extInfo, tokenInfo, warnInfo)

	r.renderContent(b, node, prefix)
}

func (r *Renderer) renderContent(b *strings.Builder, node *Node, prefix string) {
	ex := node.Excerpt
	if ex.Kind == ExcerptNone {
		if ex.Oversized {
			fmt.Fprintf(b, "%s  (File not displayed - %s)\n", prefix, formatSize(node.Meta.Size))
		}
		return
	}

	b.WriteString("\n")
	if r.Format == "markdown" {
		fmt.Fprintf(b, "%s  Content:\n", prefix)
		fmt.Fprintf(b, "%s  ```%s\n", prefix, guessLanguage(node.Meta))
	} else {
		fmt.Fprintf(b, "%s  --- Content Start ---\n", prefix)
	}

	fmt.Fprintf(b, "%s     ┌ Total lines: %d\n", prefix, ex.TotalLines)
	fmt.Fprintf(b, "%s     │\n", prefix)

	switch ex.Kind {
	case ExcerptNoMatch:
		fmt.Fprintf(b, "%s    ! No matches found\n", prefix)
		fmt.Fprintf(b, "%s     │\n", prefix)
	case ExcerptWholeFile:
		matched := intSet(ex.MatchLines)
		highlights := highlightIndex(ex.Highlights)
		for i, line := range ex.Lines {
			n := i + 1
			r.writeLine(b, prefix, n, line, matched[n], highlights[n])
		}
		fmt.Fprintf(b, "%s     │\n", prefix)
	case ExcerptMatches:
		for i, span := range ex.Spans {
			if i > 0 {
				fmt.Fprintf(b, "%s     │\n", prefix)
				fmt.Fprintf(b, "%s   ⋯ │ ...\n", prefix)
				fmt.Fprintf(b, "%s     │\n", prefix)
			}
			matched := intSet(span.MatchLines)
			highlights := highlightIndex(span.Highlights)
			for j, line := range span.Lines {
				n := span.Start + j
				r.writeLine(b, prefix, n, line, matched[n], highlights[n])
			}
		}
		fmt.Fprintf(b, "%s     │\n", prefix)
	}

	if r.Format == "markdown" {
		fmt.Fprintf(b, "%s  ```\n", prefix)
	} else {
		fmt.Fprintf(b, "%s  --- Content End ---\n", prefix)
	}
	b.WriteString("\n")
}

// writeLine emits one gutter-numbered content line, emphasizing match ranges
// when the excerpt carries them. Coloring is globally gated by color.NoColor
// (set from --no-color and tty detection), so file and clipboard output stay
// free of escape codes.
func (r *Renderer) writeLine(b *strings.Builder, prefix string, n int, line string, isMatch bool, ranges [][2]int) {
	marker := "  "
	if isMatch {
		marker = "> "
	}
	fmt.Fprintf(b, "%s%4d │%s%s\n", prefix, n, marker, emphasize(line, ranges))
}

func emphasize(line string, ranges [][2]int) string {
	if len(ranges) == 0 {
		return line
	}
	var out strings.Builder
	last := 0
	for _, rg := range ranges {
		start, end := rg[0], rg[1]
		if start < last || end > len(line) {
			continue
		}
		out.WriteString(line[last:start])
		out.WriteString(matchColor.Sprint(line[start:end]))
		last = end
	}
	out.WriteString(line[last:])
	return out.String()
}

func intSet(nums []int) map[int]bool {
	set := make(map[int]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set
}

func highlightIndex(highlights []Highlight) map[int][][2]int {
	idx := make(map[int][][2]int, len(highlights))
	for _, hl := range highlights {
		idx[hl.Line] = hl.Ranges
	}
	return idx
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<30:
		return fmt.Sprintf("%dG", size/(1<<30))
	case size >= 1<<20:
		return fmt.Sprintf("%dM", size/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%dK", size/(1<<10))
	}
	return fmt.Sprintf("%dB", size)
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
