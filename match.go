package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ContentMatcher extracts content excerpts from files that survived
// filtering. All line numbers it produces are 1-indexed.
type ContentMatcher struct {
	Enabled   bool
	Pattern   *regexp.Regexp // nil means show full content
	MaxSize   int64
	Context   int
	WholeFile bool
	Highlight bool
}

// Extract scans one file and returns its excerpt. The size argument comes
// from the directory listing, so oversized files are rejected without being
// opened at all. A non-nil error means the file could not be read; the
// caller degrades the entry to a warning node.
func (m *ContentMatcher) Extract(path string, size int64) (ContentExcerpt, error) {
	if !m.Enabled {
		return ContentExcerpt{Kind: ExcerptNone}, nil
	}
	if m.MaxSize > 0 && size > m.MaxSize {
		return ContentExcerpt{Kind: ExcerptNone, Oversized: true}, nil
	}
	// Binary files are never scanned, same heuristic as the binary filter.
	if !isTextFile(path) {
		return ContentExcerpt{Kind: ExcerptNone}, nil
	}

	lines, err := readLines(path)
	if err != nil {
		return ContentExcerpt{Kind: ExcerptNone}, err
	}
	total := len(lines)

	if m.Pattern == nil {
		return ContentExcerpt{Kind: ExcerptWholeFile, Lines: lines, TotalLines: total}, nil
	}

	var matchLines []int
	var highlights []Highlight
	for i, line := range lines {
		ranges := m.Pattern.FindAllStringIndex(line, -1)
		if len(ranges) == 0 {
			continue
		}
		matchLines = append(matchLines, i+1)
		hl := Highlight{Line: i + 1, Ranges: make([][2]int, 0, len(ranges))}
		for _, r := range ranges {
			hl.Ranges = append(hl.Ranges, [2]int{r[0], r[1]})
		}
		highlights = append(highlights, hl)
	}

	if len(matchLines) == 0 {
		return ContentExcerpt{Kind: ExcerptNoMatch, TotalLines: total}, nil
	}

	if m.WholeFile {
		ex := ContentExcerpt{
			Kind:       ExcerptWholeFile,
			Lines:      lines,
			MatchLines: matchLines,
			TotalLines: total,
		}
		if m.Highlight {
			ex.Highlights = highlights
		}
		return ex, nil
	}

	// Context windows around each match, clamped to the file, then merged so
	// no line is emitted twice.
	windows := make([][2]int, 0, len(matchLines))
	for _, line := range matchLines {
		start := line - m.Context
		if start < 1 {
			start = 1
		}
		end := line + m.Context
		if end > total {
			end = total
		}
		windows = append(windows, [2]int{start, end})
	}
	merged := mergeIntervals(windows)

	spans := make([]MatchSpan, 0, len(merged))
	for _, iv := range merged {
		span := MatchSpan{
			Start: iv[0],
			End:   iv[1],
			Lines: lines[iv[0]-1 : iv[1]],
		}
		for _, line := range matchLines {
			if line >= iv[0] && line <= iv[1] {
				span.MatchLines = append(span.MatchLines, line)
			}
		}
		if m.Highlight {
			for _, hl := range highlights {
				if hl.Line >= iv[0] && hl.Line <= iv[1] {
					span.Highlights = append(span.Highlights, hl)
				}
			}
		}
		spans = append(spans, span)
	}

	return ContentExcerpt{Kind: ExcerptMatches, Spans: spans, TotalLines: total}, nil
}

// mergeIntervals merges sorted-or-not inclusive line intervals, joining any
// pair that overlaps or is directly adjacent (next start <= previous end+1).
func mergeIntervals(intervals [][2]int) [][2]int {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([][2]int, len(intervals))
	copy(sorted, intervals)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j][0] < sorted[j-1][0]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	merged := [][2]int{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv[0] <= last[1]+1 {
			if iv[1] > last[1] {
				last[1] = iv[1]
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// readLines reads a whole file as lines. The scanner buffer is sized for the
// longest line we are prepared to show rather than the bufio default.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		// bufio.Scanner strips the \n but leaves the \r of CRLF endings.
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	return lines, nil
}
