package main

import (
	"fmt"
	"regexp"
)

// Options is the configuration assembled by the cobra/viper layer. Compile
// turns it into a ready engine and renderer, rejecting anything malformed
// before the first directory is read.
type Options struct {
	Root         string
	Depth        int
	Format       string
	Excludes     []string
	ShowContent  bool
	MaxSize      int64
	TypeSpecs    []string
	Pattern      string
	Context      int
	WholeFile    bool
	Highlight    bool
	SortKey      string
	Direction    string
	DirsFirst    bool
	UseGitignore bool
	CountTokens  bool
	TokenModel   string
}

// Compile validates every option with decision logic behind it: pattern
// regex, sort key and direction, type tokens, format. All failures here are
// configuration errors and fatal.
func (o Options) Compile() (*Engine, *Renderer, error) {
	if o.Format != "markdown" && o.Format != "text" {
		return nil, nil, fmt.Errorf("unknown output format %q (use markdown or text)", o.Format)
	}
	if o.Depth < 0 {
		return nil, nil, fmt.Errorf("depth must be non-negative, got %d", o.Depth)
	}
	if o.Context < 0 {
		return nil, nil, fmt.Errorf("context must be non-negative, got %d", o.Context)
	}
	if o.MaxSize <= 0 {
		return nil, nil, fmt.Errorf("max-size must be positive, got %d", o.MaxSize)
	}

	sortKey, err := ParseSortKey(o.SortKey)
	if err != nil {
		return nil, nil, err
	}
	desc, err := ParseSortDirection(o.Direction)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := ParseTypeTokens(o.TypeSpecs)
	if err != nil {
		return nil, nil, err
	}

	var pattern *regexp.Regexp
	if o.Pattern != "" {
		pattern, err = regexp.Compile(o.Pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}

	excludes := make(map[string]bool, len(o.Excludes))
	for _, name := range o.Excludes {
		if name != "" {
			excludes[name] = true
		}
	}

	classifier := newClassifier(loadCustomGroups())
	engine := &Engine{
		Depth:     o.Depth,
		Excludes:  excludes,
		Predicate: NewPredicateSet(tokens, classifier),
		Sort:      SortPolicy{Key: sortKey, Desc: desc, DirsFirst: o.DirsFirst},
		Matcher: &ContentMatcher{
			Enabled:   o.ShowContent,
			Pattern:   pattern,
			MaxSize:   o.MaxSize,
			Context:   o.Context,
			WholeFile: o.WholeFile,
			Highlight: o.Highlight,
		},
		UseGitignore: o.UseGitignore,
	}
	renderer := &Renderer{
		Format:     o.Format,
		SortKey:    sortKey,
		ShowTokens: o.CountTokens,
	}
	return engine, renderer, nil
}
