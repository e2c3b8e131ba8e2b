package main

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts LLM tokens for displayed content.
type Tokenizer interface {
	CountTokens(text string) int
	Close()
}

const defaultTiktokenModel = "gpt-4o"

type tiktokenWrapper struct {
	ttk *tiktoken.Tiktoken
}

func (w *tiktokenWrapper) CountTokens(text string) int {
	if w.ttk == nil {
		return 0
	}
	return len(w.ttk.EncodeOrdinary(text))
}

func (w *tiktokenWrapper) Close() {}

// newTokenizer loads the tiktoken encoding for the given model, falling back
// to the default model's encoding when the name is unknown.
func newTokenizer(model string) (Tokenizer, error) {
	if model == "" {
		model = defaultTiktokenModel
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.EncodingForModel(defaultTiktokenModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding for model %q: %w", model, err)
		}
	}
	return &tiktokenWrapper{ttk: tke}, nil
}

// countTreeTokens annotates every file node with the token count of the
// content that will be rendered for it. It runs synchronously over the
// already-built tree: the excerpts hold the text, so no file is re-read.
func countTreeTokens(node *Node, tk Tokenizer) {
	if node.Meta.Kind == KindFile {
		node.TokenCount = tk.CountTokens(excerptText(node.Excerpt))
	}
	for _, child := range node.Children {
		countTreeTokens(child, tk)
	}
}

func excerptText(ex ContentExcerpt) string {
	switch ex.Kind {
	case ExcerptWholeFile:
		return strings.Join(ex.Lines, "\n")
	case ExcerptMatches:
		var b strings.Builder
		for _, span := range ex.Spans {
			for _, line := range span.Lines {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		return b.String()
	}
	return ""
}
