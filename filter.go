package main

import (
	"fmt"
	"strings"
)

// ParseTypeTokens parses the repeated -t values. Accepted forms are
// "ext:EXTENSION", "group:NAME", and a bare special keyword. An unknown bare
// keyword is a configuration error (unknown group names are allowed and
// simply match nothing).
func ParseTypeTokens(specs []string) ([]TypeToken, error) {
	tokens := make([]TypeToken, 0, len(specs))
	for _, spec := range specs {
		switch {
		case strings.HasPrefix(spec, "ext:"):
			ext := normalizeExt(spec[len("ext:"):])
			if ext == "" {
				return nil, fmt.Errorf("empty extension in type filter %q", spec)
			}
			tokens = append(tokens, TypeToken{Kind: TokenExt, Name: ext})
		case strings.HasPrefix(spec, "group:"):
			name := strings.ToLower(spec[len("group:"):])
			if name == "" {
				return nil, fmt.Errorf("empty group in type filter %q", spec)
			}
			tokens = append(tokens, TypeToken{Kind: TokenGroup, Name: name})
		default:
			special, ok := specialKeywords[strings.ToLower(spec)]
			if !ok {
				return nil, fmt.Errorf("unknown type filter %q", spec)
			}
			tokens = append(tokens, TypeToken{Kind: TokenSpecial, Special: special})
		}
	}
	return tokens, nil
}

// PredicateSet is the OR-combination of all type tokens the user supplied.
// An empty set keeps everything.
type PredicateSet struct {
	tokens     []TypeToken
	classifier *Classifier
}

func NewPredicateSet(tokens []TypeToken, classifier *Classifier) *PredicateSet {
	return &PredicateSet{tokens: tokens, classifier: classifier}
}

// Empty reports whether no filter was requested at all.
func (p *PredicateSet) Empty() bool {
	return len(p.tokens) == 0
}

// Keep decides survival for non-directory entries: true when the set is
// empty or any token matches. The text/binary probe runs lazily and at most
// once per entry regardless of how many tokens need it.
func (p *PredicateSet) Keep(meta EntryMeta) bool {
	if len(p.tokens) == 0 {
		return true
	}
	isText := p.lazyTextProbe(meta)
	for _, tok := range p.tokens {
		if p.classifier.Matches(meta, tok, isText) {
			return true
		}
	}
	return false
}

// dirToken reports whether a token can meaningfully target a directory's own
// metadata. All other tokens leave directories exempt: a directory then
// survives only through surviving descendants.
func dirToken(tok TypeToken) bool {
	if tok.Kind != TokenSpecial {
		return false
	}
	switch tok.Special {
	case SpecialDir, SpecialHidden, SpecialEmpty, SpecialAll:
		return true
	}
	return false
}

// KeepDir evaluates only the directory-targeting tokens against a
// directory's own metadata. False means the directory was not itself
// matched; the engine may still keep it for the sake of descendants.
func (p *PredicateSet) KeepDir(meta EntryMeta) bool {
	isText := func() bool { return false }
	for _, tok := range p.tokens {
		if dirToken(tok) && p.classifier.Matches(meta, tok, isText) {
			return true
		}
	}
	return false
}

func (p *PredicateSet) lazyTextProbe(meta EntryMeta) func() bool {
	var known, val bool
	return func() bool {
		if !known {
			val = meta.Kind == KindFile && isTextFile(meta.Path)
			known = true
		}
		return val
	}
}
