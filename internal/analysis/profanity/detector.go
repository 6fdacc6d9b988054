// Package profanity matches whole words against the Guardian's profanity list.
package profanity

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/zhouzirui/papi/backend/internal/analysis/lexicon"
)

// Detector reports whether text contains a listed word. Matching is whole-word
// and case-insensitive; leet-speak substitutions are folded before a second pass.
type Detector struct {
	words         map[string]struct{}
	substitutions map[rune]rune
}

// NewDetector builds a detector from a loaded lexicon.
func NewDetector(lex *lexicon.Lexicon) *Detector {
	words := make(map[string]struct{}, len(lex.Profanity))
	for _, w := range lex.Profanity {
		if w != "" {
			words[w] = struct{}{}
		}
	}

	subs := make(map[rune]rune, len(lex.Substitutions))
	for from, to := range lex.Substitutions {
		fromRunes, toRunes := []rune(from), []rune(strings.ToLower(to))
		if len(fromRunes) == 1 && len(toRunes) > 0 {
			subs[fromRunes[0]] = toRunes[0]
		}
	}

	return &Detector{words: words, substitutions: subs}
}

// ContainsProfanity reports whether any token of text is a listed word.
func (d *Detector) ContainsProfanity(text string) bool {
	_, ok := d.FirstMatch(text)
	return ok
}

// FirstMatch returns the first listed word found in text. Compatibility forms
// (fullwidth letters, ligatures) are folded to their plain equivalents first.
func (d *Detector) FirstMatch(text string) (string, bool) {
	for _, token := range strings.Fields(strings.ToLower(norm.NFKC.String(text))) {
		if word, ok := d.matchWords(token); ok {
			return word, true
		}
		if word, ok := d.matchWords(d.fold(token)); ok {
			return word, true
		}
		// Trailing punctuation such as "!" would otherwise fold into a letter.
		if trimmed := strings.TrimRightFunc(token, unicode.IsPunct); trimmed != token {
			if word, ok := d.matchWords(d.fold(trimmed)); ok {
				return word, true
			}
		}
	}
	return "", false
}

func (d *Detector) matchWords(token string) (string, bool) {
	for _, word := range strings.FieldsFunc(token, isSeparator) {
		if _, ok := d.words[word]; ok {
			return word, true
		}
	}
	return "", false
}

func (d *Detector) fold(token string) string {
	return strings.Map(func(r rune) rune {
		if to, ok := d.substitutions[r]; ok {
			return to
		}
		return r
	}, token)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
