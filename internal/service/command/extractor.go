// Package command pulls an "execute"/"run" directive out of free text.
package command

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Verb is the action a directive asks for.
type Verb string

const (
	VerbNone    Verb = ""
	VerbExecute Verb = "execute"
)

// keywords are searched in order; an earlier keyword wins wherever it appears.
var keywords = []string{"execute", "run"}

// Directive is the command found in one message. Verb is VerbNone when no
// keyword was present; Target is empty when the keyword was the last token.
type Directive struct {
	Verb   Verb   `json:"verb"`
	Target string `json:"targetName"`
}

// HasVerb reports whether a keyword was found.
func (d Directive) HasVerb() bool {
	return d.Verb != VerbNone
}

// Launchable reports whether the directive names something to launch.
func (d Directive) Launchable() bool {
	return d.HasVerb() && d.Target != ""
}

// Extract scans whitespace-separated tokens for a whole-token, case-insensitive
// keyword and returns the capitalized remainder as the target.
func Extract(text string) Directive {
	tokens := strings.Fields(text)

	for _, keyword := range keywords {
		for i, token := range tokens {
			if !strings.EqualFold(token, keyword) {
				continue
			}
			return Directive{
				Verb:   VerbExecute,
				Target: capitalize(strings.Join(tokens[i+1:], " ")),
			}
		}
	}

	return Directive{}
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
