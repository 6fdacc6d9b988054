// Package lexicon loads the word lists the Guardian moderates with.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnavailable marks a lexicon that cannot back moderation. It is a startup failure.
var ErrUnavailable = errors.New("guardian lexicon unavailable")

//go:embed default.yaml
var defaultLexicon []byte

// Lexicon is the parsed moderation vocabulary.
type Lexicon struct {
	Profanity     []string           `yaml:"profanity"`
	Substitutions map[string]string  `yaml:"substitutions"`
	Sentiment     map[string]float64 `yaml:"sentiment"`
	Negations     []string           `yaml:"negations"`
	Intensifiers  map[string]float64 `yaml:"intensifiers"`
}

// Default returns the lexicon compiled into the binary.
func Default() (*Lexicon, error) {
	return Parse(defaultLexicon)
}

// Load reads a lexicon from path, or the embedded default when path is empty.
func Load(path string) (*Lexicon, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML lexicon data.
func Parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if err := lex.validate(); err != nil {
		return nil, err
	}
	lex.normalize()
	return &lex, nil
}

func (l *Lexicon) validate() error {
	if len(l.Profanity) == 0 {
		return fmt.Errorf("%w: profanity list is empty", ErrUnavailable)
	}
	if len(l.Sentiment) == 0 {
		return fmt.Errorf("%w: sentiment table is empty", ErrUnavailable)
	}
	for word, score := range l.Sentiment {
		if score < -1 || score > 1 {
			return fmt.Errorf("%w: polarity for %q out of range: %v", ErrUnavailable, word, score)
		}
	}
	for from := range l.Substitutions {
		if len([]rune(from)) != 1 {
			return fmt.Errorf("%w: substitution key %q must be one character", ErrUnavailable, from)
		}
	}
	return nil
}

func (l *Lexicon) normalize() {
	for i, word := range l.Profanity {
		l.Profanity[i] = strings.ToLower(strings.TrimSpace(word))
	}
	for i, word := range l.Negations {
		l.Negations[i] = strings.ToLower(strings.TrimSpace(word))
	}

	sentiment := make(map[string]float64, len(l.Sentiment))
	for word, score := range l.Sentiment {
		sentiment[strings.ToLower(strings.TrimSpace(word))] = score
	}
	l.Sentiment = sentiment

	intensifiers := make(map[string]float64, len(l.Intensifiers))
	for word, factor := range l.Intensifiers {
		intensifiers[strings.ToLower(strings.TrimSpace(word))] = factor
	}
	l.Intensifiers = intensifiers
}
