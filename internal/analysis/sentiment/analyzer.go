package sentiment

import (
	"strings"
	"unicode"

	"github.com/zhouzirui/papi/backend/internal/analysis/lexicon"
)

// negationFactor flips and dampens a negated word, so "not good" is mildly negative.
const negationFactor = -0.5

// Result is the outcome of scoring one utterance.
type Result struct {
	Polarity float64 `json:"polarity"`
	Matched  int     `json:"matched"`
}

// Analyzer scores text polarity against a lexicon.
type Analyzer struct {
	words        map[string]float64
	negations    map[string]struct{}
	intensifiers map[string]float64
}

// NewAnalyzer builds an analyzer from a loaded lexicon.
func NewAnalyzer(lex *lexicon.Lexicon) *Analyzer {
	negations := make(map[string]struct{}, len(lex.Negations))
	for _, word := range lex.Negations {
		negations[word] = struct{}{}
	}

	return &Analyzer{
		words:        lex.Sentiment,
		negations:    negations,
		intensifiers: lex.Intensifiers,
	}
}

// Polarity returns the mean polarity of the scored words in text, in [-1, 1].
// Text without any scored word is neutral (0).
func (a *Analyzer) Polarity(text string) float64 {
	return a.Analyze(text).Polarity
}

// Analyze scores text and reports how many lexicon words contributed.
func (a *Analyzer) Analyze(text string) Result {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Result{}
	}

	var (
		sum      float64
		matched  int
		modifier = 1.0
	)

	for _, word := range tokenize(normalized) {
		if _, ok := a.negations[word]; ok {
			modifier *= negationFactor
			continue
		}
		if factor, ok := a.intensifiers[word]; ok {
			modifier *= factor
			continue
		}

		if score, ok := a.words[word]; ok {
			sum += clamp(score * modifier)
			matched++
		}
		modifier = 1.0
	}

	if matched == 0 {
		return Result{}
	}
	return Result{Polarity: clamp(sum / float64(matched)), Matched: matched}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
