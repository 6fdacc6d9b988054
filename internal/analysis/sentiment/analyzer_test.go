package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/papi/backend/internal/analysis/lexicon"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return NewAnalyzer(lex)
}

func TestPolarityNegativeChildUtterance(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.Polarity("I hate this")
	assert.Less(t, got, -0.3)
	assert.InDelta(t, -0.8, got, 1e-9)
}

func TestPolarityPositiveAndNeutral(t *testing.T) {
	a := newTestAnalyzer(t)

	assert.Greater(t, a.Polarity("This is awesome, I love it!"), 0.5)
	assert.Zero(t, a.Polarity("the sky has clouds"))
	assert.Zero(t, a.Polarity("   "))
}

func TestPolarityNegationAndIntensifier(t *testing.T) {
	a := newTestAnalyzer(t)

	assert.InDelta(t, 0.35, a.Polarity("not bad"), 1e-9)
	assert.InDelta(t, -0.35, a.Polarity("not good"), 1e-9)
	assert.InDelta(t, 1.0, a.Polarity("really great"), 1e-9, "scaled scores are clamped")
	assert.InDelta(t, -0.42, a.Polarity("slightly bad"), 1e-9)
}

func TestModifierResetsAfterPlainWord(t *testing.T) {
	a := newTestAnalyzer(t)

	assert.InDelta(t, -0.7, a.Polarity("not today, bad"), 1e-9)
}

func TestAnalyzeMeanOverMatches(t *testing.T) {
	a := newTestAnalyzer(t)

	res := a.Analyze("happy but sad")
	assert.Equal(t, 2, res.Matched)
	assert.InDelta(t, 0.15, res.Polarity, 1e-9)

	assert.Equal(t, Result{}, a.Analyze("nothing here"))
}

func TestPolarityStaysInRange(t *testing.T) {
	a := newTestAnalyzer(t)

	for _, text := range []string{
		"extremely extremely extremely awful horrible terrible",
		"very very very awesome excellent best",
		"not not not not hate",
	} {
		p := a.Polarity(text)
		assert.GreaterOrEqual(t, p, -1.0, text)
		assert.LessOrEqual(t, p, 1.0, text)
	}
}
