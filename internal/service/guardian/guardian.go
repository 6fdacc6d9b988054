// Package guardian is the content-safety gate every chat turn passes through.
package guardian

import (
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/analysis/lexicon"
	"github.com/zhouzirui/papi/backend/internal/analysis/profanity"
	"github.com/zhouzirui/papi/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/papi/backend/internal/model/tier"
)

// InterventionThreshold is the polarity cutoff for child messages. Exactly -0.3 is clean.
const InterventionThreshold = -0.3

// ProfanityDetector flags text containing listed words.
type ProfanityDetector interface {
	ContainsProfanity(text string) bool
}

// SentimentScorer returns a polarity in [-1, 1].
type SentimentScorer interface {
	Polarity(text string) float64
}

// Guardian classifies messages as clean, blocked or needing intervention.
type Guardian struct {
	profanity ProfanityDetector
	sentiment SentimentScorer
	logger    *zap.Logger
}

// New wires a guardian from its collaborators.
func New(profanity ProfanityDetector, sentiment SentimentScorer, logger *zap.Logger) *Guardian {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guardian{profanity: profanity, sentiment: sentiment, logger: logger}
}

// FromLexicon builds a guardian backed by the lexicon at path (embedded default when empty).
// Any error wraps lexicon.ErrUnavailable and must stop startup.
func FromLexicon(path string, logger *zap.Logger) (*Guardian, error) {
	lex, err := lexicon.Load(path)
	if err != nil {
		return nil, err
	}
	return New(profanity.NewDetector(lex), sentiment.NewAnalyzer(lex), logger), nil
}

// Scan moderates text for a resolved tier. Profanity wins for every tier;
// sentiment is only consulted for Child.
func (g *Guardian) Scan(text string, t tier.Tier) Verdict {
	if strings.TrimSpace(text) == "" {
		return CleanVerdict()
	}

	if g.profanity.ContainsProfanity(text) {
		g.logger.Info("guardian blocked message", zap.Stringer("tier", t), zap.String("reason", ReasonProfanity))
		return BlockedVerdict(ReasonProfanity)
	}

	if t == tier.Child {
		polarity := g.sentiment.Polarity(text)
		if polarity < InterventionThreshold {
			g.logger.Info("guardian intervention", zap.Float64("polarity", polarity))
			return InterventionVerdict()
		}
	}

	return CleanVerdict()
}
