package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/papi/backend/internal/analysis/lexicon"
	"github.com/zhouzirui/papi/backend/internal/analysis/profanity"
	"github.com/zhouzirui/papi/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/papi/backend/internal/model/tier"
	"github.com/zhouzirui/papi/backend/internal/service/guardian"
)

type moderateReport struct {
	Tier     tier.Tier        `json:"tier"`
	Verdict  guardian.Verdict `json:"verdict"`
	Polarity float64          `json:"polarity"`
	Matched  int              `json:"sentimentWords"`
	Match    string           `json:"profanity,omitempty"`
}

func newModerateCmd(opts *rootOptions) *cobra.Command {
	var tierName, text string

	cmd := &cobra.Command{
		Use:   "moderate",
		Short: "Classify a message the way the guardian would",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTier(tierName)
			if err != nil {
				return err
			}

			lex, err := lexicon.Load(opts.lexicon)
			if err != nil {
				return err
			}
			detector := profanity.NewDetector(lex)
			analyzer := sentiment.NewAnalyzer(lex)
			g := guardian.New(detector, analyzer, opts.logger)

			analysis := analyzer.Analyze(text)
			report := moderateReport{
				Tier:     t,
				Verdict:  g.Scan(text, t),
				Polarity: analysis.Polarity,
				Matched:  analysis.Matched,
			}
			report.Match, _ = detector.FirstMatch(text)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&tierName, "tier", "child", "Tier to moderate for (child, silver, gold, platinum)")
	cmd.Flags().StringVar(&text, "text", "", "Message text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func parseTier(name string) (tier.Tier, error) {
	t, ok := tier.Parse(name)
	if !ok {
		return tier.Unresolved, fmt.Errorf("unknown tier %q", name)
	}
	return t, nil
}
