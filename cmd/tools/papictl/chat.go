package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/papi/backend/internal/model/chat"
	"github.com/zhouzirui/papi/backend/internal/service/brain"
	chatservice "github.com/zhouzirui/papi/backend/internal/service/chat"
	"github.com/zhouzirui/papi/backend/internal/service/guardian"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var tierName, text string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run one text-only chat turn and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(text) == "" {
				return chatservice.ErrEmptyMessage
			}
			t, err := parseTier(tierName)
			if err != nil {
				return err
			}

			g, err := guardian.FromLexicon(opts.lexicon, opts.logger)
			if err != nil {
				return err
			}
			policy, err := brain.NewPolicy(cmd.Context(), opts.logger)
			if err != nil {
				return err
			}
			pipeline := chatservice.NewPipeline(g, policy, nil, chatservice.AudioPolicy{}, opts.logger)

			session := chat.NewSession("papictl")
			if err := session.Resolve(t); err != nil {
				return err
			}
			result, err := pipeline.Run(cmd.Context(), session, text)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&tierName, "tier", "silver", "Tier of the simulated session")
	cmd.Flags().StringVar(&text, "text", "", "Message text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
