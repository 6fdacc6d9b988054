package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/config"
	"github.com/zhouzirui/papi/backend/internal/service/speech"
)

func newSpeakCmd(opts *rootOptions) *cobra.Command {
	var (
		text    string
		out     string
		voice   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "speak",
		Short: "Synthesize text with the configured TTS service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if !cfg.Speech.Enabled {
				return errors.New("speech is not configured: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
			}

			synth := cfg.Synthesis()
			if voice != "" {
				synth.Voice = voice
			}
			renderer := speech.NewRenderer(speech.NewVolcengineClient(synth, opts.logger), speech.RendererConfig{
				Language: cfg.Audio.Language,
				Timeout:  cfg.Audio.Timeout,
				Retries:  cfg.Audio.Retries,
			}, opts.logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			sessionID := fmt.Sprintf("manual-%d", time.Now().UnixNano())
			audio, err := renderer.Render(ctx, sessionID, text)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("tts_%d.%s", time.Now().Unix(), audio.Format)
			}
			if err := os.WriteFile(out, audio.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			opts.logger.Debug("tts written", zap.String("file", out), zap.Int("bytes", len(audio.Data)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes of %s audio (%s) to %s\n",
				len(audio.Data), audio.Format, renderer.Language(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default tts_<unix>.<format>)")
	cmd.Flags().StringVar(&voice, "voice", "", "Override SPEECH_TTS_VOICE")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "Overall deadline")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
