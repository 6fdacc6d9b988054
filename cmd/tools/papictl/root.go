package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/logging"
)

type rootOptions struct {
	verbose bool
	lexicon string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "papictl",
		Short: "Offline tooling for the PAPI backend",
		Long: `papictl runs pieces of the chat pipeline without the HTTP server.

  papictl moderate --tier child --text "I hate this"
  papictl chat --tier silver --text "run Security Console"
  papictl speak --text "Hello there" --out hello.mp3`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if !opts.verbose {
				return nil
			}
			logger, err := logging.New("debug", "console")
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.lexicon, "lexicon", "", "Guardian lexicon YAML (embedded default when empty)")

	cmd.AddCommand(newModerateCmd(opts), newChatCmd(opts), newSpeakCmd(opts))
	return cmd
}
