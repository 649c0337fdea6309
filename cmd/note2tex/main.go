package main

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/note2tex/internal/app"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose    bool
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "note2tex",
		Short: "Turn course materials into a LaTeX report, one validated section at a time",
		Long: `note2tex drafts each report section with an OpenAI-compatible model,
checks it for structural LaTeX problems, asks the model to repair what fails,
and assembles the result into a finished document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return app.LoadEnvFiles(opts.envFiles...)
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("NOTE2TEX_CONFIG"), "Path to a YAML or JSON config file")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "Dotenv files to load; later files win")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newFinalizeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// exitCode maps run errors to process status: 2 when nothing usable was
// produced, 1 for every other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoSections), errors.Is(err, app.ErrNoMaterials):
		return 2
	default:
		return 1
	}
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			log.Error().Err(err).Msg("run failed")
		}
		os.Exit(exitCode(err))
	}
}
