package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/note2tex/internal/app"
)

func newFinalizeCmd(root *rootOptions) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "finalize <raw.tex>",
		Short: "Repair layout, optionally polish with a model and splice into the preamble",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(root.configPath) != "" {
				fc, err := app.LoadConfigFile(root.configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				app.ApplyFileConfig(&cfg, fc)
			}
			app.ApplyEnvToConfig(&cfg)
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()
			path, err := a.FinalizeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&cfg.PreamblePath, "preamble", "", "LaTeX preamble template with a body placeholder")
	fl.StringVar(&cfg.StylistModel, "stylist.model", "", "Model for the layout polish; empty uses the deterministic layout")
	fl.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL (or LLM_BASE_URL)")
	fl.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the model server (or LLM_API_KEY)")
	fl.StringVar(&cfg.CacheDir, "cache.dir", "", "LLM response cache directory")
	return cmd
}
