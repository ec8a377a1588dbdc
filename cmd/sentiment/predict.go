package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
)

func newPredictCmd(getConfig func() *config.Config) *cobra.Command {
	var (
		model            string
		systemPrompt     string
		systemPromptFile string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one 24h sentiment forecast over the stored articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if systemPromptFile != "" {
				b, err := os.ReadFile(systemPromptFile)
				if err != nil {
					return fmt.Errorf("failed to read system prompt: %w", err)
				}
				systemPrompt = string(b)
			}

			a, err := newApp(getConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.predictor.Run(cmd.Context(), model, systemPrompt)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model: %s\noutcome: %s\nsaved items: %d\n", res.Model, res.Outcome, res.ItemsSaved)
			if res.Err != nil {
				fmt.Fprintf(out, "error: %v\n", res.Err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model id (OPENROUTER_MODEL overrides it)")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "system prompt text (default: built-in rules)")
	cmd.Flags().StringVar(&systemPromptFile, "system-prompt-file", "", "read the system prompt from a file")

	return cmd
}
