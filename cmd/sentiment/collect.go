package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
)

func newCollectCmd(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch new articles from every configured feed once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(getConfig())
			if err != nil {
				return err
			}
			defer a.Close()

			summary := a.collector.Collect(cmd.Context())

			out := cmd.OutOrStdout()
			for _, src := range summary.Sources {
				switch {
				case src.Error != "":
					fmt.Fprintf(out, "%-60s error: %s\n", src.Source, src.Error)
				default:
					fmt.Fprintf(out, "%-60s fetched=%d new=%d saved=%d\n", src.Source, src.Fetched, src.Eligible, src.Inserted)
				}
			}
			fmt.Fprintf(out, "total inserted: %d\n", summary.Total)

			return nil
		},
	}
}
