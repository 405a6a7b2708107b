package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hktran/coursegrab/internal/app"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the configured video ID range",
	Long: `Scrape fetches every video page in the configured identifier range,
extracts the direct media URL and title, assigns season/episode numbers from
the configured episode table, and writes the link-list artifact plus a YAML
run report.

The run is sequential and paced with a random delay between requests. An
identifier whose page cannot be extracted after all retry attempts is
skipped; the season/episode cursor still advances past its slot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			application.Log.Warn().Msg("interrupt received, cancelling run")
			cancel()
		}()

		if err := application.RunScrape(ctx); err != nil {
			return fmt.Errorf("scrape failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
