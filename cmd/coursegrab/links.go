package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hktran/coursegrab/internal/app"
	"github.com/hktran/coursegrab/internal/domain"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Operate on the scraped link list",
	Long: `Links reads the link-list artifact produced by scrape and hands the
(url, filename) pairs to a consumer: the configured external download
manager, the system clipboard, the default browser, or the terminal.`,
}

var linksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the link list to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, entries, err := loadLinks(cmd)
		if err != nil {
			return err
		}
		application.Sender.List(os.Stdout, entries)
		return nil
	},
}

var linksCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy all URLs to the system clipboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, entries, err := loadLinks(cmd)
		if err != nil {
			return err
		}
		if err := application.Sender.CopyToClipboard(entries); err != nil {
			return err
		}
		fmt.Printf("%d links copied to clipboard\n", len(entries))
		return nil
	},
}

var linksOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open each URL in the default browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, entries, err := loadLinks(cmd)
		if err != nil {
			return err
		}
		return application.Sender.OpenInBrowser(cmd.Context(), entries)
	},
}

var linksDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Queue every link with the external download manager",
	Long: `Dispatch hands each (url, filename) pair to the configured download
manager binary and then starts its queue. The manager must be installed and
reachable through PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, entries, err := loadLinks(cmd)
		if err != nil {
			return err
		}
		return application.Sender.Dispatch(cmd.Context(), entries)
	},
}

func loadLinks(cmd *cobra.Command) (*app.App, []domain.DownloadEntry, error) {
	application, err := app.NewApp()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	entries, err := application.Links(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return application, entries, nil
}

func init() {
	linksCmd.AddCommand(linksListCmd)
	linksCmd.AddCommand(linksCopyCmd)
	linksCmd.AddCommand(linksOpenCmd)
	linksCmd.AddCommand(linksDispatchCmd)
	rootCmd.AddCommand(linksCmd)
}
