package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmerge/internal/browse"
	"github.com/amishk599/jobmerge/internal/service"
)

var browseOpts searchFlags

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse merged search results interactively (TUI)",
	Long:  "Shows a spinner while the first page loads, then a navigable list. n/p change page, enter shows details, q quits.",
	RunE:  runBrowse,
}

func init() {
	browseOpts.register(browseCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if _, err := browseOpts.request(browseOpts.page); err != nil {
		return err
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Any log output while the alt-screen is up corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := buildApp(cmd.Context(), cfg, silentLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	search := func(ctx context.Context, page int) (service.Response, error) {
		req, err := browseOpts.request(page)
		if err != nil {
			return service.Response{}, err
		}
		return a.svc.Search(ctx, req)
	}

	first, err := browse.RunLoader("Searching jobs", func(ctx context.Context) (service.Response, error) {
		return search(ctx, browseOpts.page)
	})
	if err != nil {
		return err
	}
	return browse.Run(search, first)
}
