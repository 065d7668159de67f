package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/jobfit-analyzer/internal/dom"
	"github.com/jonathan/jobfit-analyzer/internal/fetch"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type extractOptions struct {
	htmlFile string
	url      string
	browser  bool
}

func newExtractCmd(a *app) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a profile from saved HTML or a URL and store it",
		Long: "Extract the structured profile from a saved HTML file or a fetched page and store it " +
			"as the current profile record. --browser renders the page in headless Chrome first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExtract(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.htmlFile, "html-file", "", "Path to a saved profile page")
	cmd.Flags().StringVar(&opts.url, "url", "", "Profile page URL (location of --html-file, or page to fetch)")
	cmd.Flags().BoolVar(&opts.browser, "browser", false, "Render --url in headless Chrome instead of a plain GET")
	return cmd
}

func (a *app) runExtract(ctx context.Context, opts extractOptions) error {
	if opts.htmlFile == "" && opts.url == "" {
		return fmt.Errorf("must provide --html-file or --url")
	}
	if opts.htmlFile != "" && opts.browser {
		return fmt.Errorf("cannot use --browser with --html-file")
	}

	snapshot, err := a.loadSnapshot(ctx, opts)
	if err != nil {
		return err
	}
	return a.captureAndPrint(ctx, snapshot)
}

func (a *app) loadSnapshot(ctx context.Context, opts extractOptions) (dom.Snapshot, error) {
	switch {
	case opts.htmlFile != "":
		f, err := os.Open(opts.htmlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open HTML file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return dom.FromReader(f, opts.url)
	case opts.browser:
		return fetch.RenderHTML(ctx, opts.url, a.cfg.WatchTimeout, fetch.BrowserOptions{
			ExecPath: a.cfg.ChromePath,
			Logger:   a.logger,
		})
	default:
		if !fetch.IsProfileURL(opts.url) {
			a.logger.Warn("URL does not look like a profile page", zap.String("url", opts.url))
		}
		return fetch.Snapshot(ctx, opts.url, nil)
	}
}

// captureAndPrint stores the profile read from snapshot and prints it.
func (a *app) captureAndPrint(ctx context.Context, snapshot dom.Snapshot) error {
	s, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	profile, err := a.newAnalyzer(s).Capture(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to capture profile: %w", err)
	}
	return a.printProfile(profile)
}

func (a *app) printProfile(profile *types.ExtractedProfile) error {
	if a.jsonOutput {
		return a.writeJSON(profile)
	}
	a.printer().PrintProfile(profile)
	return nil
}
