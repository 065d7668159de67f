package main

import (
	"context"
	"fmt"

	"github.com/jonathan/jobfit-analyzer/internal/fetch"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		url         string
		userDataDir string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open a profile in headless Chrome and capture it once it has rendered",
		Long: "Open the profile page in headless Chrome, wait until the profile header has been " +
			"present for the settle delay (or the fallback timeout elapses) and store the extracted profile.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context(), url, userDataDir)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Profile page URL (required)")
	cmd.Flags().StringVar(&userDataDir, "user-data-dir", "", "Chrome profile directory, e.g. one that is already signed in")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (a *app) runWatch(ctx context.Context, url, userDataDir string) error {
	if !fetch.IsProfileURL(url) {
		return fmt.Errorf("not a profile page: %s", url)
	}

	snapshot, err := fetch.Watch(ctx, url, fetch.WatchOptions{
		Detector: a.cfg.DetectorConfig(),
		Timeout:  a.cfg.WatchTimeout,
		Browser: fetch.BrowserOptions{
			ExecPath:    a.cfg.ChromePath,
			UserDataDir: userDataDir,
			Logger:      a.logger,
		},
	})
	if err != nil {
		return err
	}
	return a.captureAndPrint(ctx, snapshot)
}
