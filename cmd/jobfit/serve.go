package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/jobfit-analyzer/internal/config"
	"github.com/jonathan/jobfit-analyzer/internal/db"
	"github.com/jonathan/jobfit-analyzer/internal/metrics"
	"github.com/jonathan/jobfit-analyzer/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port int
		mock bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: "Start an HTTP server exposing profile capture, scoring and, when a database URL is " +
			"configured, user accounts and scan history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == 0 {
				port = a.cfg.Port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx, port, mock)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 8080)")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use fixed offline scores instead of calling the model")
	return cmd
}

// newServer builds the API server. Accounts and scan history are enabled only
// when a database URL is configured; the returned function releases the
// backends.
func (a *app) newServer(ctx context.Context, port int, mock bool) (*server.Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	policy, err := a.cfg.Policy()
	if err != nil {
		return nil, nil, err
	}

	s, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() { _ = closeStore() })

	scorer, closeScorer, err := a.newScorer(ctx, mock, policy)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, func() { _ = closeScorer() })

	analyzer := a.newAnalyzer(s)
	analyzer.Scorer = scorer

	opts := server.Options{
		Port:     port,
		Analyzer: analyzer,
		Metrics:  metrics.New(),
		Logger:   a.logger,
	}

	if a.cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}

		jwtConfig, err := config.NewJWTConfig(a.viper)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to load JWT config: %w", err)
		}
		passwordConfig, err := config.NewPasswordConfig(a.viper)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to load password config: %w", err)
		}
		opts.Users = database
		opts.History = database
		opts.JWT = jwtConfig
		opts.Password = passwordConfig
	} else {
		a.logger.Warn("no database URL configured; accounts and scan history are disabled")
	}

	srv, err := server.New(opts)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, cleanup, nil
}

func (a *app) runServe(ctx context.Context, port int, mock bool) error {
	srv, cleanup, err := a.newServer(ctx, port, mock)
	if err != nil {
		return err
	}
	defer cleanup()

	a.logger.Info("serving", zap.Int("port", port), zap.Bool("mock", mock))
	return srv.Start(ctx)
}
