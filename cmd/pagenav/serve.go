package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/pagenav/internal/config"
	pnerrors "github.com/vango-dev/pagenav/internal/errors"
	"github.com/vango-dev/pagenav/pkg/middleware"
	"github.com/vango-dev/pagenav/pkg/server"
)

type serveOptions struct {
	configPath   string
	addr         string
	watch        bool
	otlpEndpoint string
	otlpInsecure bool
}

func serveCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deck",
		Long: `Serve the deck described by the configuration file.

Without --config, pagenav looks for pagenav.json, pagenav.yaml,
pagenav.yml or pagenav.toml in the working directory and its parents.

With --watch, edits to the configuration file or a local deck
document are picked up without a restart. Pages opened after the
change see the new deck; open pages keep the targets they loaded
with.`,
		Example: `  pagenav serve
  pagenav serve --config talk.yaml --addr :3000 --watch
  pagenav serve --otlp-endpoint localhost:4317 --otlp-insecure`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, nil)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file or directory")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload the deck when its files change")
	cmd.Flags().StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "Export traces to this OTLP/gRPC endpoint")
	cmd.Flags().BoolVar(&opts.otlpInsecure, "otlp-insecure", false, "Use a plaintext connection to the OTLP endpoint")

	return cmd
}

// runServe serves until ctx is canceled. A non-nil ln replaces the
// configured listen address.
func runServe(ctx context.Context, opts *serveOptions, ln net.Listener) error {
	logger := slog.Default()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	api, err := s3Client(ctx, cfg)
	if err != nil {
		return err
	}
	deck, err := loadDeck(ctx, cfg, api)
	if err != nil {
		return err
	}

	sc := serverConfig(cfg)
	metricsOn := !cfg.Metrics.Disabled
	if metricsOn {
		sc.OnSessionStart = func(context.Context, *server.Session) { middleware.RecordSessionCreate() }
		sc.OnSessionClose = func(s *server.Session) { middleware.RecordSessionDestroy(s.Stats()) }
	}

	srv := server.New(sc, deck)
	srv.SetLogger(logger)
	if metricsOn {
		srv.Use(middleware.Prometheus())
		srv.Mount(cfg.Metrics.Path, promhttp.Handler())
	}

	if opts.otlpEndpoint != "" {
		shutdown, err := setupTracing(ctx, opts.otlpEndpoint, opts.otlpInsecure)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("trace exporter shutdown failed", "error", err)
			}
		}()
		srv.Use(middleware.OpenTelemetry())
	}

	if opts.watch {
		if config.IsRemoteSource(cfg.Deck.Source) {
			logger.Warn("deck source is remote; only the config file is watched", "source", cfg.Deck.Source)
		}
		go watchDeck(ctx, cfg.Path(), srv, api, logger)
	}

	logger.Info("serving deck",
		"title", deck.Title,
		"pages", deck.Len(),
		"address", cfg.Server.Addr,
		"metrics", metricsOn)

	if ln == nil {
		ln, err = net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return pnerrors.New("E301").
				WithDetail("Could not listen on " + cfg.Server.Addr).
				WithSuggestion("Pick a free address with --addr").
				Wrap(err)
		}
	}
	return srv.Serve(ctx, ln)
}

// watchDeck swaps in a new deck whenever the config or its local deck
// document changes. Invalid edits are logged and the current deck stays.
func watchDeck(ctx context.Context, path string, srv *server.Server, api config.S3GetObjectAPI, logger *slog.Logger) {
	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err == nil {
			var deck *server.Deck
			if deck, err = loadDeck(ctx, cfg, api); err == nil {
				srv.SetDeck(deck)
				return
			}
		}
		var pe *pnerrors.PagenavError
		if errors.As(err, &pe) {
			logger.Error("deck reload failed", "code", pe.Code, "error", pe.FormatCompact())
			return
		}
		logger.Error("deck reload failed", "error", err)
	})
	if err != nil {
		logger.Error("config watch stopped", "error", err)
	}
}
