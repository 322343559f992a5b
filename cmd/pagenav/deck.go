package main

import (
	"context"
	"html/template"
	"io"
	"os"
	"sort"

	"github.com/vango-dev/pagenav/internal/config"
	pnerrors "github.com/vango-dev/pagenav/internal/errors"
	"github.com/vango-dev/pagenav/pkg/gesture"
	"github.com/vango-dev/pagenav/pkg/nav"
	"github.com/vango-dev/pagenav/pkg/server"
)

// loadConfig reads the config at path, which may be a file or a directory.
// An empty path searches upward from the working directory.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path == "":
		cfg, err = config.LoadFromWorkingDir()
	case isDir(path):
		cfg, err = config.Load(path)
	default:
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// s3Client returns an S3 client when the deck lives on S3, or nil.
func s3Client(ctx context.Context, cfg *config.Config) (config.S3GetObjectAPI, error) {
	if !config.IsRemoteSource(cfg.Deck.Source) {
		return nil, nil
	}
	return config.NewS3Client(ctx)
}

// loadDeck resolves cfg's pages and builds the servable deck.
func loadDeck(ctx context.Context, cfg *config.Config, api config.S3GetObjectAPI) (*server.Deck, error) {
	d, err := config.LoadDeck(ctx, cfg, api)
	if err != nil {
		return nil, err
	}
	return buildDeck(d)
}

// buildDeck converts validated page configuration into server pages.
func buildDeck(d *config.Deck) (*server.Deck, error) {
	pages := make([]server.Page, len(d.Pages))
	for i, p := range d.Pages {
		targets, unknown := nav.ParseTargets(p.Targets)
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, pnerrors.New("E204").
				WithDetail("page " + p.Path + " names " + unknown[0])
		}
		pages[i] = server.Page{
			Path:           p.Path,
			Title:          p.Title,
			Body:           template.HTML(p.Body),
			Targets:        targets,
			SwipeThreshold: p.SwipeThreshold,
			SwipeTimeout:   p.SwipeTimeout,
		}
	}
	deck, err := server.NewDeck(d.Title, pages)
	if err != nil {
		pe := pnerrors.New("E203").WithDetail(err.Error()).Wrap(err)
		if d.Source != "" {
			pe.WithFile(d.Source)
		}
		return nil, pe
	}
	for _, p := range deck.Pages() {
		if err := server.RenderPage(io.Discard, p, deck.Title); err != nil {
			return nil, pnerrors.New("E303").
				WithDetail("page " + p.Path).
				Wrap(err)
		}
	}
	return deck, nil
}

// sessionConfig maps the config file onto session settings.
func sessionConfig(cfg *config.Config) *server.SessionConfig {
	sc := server.DefaultSessionConfig()
	sc.ReadTimeout = cfg.ReadTimeout()
	sc.HandshakeTimeout = cfg.HandshakeTimeout()
	sc.HeartbeatInterval = cfg.HeartbeatInterval()
	sc.MaxEventQueue = cfg.Server.EventQueueSize
	sc.Swipe = gesture.Thresholds{
		Distance: cfg.Swipe.Threshold,
		Timeout:  cfg.SwipeTimeout(),
	}
	sc.ReloadHint = cfg.Nav.ReloadHint
	return sc
}

// serverConfig maps the config file onto server settings.
func serverConfig(cfg *config.Config) *server.ServerConfig {
	sc := server.DefaultServerConfig().
		WithAddress(cfg.Server.Addr).
		WithSessionConfig(sessionConfig(cfg)).
		WithMaxSessions(cfg.Server.MaxSessions)
	sc.AllowedOrigins = cfg.Server.AllowedOrigins
	sc.ShutdownTimeout = cfg.ShutdownTimeout()
	return sc
}
