package nav

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Navigator performs a full page navigation to a URL.
// It is the side-effect boundary of the router; sessions implement it by
// sending a navigate patch to the client.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, url string) error

// Navigate calls f(ctx, url).
func (f NavigatorFunc) Navigate(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Decision is the outcome of routing one direction signal.
type Decision struct {
	// Requested is the direction as reported by the input source.
	Requested Direction

	// Resolved is the direction used for the target lookup after remapping.
	Resolved Direction

	// Source is the input source of the signal.
	Source Source

	// URL is the destination, empty when no target is configured.
	URL string

	// Navigated is true when the Navigator was invoked successfully.
	Navigated bool
}

// Found reports whether a target was configured for the resolved direction.
func (d Decision) Found() bool {
	return d.URL != ""
}

// Resolve applies the swipe remap policy and reports whether the signal
// routes to a target at all.
//
// Vertical swipes fight with native scrolling on touch devices, so
// horizontal swipes stand in for them: a left swipe means down and a right
// swipe means up. Vertical swipes themselves never route. Key-originated
// directions are never remapped.
func Resolve(d Direction, src Source) (Direction, bool) {
	if src != SourceSwipe {
		return d, true
	}
	switch d {
	case Left:
		return Down, true
	case Right:
		return Up, true
	default:
		return d, false
	}
}

// Router turns direction signals into page navigations.
type Router struct {
	targets    Targets
	navigator  Navigator
	reloadHint string
	logger     *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithReloadHint appends the query parameter param=1 to every destination.
func WithReloadHint(param string) RouterOption {
	return func(r *Router) {
		r.reloadHint = param
	}
}

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRouter creates a Router for the given targets.
func NewRouter(targets Targets, navigator Navigator, opts ...RouterOption) *Router {
	r := &Router{
		targets:   targets,
		navigator: navigator,
		logger:    slog.Default().With("component", "nav"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Targets returns the router's navigation targets.
func (r *Router) Targets() Targets {
	return r.targets
}

// Decide resolves a direction signal to a destination without navigating.
func (r *Router) Decide(d Direction, src Source) Decision {
	resolved, routable := Resolve(d, src)
	dec := Decision{
		Requested: d,
		Resolved:  resolved,
		Source:    src,
	}
	if !routable {
		return dec
	}
	if u, ok := r.targets.Lookup(resolved); ok {
		dec.URL = r.withHint(u)
	}
	return dec
}

// Navigate resolves the signal and, when a target exists, navigates to it.
// A missing target is not an error; the returned Decision has an empty URL.
func (r *Router) Navigate(ctx context.Context, d Direction, src Source) (Decision, error) {
	dec := r.Decide(d, src)
	if !dec.Found() {
		r.logger.Debug("no navigation target",
			"direction", d,
			"resolved", dec.Resolved,
			"source", src)
		return dec, nil
	}
	if r.navigator == nil {
		return dec, fmt.Errorf("nav: no navigator for %s", dec.Resolved)
	}
	if err := r.navigator.Navigate(ctx, dec.URL); err != nil {
		return dec, fmt.Errorf("nav: navigate %s: %w", dec.Resolved, err)
	}
	dec.Navigated = true
	r.logger.Debug("navigated",
		"direction", d,
		"resolved", dec.Resolved,
		"source", src,
		"url", dec.URL)
	return dec, nil
}

func (r *Router) withHint(raw string) string {
	if r.reloadHint == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(r.reloadHint, "1")
	u.RawQuery = q.Encode()
	return u.String()
}
