package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/pagenav/internal/errors"
	"github.com/vango-dev/pagenav/pkg/nav"
)

// DeckDocument is the shape of a standalone deck referenced by deck.source.
type DeckDocument struct {
	Title    string       `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	AutoLink *bool        `json:"autoLink,omitempty" yaml:"autoLink,omitempty" toml:"autoLink,omitempty"`
	Pages    []PageConfig `json:"pages" yaml:"pages" toml:"pages"`
}

// ValidatePages checks page paths and target directions.
func ValidatePages(pages []PageConfig) error {
	if len(pages) == 0 {
		return errors.New("E201").
			WithSuggestion("Add pages under deck.pages or point deck.source at a deck document").
			WithExample("deck:\n  pages:\n    - path: /\n      targets:\n        down: /2\n    - path: /2")
	}
	seen := make(map[string]int, len(pages))
	for i, p := range pages {
		if !strings.HasPrefix(p.Path, "/") || strings.HasPrefix(p.Path, ReservedPrefix) || strings.ContainsAny(p.Path, "?#") {
			return errors.New("E203").
				WithDetail("page " + strconv.Itoa(i+1) + " has path " + strconv.Quote(p.Path)).
				WithSuggestion("Use an absolute path such as /slides/" + strconv.Itoa(i+1))
		}
		if j, dup := seen[p.Path]; dup {
			return errors.New("E202").
				WithDetail(strconv.Quote(p.Path) + " is used by pages " + strconv.Itoa(j+1) + " and " + strconv.Itoa(i+1))
		}
		seen[p.Path] = i

		if _, unknown := nav.ParseTargets(p.Targets); len(unknown) > 0 {
			sort.Strings(unknown)
			return errors.New("E204").
				WithDetail("page " + strconv.Quote(p.Path) + " has targets " + strings.Join(unknown, ", ")).
				WithSuggestion("Use up, down, left or right")
		}
		for name, url := range p.Targets {
			if strings.TrimSpace(url) == "" {
				return errors.New("E103").
					WithDetail("page " + strconv.Quote(p.Path) + " target " + name + " is empty")
			}
		}
		if p.SwipeThreshold < 0 || p.SwipeTimeout < 0 {
			return errors.New("E103").
				WithDetail("page " + strconv.Quote(p.Path) + " swipe overrides must not be negative")
		}
	}
	return nil
}

// LinkPages returns a copy of pages where every missing target is filled
// from the page order. left and up point at the previous page; right and
// down at the next. Explicit targets are kept.
func LinkPages(pages []PageConfig) []PageConfig {
	out := make([]PageConfig, len(pages))
	for i, p := range pages {
		targets := make(map[string]string, len(p.Targets)+4)
		for k, v := range p.Targets {
			targets[strings.ToLower(strings.TrimSpace(k))] = v
		}
		if i > 0 {
			prev := pages[i-1].Path
			setDefault(targets, nav.Left, prev)
			setDefault(targets, nav.Up, prev)
		}
		if i < len(pages)-1 {
			next := pages[i+1].Path
			setDefault(targets, nav.Right, next)
			setDefault(targets, nav.Down, next)
		}
		p.Targets = targets
		out[i] = p
	}
	return out
}

func setDefault(targets map[string]string, d nav.Direction, url string) {
	if _, ok := targets[d.String()]; !ok {
		targets[d.String()] = url
	}
}
