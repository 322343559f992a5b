package server

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/vango-dev/pagenav/pkg/gesture"
	"github.com/vango-dev/pagenav/pkg/keynav"
	"github.com/vango-dev/pagenav/pkg/nav"
)

// Page is one navigable page of a deck.
type Page struct {
	Path  string
	Title string

	// Body is trusted HTML rendered inside the swipe surface.
	Body template.HTML

	// Targets are the page's neighbours. They are fixed for the lifetime of
	// every session opened on the page.
	Targets nav.Targets

	// SwipeThreshold and SwipeTimeout (ms) are rendered as data-swipe-*
	// attributes on the swipe surface when non-zero.
	SwipeThreshold int
	SwipeTimeout   int
}

// HandledKeyCodes returns the arrow key codes that navigate from this page.
func (p *Page) HandledKeyCodes() []int {
	return keynav.New(p.Targets, nil).HandledKeyCodes()
}

// SurfaceAttrs returns the data-swipe-* attributes of the page's swipe
// surface.
func (p *Page) SurfaceAttrs() gesture.AttrMap {
	attrs := gesture.AttrMap{}
	if p.SwipeThreshold > 0 {
		attrs[gesture.AttrThreshold] = strconv.Itoa(p.SwipeThreshold)
	}
	if p.SwipeTimeout > 0 {
		attrs[gesture.AttrTimeout] = strconv.Itoa(p.SwipeTimeout)
	}
	return attrs
}

// Deck is an immutable, ordered set of pages.
type Deck struct {
	Title string

	pages  []*Page
	byPath map[string]*Page
}

// NewDeck creates a deck. Paths must be absolute, unique and outside
// ReservedPrefix.
func NewDeck(title string, pages []Page) (*Deck, error) {
	if len(pages) == 0 {
		return nil, ErrNoDeck
	}
	d := &Deck{
		Title:  title,
		pages:  make([]*Page, 0, len(pages)),
		byPath: make(map[string]*Page, len(pages)),
	}
	for i := range pages {
		p := pages[i]
		if !strings.HasPrefix(p.Path, "/") {
			return nil, fmt.Errorf("server: page %d: path %q is not absolute", i+1, p.Path)
		}
		if strings.HasPrefix(p.Path, ReservedPrefix) {
			return nil, fmt.Errorf("server: page %d: path %q is reserved", i+1, p.Path)
		}
		if _, dup := d.byPath[p.Path]; dup {
			return nil, fmt.Errorf("server: duplicate page path %q", p.Path)
		}
		d.pages = append(d.pages, &p)
		d.byPath[p.Path] = &p
	}
	return d, nil
}

// Lookup returns the page served at path. An empty path means "/".
func (d *Deck) Lookup(path string) (*Page, bool) {
	if d == nil {
		return nil, false
	}
	if path == "" {
		path = "/"
	}
	p, ok := d.byPath[path]
	return p, ok
}

// Page is like Lookup but returns an error wrapping ErrUnknownPage.
func (d *Deck) Page(path string) (*Page, error) {
	p, ok := d.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, path)
	}
	return p, nil
}

// Pages returns the pages in deck order.
func (d *Deck) Pages() []*Page {
	if d == nil {
		return nil
	}
	return append([]*Page(nil), d.pages...)
}

// Len returns the number of pages.
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.pages)
}

// Index returns the position of path in the deck, or -1.
func (d *Deck) Index(path string) int {
	for i, p := range d.pages {
		if p.Path == path {
			return i
		}
	}
	return -1
}
