package server

import (
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/vango-dev/pagenav/pkg/nav"
)

// SurfaceHID is the hydration ID of the element wrapping a page body.
// Touches anywhere inside it that do not hit a nested [data-hid] element
// are reported against it.
const SurfaceHID = "surface"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>html,body{margin:0;height:100%}#pagenav-surface{min-height:100%;touch-action:pan-y}</style>
</head>
<body data-pagenav-path="{{.Path}}" data-pagenav-keys="{{.Keys}}">
<main id="pagenav-surface" data-hid="{{.HID}}"{{with .Threshold}} data-swipe-threshold="{{.}}"{{end}}{{with .Timeout}} data-swipe-timeout="{{.}}"{{end}}>
{{.Body}}
</main>
<noscript><nav class="pagenav-links">{{range .Links}}<a href="{{.Href}}" rel="{{.Rel}}">{{.Label}}</a> {{end}}</nav></noscript>
<script src="{{.ClientJS}}" defer></script>
</body>
</html>
`))

type pageView struct {
	Title     string
	Path      string
	Keys      string
	HID       string
	Threshold int
	Timeout   int
	Body      template.HTML
	Links     []pageLink
	ClientJS  string
}

type pageLink struct {
	Href  string
	Rel   string
	Label string
}

var linkLabels = map[nav.Direction]string{
	nav.Up:    "↑",
	nav.Down:  "↓",
	nav.Left:  "←",
	nav.Right: "→",
}

// RenderPage writes the HTML document for p.
func RenderPage(w io.Writer, p *Page, deckTitle string) error {
	title := p.Title
	switch {
	case title == "":
		title = deckTitle
	case deckTitle != "" && deckTitle != title:
		title = title + " · " + deckTitle
	}

	codes := p.HandledKeyCodes()
	keys := make([]string, len(codes))
	for i, c := range codes {
		keys[i] = strconv.Itoa(c)
	}

	var links []pageLink
	for _, d := range nav.Directions {
		if !p.Targets.Has(d) {
			continue
		}
		links = append(links, pageLink{
			Href:  fallbackURL(p.Path, d),
			Rel:   d.String(),
			Label: linkLabels[d],
		})
	}

	return pageTemplate.Execute(w, pageView{
		Title:     title,
		Path:      p.Path,
		Keys:      strings.Join(keys, " "),
		HID:       SurfaceHID,
		Threshold: p.SwipeThreshold,
		Timeout:   p.SwipeTimeout,
		Body:      p.Body,
		Links:     links,
		ClientJS:  ClientJSPath,
	})
}

// fallbackURL returns the no-JS navigation link for direction d from path.
func fallbackURL(path string, d nav.Direction) string {
	q := url.Values{}
	q.Set("from", path)
	q.Set("dir", d.String())
	return GoPath + "?" + q.Encode()
}
