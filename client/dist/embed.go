package clientdist

import _ "embed"

// PagenavJS is the thin client JavaScript bundle.
//
// It is served by the server at "/_pagenav/client.js".
//
//go:embed pagenav.js
var PagenavJS []byte
