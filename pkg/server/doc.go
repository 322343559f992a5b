// Package server serves a deck of pages and turns the arrow keys and swipes
// of each open page into navigations.
//
// Every rendered page loads the thin client, which opens a WebSocket to
// WebSocketPath and names the page it shows in the handshake. From then on
// the client forwards key-down and touch events, and the server answers
// with patches: a Dispatch patch announces a recognized swipe as a
// "swiped-<direction>" CustomEvent on the touched element, and a Navigate
// patch sends the browser to the target page.
//
// # Basic Usage
//
//	deck, err := server.NewDeck("Talk", []server.Page{
//	    {Path: "/", Targets: nav.NewTargets(map[nav.Direction]string{nav.Right: "/intro"})},
//	    {Path: "/intro", Targets: nav.NewTargets(map[nav.Direction]string{nav.Left: "/"})},
//	})
//	if err != nil {
//	    return err
//	}
//	srv := server.New(server.DefaultServerConfig(), deck)
//	return srv.Run(ctx)
//
// # Sessions
//
// Each WebSocket is a Session bound to one page for its whole life. Events
// are decoded on the read loop and handled one at a time on the event loop,
// which owns the session's gesture recognizer. Replacing the deck with
// SetDeck affects new page loads only.
//
// # Middleware
//
// EventMiddleware wraps the handling of every event. The session sets
// Outcome, Swipe and Decision on the EventContext before next returns, so
// middleware can record what each event did.
package server
