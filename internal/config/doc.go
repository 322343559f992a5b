// Package config provides configuration parsing for pagenav.
//
// The configuration is stored in pagenav.json, pagenav.yaml or pagenav.toml
// at the project root. This package handles loading, validating and
// watching it, and resolves the deck of pages it describes.
//
// # Configuration File Structure
//
//	name: talk
//	server:
//	  addr: ":8080"
//	  maxSessions: 1000
//	  heartbeatInterval: 30s
//	swipe:
//	  threshold: 200
//	  timeout: 500
//	nav:
//	  reloadHint: fresh
//	deck:
//	  autoLink: true
//	  pages:
//	    - path: /
//	      title: Intro
//	      body: <h1>Hello</h1>
//	    - path: /2
//	      swipeThreshold: 120
//	      targets:
//	        down: /3
//	    - path: /3
//
// deck.source may instead name a deck document, either a path relative to
// the config file or s3://bucket/key.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	deck, err := config.LoadDeck(ctx, cfg, nil)
package config
