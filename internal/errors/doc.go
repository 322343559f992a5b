// Package errors provides coded, actionable errors for pagenav's
// configuration loading, deck building and server startup.
//
// Each code maps to a registered template with a category, a short message
// and a longer detail. Call sites add what they know:
//
//	err := errors.New("E102").
//	    WithLocation("pagenav.yaml", 7, 3).
//	    WithSuggestion("Indent page entries under deck.pages").
//	    Wrap(parseErr)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E102: Config file could not be parsed
//	//
//	//   pagenav.yaml:7:3
//	//
//	//       6 │ deck:
//	//   →   7 │   - path: /
//	//         │   ^
//	//   ...
//
// Codes are grouped by range: E1xx configuration, E2xx deck, E3xx server.
package errors
