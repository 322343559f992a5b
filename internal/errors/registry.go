package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]Template{
	// Configuration (E100-E199)

	"E101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No pagenav.json, pagenav.yaml, pagenav.yml or pagenav.toml was found in the project directory or any parent.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Config file could not be parsed",
		Detail:   "The configuration file is not valid for its format.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is outside its allowed range.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Configuration files must end in .json, .yaml, .yml or .toml.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Config watch failed",
		Detail:   "The configuration file could not be watched for changes.",
	},

	// Deck (E200-E299)

	"E201": {
		Category: CategoryDeck,
		Message:  "Deck has no pages",
		Detail:   "At least one page is required to serve a deck.",
	},
	"E202": {
		Category: CategoryDeck,
		Message:  "Duplicate page path",
		Detail:   "Every page in a deck must have a unique path.",
	},
	"E203": {
		Category: CategoryDeck,
		Message:  "Invalid page path",
		Detail:   "Page paths must start with '/' and must not use the reserved /_pagenav/ prefix.",
	},
	"E204": {
		Category: CategoryDeck,
		Message:  "Unknown navigation direction",
		Detail:   "Navigation targets accept only up, down, left and right.",
	},
	"E205": {
		Category: CategoryDeck,
		Message:  "Deck source could not be fetched",
		Detail:   "The deck document referenced by deck.source could not be read.",
	},
	"E206": {
		Category: CategoryDeck,
		Message:  "Unsupported deck source",
		Detail:   "deck.source must be a file path or an s3://bucket/key URL.",
	},

	// Server (E300-E399)

	"E301": {
		Category: CategoryServer,
		Message:  "Server failed to listen",
		Detail:   "The HTTP listener could not be started on the configured address.",
	},
	"E302": {
		Category: CategoryServer,
		Message:  "Telemetry exporter failed",
		Detail:   "The OTLP trace exporter could not be created.",
	},
	"E303": {
		Category: CategoryServer,
		Message:  "Page template failed",
		Detail:   "A page could not be rendered.",
	},
}

// Codes returns all registered error codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
