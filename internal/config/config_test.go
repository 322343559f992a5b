package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/pagenav/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Server.MaxSessions != DefaultMaxSessions {
		t.Errorf("Server.MaxSessions = %d, want %d", cfg.Server.MaxSessions, DefaultMaxSessions)
	}
	if cfg.Server.EventQueueSize != DefaultEventQueueSize {
		t.Errorf("Server.EventQueueSize = %d, want %d", cfg.Server.EventQueueSize, DefaultEventQueueSize)
	}
	if cfg.Swipe.Threshold != 200 || cfg.Swipe.Timeout != 500 {
		t.Errorf("Swipe = %+v, want 200/500", cfg.Swipe)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q", cfg.Metrics.Path)
	}
	if cfg.HeartbeatInterval() != 30*time.Second {
		t.Errorf("HeartbeatInterval() = %v", cfg.HeartbeatInterval())
	}
	if cfg.ReadTimeout() != 60*time.Second {
		t.Errorf("ReadTimeout() = %v", cfg.ReadTimeout())
	}
	if cfg.HandshakeTimeout() != 5*time.Second {
		t.Errorf("HandshakeTimeout() = %v", cfg.HandshakeTimeout())
	}
	if cfg.ShutdownTimeout() != 10*time.Second {
		t.Errorf("ShutdownTimeout() = %v", cfg.ShutdownTimeout())
	}
	if cfg.SwipeTimeout() != 500*time.Millisecond {
		t.Errorf("SwipeTimeout() = %v", cfg.SwipeTimeout())
	}
	if cfg.Path() != "" || cfg.Dir() != "" {
		t.Errorf("new config should have no path, got %q", cfg.Path())
	}
}

const (
	jsonConfig = `{
  "name": "talk",
  "server": {"addr": ":9000", "maxSessions": 5},
  "swipe": {"threshold": 150},
  "nav": {"reloadHint": "fresh"},
  "deck": {
    "pages": [
      {"path": "/", "title": "Intro", "targets": {"down": "/2"}},
      {"path": "/2", "swipeTimeout": 300}
    ]
  }
}`

	yamlConfig = `name: talk
server:
  addr: ":9000"
  maxSessions: 5
swipe:
  threshold: 150
nav:
  reloadHint: fresh
deck:
  pages:
    - path: /
      title: Intro
      targets:
        down: /2
    - path: /2
      swipeTimeout: 300
`

	tomlConfig = `name = "talk"

[server]
addr = ":9000"
maxSessions = 5

[swipe]
threshold = 150

[nav]
reloadHint = "fresh"

[[deck.pages]]
path = "/"
title = "Intro"

[deck.pages.targets]
down = "/2"

[[deck.pages]]
path = "/2"
swipeTimeout = 300
`
)

func TestLoad_FormatsAgree(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"pagenav.json", jsonConfig},
		{"pagenav.yaml", yamlConfig},
		{"pagenav.yml", yamlConfig},
		{"pagenav.toml", tomlConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.name, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}
			if cfg.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
			}
			if cfg.Name != "talk" || cfg.Deck.Title != "talk" {
				t.Errorf("Name = %q, Deck.Title = %q", cfg.Name, cfg.Deck.Title)
			}
			if cfg.Server.Addr != ":9000" || cfg.Server.MaxSessions != 5 {
				t.Errorf("Server = %+v", cfg.Server)
			}
			if cfg.Swipe.Threshold != 150 || cfg.Swipe.Timeout != DefaultSwipeTimeout {
				t.Errorf("Swipe = %+v", cfg.Swipe)
			}
			if cfg.Nav.ReloadHint != "fresh" {
				t.Errorf("Nav.ReloadHint = %q", cfg.Nav.ReloadHint)
			}
			if len(cfg.Deck.Pages) != 2 {
				t.Fatalf("len(Deck.Pages) = %d, want 2", len(cfg.Deck.Pages))
			}
			first, second := cfg.Deck.Pages[0], cfg.Deck.Pages[1]
			if first.Path != "/" || first.Title != "Intro" || first.Targets["down"] != "/2" {
				t.Errorf("first page = %+v", first)
			}
			if second.Path != "/2" || second.SwipeTimeout != 300 {
				t.Errorf("second page = %+v", second)
			}
		})
	}
}

func TestLoad_PrefersJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pagenav.yaml", "name: from-yaml\n")
	writeFile(t, dir, "pagenav.json", `{"name": "from-json"}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "from-json" {
		t.Errorf("Name = %q, want from-json", cfg.Name)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.HasCode(err, "E101") {
		t.Fatalf("Load() error = %v, want E101", err)
	}
	_, err = LoadFile(filepath.Join(t.TempDir(), "pagenav.yaml"))
	if !errors.HasCode(err, "E101") {
		t.Fatalf("LoadFile() error = %v, want E101", err)
	}
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pagenav.ini", "name=talk")
	_, err := LoadFile(path)
	if !errors.HasCode(err, "E104") {
		t.Fatalf("LoadFile() error = %v, want E104", err)
	}
}

func TestLoadFile_ParseErrorHasLocation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
	}{
		{"pagenav.json", "{\n  \"name\": \"talk\",\n  \"swipe\": ,\n}", 3},
		{"pagenav.toml", "name = \"talk\"\nswipe = = 3\n", 2},
		{"pagenav.yaml", "name: talk\nswipe: [1, 2\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.name, tt.content)
			_, err := LoadFile(path)
			if !errors.HasCode(err, "E102") {
				t.Fatalf("LoadFile() error = %v, want E102", err)
			}
			pe := errors.FromError(err, "E102")
			if pe.Location == nil || pe.Location.File != path {
				t.Fatalf("Location = %+v, want file %q", pe.Location, path)
			}
			if tt.wantLine > 0 && pe.Location.Line != tt.wantLine {
				t.Errorf("Location.Line = %d, want %d", pe.Location.Line, tt.wantLine)
			}
			if pe.Wrapped == nil {
				t.Error("expected wrapped decoder error")
			}
			if pe.Suggestion == "" {
				t.Error("expected a suggestion")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	page := []PageConfig{{Path: "/"}}
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"valid", func(c *Config) {}, ""},
		{"negative max sessions", func(c *Config) { c.Server.MaxSessions = -1 }, "E103"},
		{"zero queue", func(c *Config) { c.Server.EventQueueSize = 0 }, "E103"},
		{"bad heartbeat", func(c *Config) { c.Server.HeartbeatInterval = "soon" }, "E103"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = "0s" }, "E103"},
		{"negative threshold", func(c *Config) { c.Swipe.Threshold = -5 }, "E103"},
		{"negative timeout", func(c *Config) { c.Swipe.Timeout = -5 }, "E103"},
		{"reload hint with equals", func(c *Config) { c.Nav.ReloadHint = "a=b" }, "E103"},
		{"reload hint with space", func(c *Config) { c.Nav.ReloadHint = "a b" }, "E103"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "E103"},
		{"no pages", func(c *Config) { c.Deck.Pages = nil }, "E201"},
		{"source skips page check", func(c *Config) {
			c.Deck.Pages = nil
			c.Deck.Source = "deck.yaml"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Deck.Pages = page
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pagenav.toml", "name = \"x\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}

	if !Exists(root) {
		t.Error("Exists(root) = false")
	}
	if Exists(nested) {
		t.Error("Exists(nested) = true")
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"a.YAML", FormatYAML, true},
		{"a.yml", FormatYAML, true},
		{"s3://bucket/deck.toml", FormatTOML, true},
		{"a.ini", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatOf(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatOf(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOffsetPosition(t *testing.T) {
	data := []byte("ab\ncd\nef")
	tests := []struct {
		offset    int64
		line, col int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{4, 2, 1},
		{8, 3, 2},
		{0, 0, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		line, col := offsetPosition(data, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("offsetPosition(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}
