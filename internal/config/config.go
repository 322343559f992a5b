package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/pagenav/internal/errors"
)

// FileNames lists the configuration file names Load looks for, in order.
var FileNames = []string{"pagenav.json", "pagenav.yaml", "pagenav.yml", "pagenav.toml"}

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultMaxSessions is the default limit on concurrent sessions.
	DefaultMaxSessions = 10000

	// DefaultEventQueueSize is the default per-session event buffer.
	DefaultEventQueueSize = 64

	// DefaultSwipeThreshold is the built-in minimum swipe distance in pixels.
	DefaultSwipeThreshold = 200

	// DefaultSwipeTimeout is the built-in maximum swipe duration in ms.
	DefaultSwipeTimeout = 500

	// DefaultMetricsPath is where Prometheus metrics are exposed.
	DefaultMetricsPath = "/metrics"
)

// ReservedPrefix is the URL prefix used by pagenav's own endpoints.
const ReservedPrefix = "/_pagenav/"

// Config is the complete pagenav configuration file.
type Config struct {
	// Name is shown in log output and the default page title.
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`

	Server  ServerConfig  `json:"server,omitempty" yaml:"server,omitempty" toml:"server,omitempty"`
	Swipe   SwipeConfig   `json:"swipe,omitempty" yaml:"swipe,omitempty" toml:"swipe,omitempty"`
	Nav     NavConfig     `json:"nav,omitempty" yaml:"nav,omitempty" toml:"nav,omitempty"`
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty" toml:"metrics,omitempty"`
	Deck    DeckConfig    `json:"deck,omitempty" yaml:"deck,omitempty" toml:"deck,omitempty"`

	configPath string
}

// ServerConfig contains HTTP and session settings. Durations are Go duration
// strings such as "30s".
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" toml:"addr,omitempty"`

	// MaxSessions limits concurrent WebSocket sessions.
	MaxSessions int `json:"maxSessions,omitempty" yaml:"maxSessions,omitempty" toml:"maxSessions,omitempty"`

	// EventQueueSize is the per-session event buffer. Events arriving while
	// it is full are dropped.
	EventQueueSize int `json:"eventQueueSize,omitempty" yaml:"eventQueueSize,omitempty" toml:"eventQueueSize,omitempty"`

	HeartbeatInterval string `json:"heartbeatInterval,omitempty" yaml:"heartbeatInterval,omitempty" toml:"heartbeatInterval,omitempty"`
	ReadTimeout       string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty" toml:"readTimeout,omitempty"`
	HandshakeTimeout  string `json:"handshakeTimeout,omitempty" yaml:"handshakeTimeout,omitempty" toml:"handshakeTimeout,omitempty"`
	ShutdownTimeout   string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty" toml:"shutdownTimeout,omitempty"`

	// AllowedOrigins lists extra origins allowed to open a WebSocket. The
	// page's own origin is always allowed.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty" toml:"allowedOrigins,omitempty"`
}

// SwipeConfig holds the server-wide swipe defaults. Elements override them
// with data-swipe-threshold and data-swipe-timeout.
type SwipeConfig struct {
	// Threshold is the minimum dominant-axis distance in pixels.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty" toml:"threshold,omitempty"`

	// Timeout is the maximum gesture duration in milliseconds.
	Timeout int `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// NavConfig controls navigation behavior.
type NavConfig struct {
	// ReloadHint, when set, is added as a query parameter (value 1) to every
	// navigation URL.
	ReloadHint string `json:"reloadHint,omitempty" yaml:"reloadHint,omitempty" toml:"reloadHint,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Disabled turns off /metrics and the metrics middleware.
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty" toml:"disabled,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
}

// DeckConfig is the sequence of pages to serve.
type DeckConfig struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	// Source, when set, names a separate deck document: a file path relative
	// to the config file, or s3://bucket/key. Its pages replace Pages.
	Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`

	// AutoLink fills missing targets from the page order: left and up go to
	// the previous page, right and down to the next.
	AutoLink bool `json:"autoLink,omitempty" yaml:"autoLink,omitempty" toml:"autoLink,omitempty"`

	Pages []PageConfig `json:"pages,omitempty" yaml:"pages,omitempty" toml:"pages,omitempty"`
}

// PageConfig describes one page.
type PageConfig struct {
	Path  string `json:"path" yaml:"path" toml:"path"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`

	// Body is trusted HTML placed inside the swipe surface.
	Body string `json:"body,omitempty" yaml:"body,omitempty" toml:"body,omitempty"`

	// Targets maps up, down, left and right to destination URLs.
	Targets map[string]string `json:"targets,omitempty" yaml:"targets,omitempty" toml:"targets,omitempty"`

	// SwipeThreshold and SwipeTimeout render as data-swipe-* attributes on
	// the page's swipe surface. Zero leaves the attribute off.
	SwipeThreshold int `json:"swipeThreshold,omitempty" yaml:"swipeThreshold,omitempty" toml:"swipeThreshold,omitempty"`
	SwipeTimeout   int `json:"swipeTimeout,omitempty" yaml:"swipeTimeout,omitempty" toml:"swipeTimeout,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the first configuration file found in dir.
func Load(dir string) (*Config, error) {
	path, ok := findFile(dir)
	if !ok {
		return nil, errors.New("E101").
			WithDetail("No pagenav configuration file found in " + dir).
			WithSuggestion("Create pagenav.yaml with a deck of pages")
	}
	return LoadFile(path)
}

// LoadFile reads configuration from path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail(path + " does not exist").
				WithFile(path)
		}
		return nil, errors.New("E102").WithFile(path).Wrap(err)
	}

	cfg := &Config{}
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxSessions == 0 {
		c.Server.MaxSessions = DefaultMaxSessions
	}
	if c.Server.EventQueueSize == 0 {
		c.Server.EventQueueSize = DefaultEventQueueSize
	}
	if c.Server.HeartbeatInterval == "" {
		c.Server.HeartbeatInterval = "30s"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "60s"
	}
	if c.Server.HandshakeTimeout == "" {
		c.Server.HandshakeTimeout = "5s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Swipe.Threshold == 0 {
		c.Swipe.Threshold = DefaultSwipeThreshold
	}
	if c.Swipe.Timeout == 0 {
		c.Swipe.Timeout = DefaultSwipeTimeout
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Deck.Title == "" {
		c.Deck.Title = c.Name
	}
}

// Validate checks server settings and any inline pages.
func (c *Config) Validate() error {
	if c.Server.MaxSessions < 0 {
		return invalid("server.maxSessions", "must not be negative")
	}
	if c.Server.EventQueueSize < 1 {
		return invalid("server.eventQueueSize", "must be at least 1")
	}
	durations := []struct {
		key, value string
	}{
		{"server.heartbeatInterval", c.Server.HeartbeatInterval},
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.handshakeTimeout", c.Server.HandshakeTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil || v <= 0 {
			return invalid(d.key, "must be a positive duration such as \"30s\", got "+strconv.Quote(d.value))
		}
	}
	if c.Swipe.Threshold < 0 {
		return invalid("swipe.threshold", "must not be negative")
	}
	if c.Swipe.Timeout < 0 {
		return invalid("swipe.timeout", "must not be negative")
	}
	if c.Nav.ReloadHint != "" && strings.ContainsAny(c.Nav.ReloadHint, "&=?# ") {
		return invalid("nav.reloadHint", "must be a plain query parameter name")
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path", "must start with '/'")
	}
	if c.Deck.Source == "" {
		return ValidatePages(c.Deck.Pages)
	}
	// Pages from a source are checked once they are fetched.
	return nil
}

func invalid(key, detail string) error {
	return errors.New("E103").
		WithDetail(key + " " + detail)
}

// HeartbeatInterval returns server.heartbeatInterval as a duration.
func (c *Config) HeartbeatInterval() time.Duration {
	return parseDuration(c.Server.HeartbeatInterval, 30*time.Second)
}

// ReadTimeout returns server.readTimeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 60*time.Second)
}

// HandshakeTimeout returns server.handshakeTimeout as a duration.
func (c *Config) HandshakeTimeout() time.Duration {
	return parseDuration(c.Server.HandshakeTimeout, 5*time.Second)
}

// ShutdownTimeout returns server.shutdownTimeout as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// SwipeTimeout returns swipe.timeout as a duration.
func (c *Config) SwipeTimeout() time.Duration {
	return time.Duration(c.Swipe.Timeout) * time.Millisecond
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func findFile(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	_, ok := findFile(dir)
	return ok
}

// FindProjectRoot walks up from startDir to the first directory holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No pagenav configuration file found in " + startDir + " or any parent directory").
				WithSuggestion("Pass --config or create pagenav.yaml")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the project containing the
// working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}
