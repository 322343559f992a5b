package gesture

import (
	"strconv"
	"strings"
	"time"
)

// Element attributes that override the thresholds for a single element.
const (
	AttrThreshold = "data-swipe-threshold" // minimum distance in pixels
	AttrTimeout   = "data-swipe-timeout"   // maximum duration in milliseconds
)

// Built-in defaults used when an element carries no override.
const (
	DefaultDistance = 200
	DefaultTimeout  = 500 * time.Millisecond
)

// Thresholds bound what counts as a swipe.
type Thresholds struct {
	// Distance is the displacement in pixels the dominant axis must exceed.
	Distance int

	// Timeout is the duration the gesture must finish under.
	Timeout time.Duration
}

// DefaultThresholds returns the built-in 200px / 500ms thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Distance: DefaultDistance,
		Timeout:  DefaultTimeout,
	}
}

// orDefault fills zero fields from DefaultThresholds.
func (t Thresholds) orDefault() Thresholds {
	d := DefaultThresholds()
	if t.Distance <= 0 {
		t.Distance = d.Distance
	}
	if t.Timeout <= 0 {
		t.Timeout = d.Timeout
	}
	return t
}

// Attributes gives read access to an element's attributes.
type Attributes interface {
	Attr(name string) (string, bool)
}

// AttrMap is an Attributes backed by a map.
type AttrMap map[string]string

// Attr returns the attribute value and whether it is present.
func (m AttrMap) Attr(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// ThresholdsFor reads the per-element overrides from attrs, falling back to
// base for attributes that are missing or not a non-negative integer.
func ThresholdsFor(attrs Attributes, base Thresholds) Thresholds {
	t := base
	if attrs == nil {
		return t
	}
	if n, ok := intAttr(attrs, AttrThreshold); ok {
		t.Distance = n
	}
	if n, ok := intAttr(attrs, AttrTimeout); ok {
		t.Timeout = time.Duration(n) * time.Millisecond
	}
	return t
}

func intAttr(attrs Attributes, name string) (int, bool) {
	v, ok := attrs.Attr(name)
	if !ok {
		return 0, false
	}
	return leadingInt(v)
}

// leadingInt parses the integer prefix of v after optional whitespace, so
// "250px" reads as 250. Values without leading digits, negative values and
// overflows are rejected.
func leadingInt(v string) (int, bool) {
	v = strings.TrimLeft(v, " \t\n\r\f\v")
	v = strings.TrimPrefix(v, "+")
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
