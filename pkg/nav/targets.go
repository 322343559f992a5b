package nav

// Targets maps each direction to an optional destination URL.
//
// Targets is a value type. Copies never share state, so a Targets handed to
// a KeyNavigator and a Router can not be changed behind their backs.
type Targets struct {
	urls [numDirections]string
}

// NewTargets builds Targets from a map. Entries for invalid directions and
// empty URLs are ignored.
func NewTargets(m map[Direction]string) Targets {
	var t Targets
	for d, u := range m {
		if d.Valid() && u != "" {
			t.urls[d] = u
		}
	}
	return t
}

// ParseTargets builds Targets from direction names, as found in
// configuration files. Unknown names are returned in unknown.
func ParseTargets(m map[string]string) (t Targets, unknown []string) {
	for name, u := range m {
		d, ok := ParseDirection(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if u != "" {
			t.urls[d] = u
		}
	}
	return t, unknown
}

// Lookup returns the destination for d and whether one is configured.
func (t Targets) Lookup(d Direction) (string, bool) {
	if !d.Valid() {
		return "", false
	}
	u := t.urls[d]
	return u, u != ""
}

// Has reports whether a destination is configured for d.
func (t Targets) Has(d Direction) bool {
	_, ok := t.Lookup(d)
	return ok
}

// Len returns the number of configured directions.
func (t Targets) Len() int {
	n := 0
	for _, d := range Directions {
		if t.urls[d] != "" {
			n++
		}
	}
	return n
}

// Map returns the configured destinations keyed by direction name.
func (t Targets) Map() map[string]string {
	m := make(map[string]string, t.Len())
	for _, d := range Directions {
		if u := t.urls[d]; u != "" {
			m[d.String()] = u
		}
	}
	return m
}
