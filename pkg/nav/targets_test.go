package nav

import (
	"sort"
	"testing"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"up", Up, true},
		{"DOWN", Down, true},
		{" left ", Left, true},
		{"Right", Right, true},
		{"forward", None, false},
		{"", None, false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDirection(%q) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDirectionString(t *testing.T) {
	for _, d := range Directions {
		back, ok := ParseDirection(d.String())
		if !ok || back != d {
			t.Errorf("%s does not parse back to itself", d)
		}
	}
	if None.String() != "none" || None.Valid() {
		t.Error("None should be invalid and print as none")
	}
}

func TestTargets_Lookup(t *testing.T) {
	targets := NewTargets(map[Direction]string{
		Up:   "/a",
		Left: "",
		None: "/ignored",
	})

	if u, ok := targets.Lookup(Up); !ok || u != "/a" {
		t.Errorf("Lookup(Up) = (%q, %v)", u, ok)
	}
	if targets.Has(Left) {
		t.Error("empty URL should not count as a target")
	}
	if targets.Has(None) {
		t.Error("None should never have a target")
	}
	if targets.Len() != 1 {
		t.Errorf("Len() = %d, want 1", targets.Len())
	}
}

func TestParseTargets_ReportsUnknownNames(t *testing.T) {
	targets, unknown := ParseTargets(map[string]string{
		"down":    "/next",
		"up":      "/prev",
		"sideway": "/nope",
	})
	if targets.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", targets.Len())
	}
	sort.Strings(unknown)
	if len(unknown) != 1 || unknown[0] != "sideway" {
		t.Fatalf("unknown = %v, want [sideway]", unknown)
	}
	m := targets.Map()
	if m["down"] != "/next" || m["up"] != "/prev" || len(m) != 2 {
		t.Fatalf("Map() = %v", m)
	}
}

func TestTargets_CopyIsIndependent(t *testing.T) {
	src := map[Direction]string{Up: "/a"}
	targets := NewTargets(src)
	src[Up] = "/changed"
	if u, _ := targets.Lookup(Up); u != "/a" {
		t.Fatalf("targets changed with source map: %q", u)
	}
}
