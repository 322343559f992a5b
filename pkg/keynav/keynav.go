// Package keynav maps arrow-key presses to navigation directions.
package keynav

import (
	"context"
	"sort"

	"github.com/vango-dev/pagenav/pkg/nav"
)

// Arrow key codes as reported by KeyboardEvent.keyCode.
const (
	KeyCodeLeft  = 37
	KeyCodeUp    = 38
	KeyCodeRight = 39
	KeyCodeDown  = 40
)

// arrowKeys is the one key table. 37 and 38 are left and up; some older
// pages had them swapped, which is not reproduced here.
var arrowKeys = map[int]nav.Direction{
	KeyCodeLeft:  nav.Left,
	KeyCodeUp:    nav.Up,
	KeyCodeRight: nav.Right,
	KeyCodeDown:  nav.Down,
}

// DirectionForKeyCode returns the direction bound to an arrow key code.
func DirectionForKeyCode(code int) (nav.Direction, bool) {
	d, ok := arrowKeys[code]
	return d, ok
}

// KeyCodeForDirection returns the arrow key code for a direction.
func KeyCodeForDirection(d nav.Direction) (int, bool) {
	for code, dir := range arrowKeys {
		if dir == d {
			return code, true
		}
	}
	return 0, false
}

// Press is a key-down observation.
type Press struct {
	Code int

	// Modified is true when ctrl, alt or meta was held.
	Modified bool
}

// Router receives the directions resolved from key presses.
type Router interface {
	Navigate(ctx context.Context, d nav.Direction, src nav.Source) (nav.Decision, error)
}

// Result describes how a key press was handled.
type Result struct {
	// Handled is true when the browser default must be suppressed.
	Handled bool

	Direction nav.Direction
	Decision  nav.Decision
}

// Navigator resolves arrow keys against a page's navigation targets.
type Navigator struct {
	targets nav.Targets
	router  Router
}

// New creates a Navigator. targets decides which keys are handled; router
// performs the navigation.
func New(targets nav.Targets, router Router) *Navigator {
	return &Navigator{
		targets: targets,
		router:  router,
	}
}

// KeyDown handles a key press. Keys that are not arrows, arrows without a
// target and modified presses are left alone so the browser default runs.
func (n *Navigator) KeyDown(ctx context.Context, p Press) (Result, error) {
	d, ok := DirectionForKeyCode(p.Code)
	if !ok || p.Modified || !n.targets.Has(d) {
		return Result{}, nil
	}
	res := Result{Handled: true, Direction: d}
	if n.router == nil {
		return res, nil
	}
	dec, err := n.router.Navigate(ctx, d, nav.SourceKey)
	res.Decision = dec
	return res, err
}

// HandledKeyCodes returns, in ascending order, the key codes KeyDown would
// handle for the current targets.
func (n *Navigator) HandledKeyCodes() []int {
	var codes []int
	for code, d := range arrowKeys {
		if n.targets.Has(d) {
			codes = append(codes, code)
		}
	}
	sort.Ints(codes)
	return codes
}
