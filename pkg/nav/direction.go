package nav

import "strings"

// Direction is one of the four navigation directions.
type Direction uint8

const (
	// None is the zero Direction. It never has a target.
	None Direction = iota
	Up
	Down
	Left
	Right
)

// numDirections is the number of Direction values including None.
const numDirections = 5

// Directions lists the four real directions in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

// String returns the lowercase name used in configuration and events.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Valid reports whether d is one of Up, Down, Left or Right.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// Horizontal reports whether d lies on the horizontal axis.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// ParseDirection parses a direction name. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	default:
		return None, false
	}
}

// Source identifies where a direction signal came from.
type Source uint8

const (
	SourceKey Source = iota
	SourceSwipe
)

// String returns the source name used in logs and metric labels.
func (s Source) String() string {
	switch s {
	case SourceKey:
		return "key"
	case SourceSwipe:
		return "swipe"
	default:
		return "unknown"
	}
}
