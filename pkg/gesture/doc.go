// Package gesture recognizes single-finger swipes from raw touch events.
//
// A Recognizer tracks at most one touch sequence. Start records the origin,
// Move updates the displacement, and End classifies the sequence:
//
//   - the end target must equal the start target
//   - the axis with the larger displacement is the only one considered
//   - the displacement must exceed the element's threshold (default 200px)
//   - the sequence must finish under the element's timeout (default 500ms)
//
// The reported direction is the direction the finger travelled. Elements
// override the thresholds with the data-swipe-threshold and
// data-swipe-timeout attributes.
package gesture
