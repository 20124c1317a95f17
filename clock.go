//go:build !ios && !android && (amd64 || arm64)

package ffscrub

import "math"

// DefaultWrapWindow is the loop length, in frames, used when the stream
// length is unknown.
const DefaultWrapWindow = 90.0

// Advance moves a fractional frame position forward by one display tick:
// frameRate/displayFPS frames, wrapped into [0, window).
//
// A non-positive frameRate or displayFPS leaves position unchanged; hosts
// report 0 fps for their first frames. So does a step that is not finite. A non-positive window means
// DefaultWrapWindow. The clock follows the display rate, not wall time, so
// playback drifts whenever the host misses frames.
func Advance(position, frameRate, displayFPS, window float64) float64 {
	if window <= 0 || math.IsNaN(window) || math.IsInf(window, 0) {
		window = DefaultWrapWindow
	}
	if frameRate <= 0 || displayFPS <= 0 || math.IsNaN(frameRate) || math.IsNaN(displayFPS) {
		return position
	}

	step := frameRate / displayFPS
	if math.IsInf(step, 0) || math.IsNaN(step) {
		return position
	}

	p := position + math.Mod(step, window)
	if p >= window {
		p = math.Mod(p, window)
	}
	return p
}

// WrapWindowFor returns the loop length for a stream of frameCount frames.
func WrapWindowFor(frameCount int64) float64 {
	if frameCount > 0 {
		return float64(frameCount)
	}
	return DefaultWrapWindow
}

// Clock is a looping playback position measured in frames.
type Clock struct {
	Position float64
	Window   float64
}

// Advance moves the clock forward by one display tick.
func (c *Clock) Advance(frameRate, displayFPS float64) float64 {
	c.Position = Advance(c.Position, frameRate, displayFPS, c.Window)
	return c.Position
}

// Frame returns the index of the frame at the current position.
func (c *Clock) Frame() int {
	return int(math.Floor(c.Position))
}

// Reset moves the clock back to frame 0.
func (c *Clock) Reset() {
	c.Position = 0
}
