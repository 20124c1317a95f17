//go:build !ios && !android && (amd64 || arm64)

package player

import (
	"fmt"
	"strings"
)

// Fit decides how a frame is sized inside the view.
type Fit int

const (
	// FitStretch sizes the image to the whole view.
	FitStretch Fit = iota
	// FitContain sizes the image to the largest rectangle with the frame's
	// aspect ratio that fits the view.
	FitContain
)

func (f Fit) String() string {
	switch f {
	case FitStretch:
		return "stretch"
	case FitContain:
		return "contain"
	default:
		return fmt.Sprintf("Fit(%d)", int(f))
	}
}

// ParseFit accepts "stretch" or "contain".
func ParseFit(s string) (Fit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stretch", "":
		return FitStretch, nil
	case "contain":
		return FitContain, nil
	}
	return FitStretch, fmt.Errorf("player: unknown fit %q", s)
}

// Size returns the display size of a frameW x frameH image in a viewW x
// viewH view.
func (f Fit) Size(frameW, frameH int, viewW, viewH float32) (float32, float32) {
	if f != FitContain || frameW <= 0 || frameH <= 0 || viewW <= 0 || viewH <= 0 {
		return viewW, viewH
	}
	scale := min(viewW/float32(frameW), viewH/float32(frameH))
	return float32(frameW) * scale, float32(frameH) * scale
}
