package session

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// loadingSpinner is the frame set and cadence for the loading overlay. The
// bubbles spinner type is used as the carrier; ticking is driven by the host
// program loop, not a timer of its own.
var loadingSpinner = spinner.Spinner{
	Frames: []string{"-", "\\", "|", "/"},
	FPS:    time.Second / 10,
}

// SpinnerInterval returns the tick cadence, honouring a config override in
// milliseconds when positive.
func SpinnerInterval(overrideMS int) time.Duration {
	if overrideMS > 0 {
		return time.Duration(overrideMS) * time.Millisecond
	}
	return loadingSpinner.FPS
}
