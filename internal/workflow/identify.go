package workflow

import (
	"log/slog"
	"time"
)

// Identify blinks the indicator so a user can find the accessory:
// three groups of two flashes, then off. It changes no lock state.
type Identify struct {
	indicator Indicator
	log       *slog.Logger

	// Sleep is time.Sleep unless replaced by tests.
	Sleep func(time.Duration)

	guard oneShot
}

// NewIdentify creates the identify workflow.
func NewIdentify(ind Indicator, log *slog.Logger) *Identify {
	if log == nil {
		log = discardLogger()
	}
	return &Identify{indicator: ind, log: log, Sleep: time.Sleep}
}

// Start runs the blink sequence in the background. A trigger while one is
// already blinking is ignored and reports false.
func (i *Identify) Start() bool {
	if !i.guard.spawn(i.Run) {
		i.log.Debug("identify already running")
		return false
	}
	i.log.Info("lock identify")
	return true
}

// Running reports whether the sequence is in progress.
func (i *Identify) Running() bool {
	return i.guard.active()
}

// Run executes the sequence on the calling goroutine.
func (i *Identify) Run() {
	for g := 0; g < 3; g++ {
		for f := 0; f < 2; f++ {
			blink(i.indicator, i.Sleep)
		}
		i.Sleep(groupPause)
	}
	i.indicator.SetIndicator(false)
}
