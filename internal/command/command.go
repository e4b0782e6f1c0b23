// Package command maps classified button events onto lock transitions and
// the factory reset workflow.
package command

import (
	"log/slog"

	"github.com/sweeney/lock-controller/internal/button"
	"github.com/sweeney/lock-controller/internal/lock"
)

// Locker is the lock state machine's local entry point.
type Locker interface {
	Request(s lock.State) bool
}

// Starter starts a background workflow.
type Starter interface {
	Start() bool
}

// Interpreter decides what each button event does:
// single press unlocks, double press locks, long press factory-resets.
type Interpreter struct {
	lock  Locker
	reset Starter
	log   *slog.Logger
}

// NewInterpreter creates an interpreter.
func NewInterpreter(l Locker, reset Starter, log *slog.Logger) *Interpreter {
	if log == nil {
		log = slog.Default()
	}
	return &Interpreter{lock: l, reset: reset, log: log}
}

// Handle applies one button event. Unknown events are logged and dropped.
func (i *Interpreter) Handle(ev button.Event) {
	switch ev.Type {
	case button.SinglePress:
		i.log.Info("unlocking", "source", "button")
		i.lock.Request(lock.Unsecured)
	case button.DoublePress:
		i.log.Info("locking", "source", "button")
		i.lock.Request(lock.Secured)
	case button.LongPress:
		i.reset.Start()
	default:
		i.log.Warn("unknown button event", "type", ev.Type, "presses", ev.Presses)
	}
}
