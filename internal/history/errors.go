package history

import "errors"

var (
	// ErrDisabled indicates the history sink is disabled in config.
	ErrDisabled = errors.New("history: disabled in configuration")

	// ErrConnectionFailed indicates the initial ping to InfluxDB failed.
	ErrConnectionFailed = errors.New("history: connection failed")
)
