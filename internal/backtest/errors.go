package backtest

import (
	"errors"
	"fmt"
	"time"
)

// ErrBenchmarkUnavailable signals that a requested benchmark comparison
// could not be computed because fewer than two dates overlap with the
// simulated return series. Callers are expected to degrade to a report
// without an active-return section rather than abort.
var ErrBenchmarkUnavailable = errors.New("backtest: no benchmark comparison available")

// ConfigError reports an invalid Config value. It is raised before any
// simulation step runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("backtest: invalid config: %s: %s", e.Field, e.Reason)
}

// AlignmentError reports that a simulation had no usable data: the requested
// symbol is absent from the signal panel, or signal and return series share
// no common dates. Start and End carry the simulated window when one was
// requested, to aid debugging.
type AlignmentError struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *AlignmentError) Error() string {
	msg := "backtest: data alignment"
	if e.Symbol != "" {
		msg += fmt.Sprintf(": symbol %q", e.Symbol)
	}
	if !e.Start.IsZero() || !e.End.IsZero() {
		msg += fmt.Sprintf(" [%s..%s]", formatBound(e.Start), formatBound(e.End))
	}
	return msg + ": " + e.Reason
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
