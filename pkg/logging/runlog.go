package logging

import (
	"fmt"
	"sync"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
)

// RunLevel is the severity of a run log entry. The run log is the
// user-visible reporting channel for import and reconciliation runs, so its
// levels are coarser than zerolog's: a successful step is worth surfacing,
// not just the absence of an error.
type RunLevel string

// Run log levels.
const (
	RunInfo    RunLevel = "info"
	RunSuccess RunLevel = "success"
	RunWarn    RunLevel = "warn"
	RunError   RunLevel = "error"
)

// Entry is a single, immutable run log record.
type Entry struct {
	Time    utc.Time `json:"time"`
	Level   RunLevel `json:"level"`
	Source  string   `json:"source,omitempty"`
	Message string   `json:"message"`
}

// RunLog is an append-only, timestamped, leveled log stream. Every entry is
// also mirrored to a zerolog logger so operators see the same stream in
// structured form. The zero value is not usable; use NewRunLog.
type RunLog struct {
	mu      sync.Mutex
	entries []Entry
	logger  *zerolog.Logger
}

// NewRunLog creates a run log mirroring entries to the given logger.
// A nil logger mirrors to the package default.
func NewRunLog(logger *zerolog.Logger) *RunLog {
	if logger == nil {
		logger = Default()
	}
	return &RunLog{logger: logger}
}

// Infof appends an info entry.
func (rl *RunLog) Infof(source, format string, args ...any) {
	rl.append(RunInfo, source, format, args...)
}

// Successf appends a success entry.
func (rl *RunLog) Successf(source, format string, args ...any) {
	rl.append(RunSuccess, source, format, args...)
}

// Warnf appends a warning entry.
func (rl *RunLog) Warnf(source, format string, args ...any) {
	rl.append(RunWarn, source, format, args...)
}

// Errorf appends an error entry.
func (rl *RunLog) Errorf(source, format string, args ...any) {
	rl.append(RunError, source, format, args...)
}

// Entries returns a copy of all entries in append order.
func (rl *RunLog) Entries() []Entry {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	out := make([]Entry, len(rl.entries))
	copy(out, rl.entries)
	return out
}

// ErrorCount returns the number of error entries.
func (rl *RunLog) ErrorCount() int {
	return rl.countLevel(RunError)
}

// SuccessCount returns the number of success entries.
func (rl *RunLog) SuccessCount() int {
	return rl.countLevel(RunSuccess)
}

func (rl *RunLog) countLevel(level RunLevel) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for _, e := range rl.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (rl *RunLog) append(level RunLevel, source, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	rl.mu.Lock()
	rl.entries = append(rl.entries, Entry{
		Time:    utc.Now(),
		Level:   level,
		Source:  source,
		Message: msg,
	})
	rl.mu.Unlock()

	event := rl.event(level)
	if source != "" {
		event = event.Str("source", source)
	}
	event.Msg(msg)
}

func (rl *RunLog) event(level RunLevel) *zerolog.Event {
	switch level {
	case RunError:
		return rl.logger.Error()
	case RunWarn:
		return rl.logger.Warn()
	default:
		// Success rides on info; zerolog has no success level.
		return rl.logger.Info()
	}
}
