package autotune

import (
	"fmt"
	"io"
)

// LogEntry is one recorded tuner call, replayable for post-hoc analysis.
type LogEntry struct {
	Phase     int
	Config    Config
	Committed bool
	Err       error
}

// LoggingTuner wraps a Tuner so every Step call is recorded in Entries; a
// plain line is written to w only when a call fails or commits a phase, the
// same fmt.Fprintf progress-reporting style internal/automation uses for its
// step/sweep/trial lines rather than a structured logging library.
type LoggingTuner struct {
	*Tuner
	w       io.Writer
	entries []LogEntry
}

// NewLoggingTuner wraps t, recording every Step call and writing a line to
// w for each failed or committing call.
func NewLoggingTuner(t *Tuner, w io.Writer) *LoggingTuner {
	return &LoggingTuner{Tuner: t, w: w}
}

func (l *LoggingTuner) Step(run Runner) (Config, error) {
	phaseBefore := l.history.phase
	cfg, err := l.Tuner.Step(run)
	committed := l.history.phase != phaseBefore

	entry := LogEntry{Phase: l.history.phase, Config: cfg, Committed: committed, Err: err}
	l.entries = append(l.entries, entry)

	if err != nil {
		fmt.Fprintf(l.w, "autotune: phase %d FAILED: %v\n", entry.Phase, err)
		return cfg, err
	}
	if committed {
		fmt.Fprintf(l.w, "autotune: phase %d committed %s\n", entry.Phase, cfg)
	}
	return cfg, nil
}

// Entries returns the full replay log recorded so far.
func (l *LoggingTuner) Entries() []LogEntry { return l.entries }
