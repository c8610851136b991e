// Package logging provides the per-component slog.Logger construction idiom
// the teacher's bisonbotkit dependency supplied (logBackend.Logger("NAME")).
// bisonbotkit itself is out of scope here (it is a Bison Relay bot
// framework concern, not a logging concern — see DESIGN.md), so this
// package reimplements just the logging idiom directly on top of
// decred/slog, which the teacher already depends on for the Logger
// interface everywhere else.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
)

// LogConfig configures a LogBackend. DebugLevel accepts the same strings
// decred/slog does ("trace", "debug", "info", "warn", "error", "critical",
// "off"), or a comma-separated per-subsystem override list of the form
// "info,ROOM=debug,VERIFIER=trace" exactly like the teacher's own flag.
type LogConfig struct {
	DebugLevel string
	// Writer defaults to os.Stdout; overridable for tests.
	Writer io.Writer
}

// LogBackend mints per-component slog.Logger children sharing one backend,
// so every subsystem's log lines share a single output stream and a single
// default level while still being individually filterable by subsystem tag.
type LogBackend struct {
	backend      *slog.Backend
	defaultLevel slog.Level
	overrides    map[string]slog.Level
}

// NewLogBackend constructs a LogBackend from cfg.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	level, overrides, err := parseDebugLevel(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}

	return &LogBackend{
		backend:      slog.NewBackend(w),
		defaultLevel: level,
		overrides:    overrides,
	}, nil
}

// Logger returns a named child logger (e.g. "ROOM", "VERIFIER", "WSCONN"),
// at the configured level for that subsystem tag if one was set, or the
// backend's default level otherwise.
func (b *LogBackend) Logger(subsystem string) slog.Logger {
	log := b.backend.Logger(subsystem)
	if lvl, ok := b.overrides[subsystem]; ok {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(b.defaultLevel)
	}
	return log
}

func parseDebugLevel(spec string) (slog.Level, map[string]slog.Level, error) {
	overrides := make(map[string]slog.Level)
	if spec == "" {
		return slog.LevelInfo, overrides, nil
	}

	parts := splitComma(spec)
	defaultLevel := slog.LevelInfo
	for i, part := range parts {
		name, lvlStr, hasSubsystem := cutEquals(part)
		lvl, ok := slog.LevelFromString(lvlStr)
		if !ok {
			return 0, nil, fmt.Errorf("logging: unrecognized level %q", lvlStr)
		}
		if !hasSubsystem {
			if i == 0 {
				defaultLevel = lvl
			}
			continue
		}
		overrides[name] = lvl
	}
	return defaultLevel, overrides, nil
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func cutEquals(s string) (name, level string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", s, false
}
