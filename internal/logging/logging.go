package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbridge/pkg/bridge"
)

// New builds a zerolog logger. format is "console" (human readable) or
// "json"; unknown levels fall back to info.
func New(w io.Writer, level, format string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05.000"}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Observer logs every backend call. HTTP errors are warnings and transport
// failures are errors.
func Observer(logger zerolog.Logger) bridge.Observer {
	return bridge.ObserverFunc(func(evt bridge.Event) {
		var e *zerolog.Event
		switch evt.Outcome {
		case bridge.OutcomeTransportError:
			e = logger.Error().Err(evt.Err)
		case bridge.OutcomeHTTPError:
			e = logger.Warn()
		default:
			e = logger.Debug()
		}
		e.Str("method", evt.Method).
			Str("path", evt.Path).
			Str("request_id", evt.RequestID).
			Int("status", evt.Status).
			Str("outcome", string(evt.Outcome)).
			Dur("duration", evt.Duration).
			Msg("backend request")
	})
}

// Since is a small helper for handlers that log their own elapsed time.
func Since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Microsecond)
}
