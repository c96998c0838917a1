package logger

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// LogLevelFromString maps a level name to a go-kit filter option.
// Unknown names, including the empty string, allow every level.
func LogLevelFromString(l string) level.Option {
	switch l {
	case "debug":
		return level.AllowDebug()
	case "info":
		return level.AllowInfo()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowAll()
	}
}

// New returns a logfmt logger on w with timestamp and caller fields
func New(w io.Writer) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = log.WithPrefix(l, "ts", log.DefaultTimestampUTC)
	l = log.WithPrefix(l, "caller", log.DefaultCaller)
	return l
}

// WithLevel filters l to the named level
func WithLevel(l log.Logger, name string) log.Logger {
	return level.NewFilter(l, LogLevelFromString(name))
}
