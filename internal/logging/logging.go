// Package logging builds the process logger.
//
// Loggers are created once in the command layer and passed down explicitly.
// Library code that has nothing useful to report takes no logger at all.
package logging

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New returns a logfmt logger writing to w. verbosity follows the -v flag
// count: 0 logs warnings and errors, 1 adds info, 2 or more adds debug.
func New(w io.Writer, verbosity int) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.WithPrefix(logger, "ts", log.DefaultTimestampUTC)
	if verbosity >= 2 {
		logger = log.WithPrefix(logger, "caller", log.DefaultCaller)
	}
	return level.NewFilter(logger, Option(verbosity))
}

// Option maps a verbosity count to the go-kit level filter option.
func Option(verbosity int) level.Option {
	switch {
	case verbosity <= 0:
		return level.AllowWarn()
	case verbosity == 1:
		return level.AllowInfo()
	default:
		return level.AllowDebug()
	}
}

// Component returns logger tagged with the component name.
func Component(logger log.Logger, name string) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return log.With(logger, "component", name)
}
