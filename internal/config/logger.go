package config

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger builds the binaries' logger. The level comes from FX_LOG_LEVEL
// (debug, info, warn, error); unknown values keep info.
func NewLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if lvl, err := log.ParseLevel(GetEnv("FX_LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
