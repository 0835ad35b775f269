package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
		defer log.Warnf("invalid LOG_LEVEL %q, defaulting to info", level)
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// Engine returns the logger handed to the aggregation engine. Its debug
// traces are only let through when debug is set, whatever the base level.
func Engine(base *logrus.Logger, debug bool) logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(base.Out)
	l.SetFormatter(base.Formatter)
	l.ReplaceHooks(base.Hooks)
	switch lvl := base.GetLevel(); {
	case debug:
		l.SetLevel(logrus.DebugLevel)
	case lvl > logrus.InfoLevel:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(lvl)
	}
	return l.WithField("component", "engine")
}

// Discard returns a logger that drops everything.
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
