package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a text logger at the given level. An unknown level falls back
// to info and is reported.
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.DateTime,
		FullTimestamp:   true,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
		l.WithError(err).Warn("invalid log level, using info")
		return l
	}
	l.SetLevel(lvl)
	return l
}
