package evkv

import "github.com/sirupsen/logrus"

// newDefaultLogger builds the logrus.Logger used when no WithLogger
// option is supplied: plain text formatter with full timestamps, written
// to stderr (logrus's own default), level Info. Mirrors the minimal end
// of nabbar-golib/logger's formatter configuration without that package's
// multi-hook/multi-backend machinery, which this single-process server
// has no use for.
func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}
