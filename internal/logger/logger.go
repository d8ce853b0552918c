package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Wikid82/autosource/backend/internal/version"
)

var base = logrus.New()

// Init sets the process-wide output. Debug mode logs text at debug level;
// otherwise entries are JSON at info level, ready for the rotated log files.
func Init(debug bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	base.SetOutput(out)
	if debug {
		base.SetLevel(logrus.DebugLevel)
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
		return
	}
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
}

// Log returns an entry tagged with the service name.
func Log() *logrus.Entry {
	return base.WithField("service", version.Name)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log().WithFields(fields)
}
