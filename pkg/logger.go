package pkg

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelDebug
)

var log_level = LogLevelErrOnly

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

func SetLogLevel(level LogLevel) {
	log_level = level

	switch level {
	case LogLevelNone:
		logger.SetOutput(io.Discard)
	case LogLevelErrOnly:
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.ErrorLevel)
	case LogLevelDebug:
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.Infoln("log level set to", level)
}

func GetLogLevel() LogLevel { return log_level }

// SetLogOutput redirects every logger, mostly for tests.
func SetLogOutput(w io.Writer) { logger.SetOutput(w) }

// LogFields returns an entry carrying structured fields,
// e.g. pkg.LogFields(logrus.Fields{"dataset": name}).Warn(...)
func LogFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

var (
	InfoLog  = logger.Infoln
	ErrorLog = logger.Errorln
	FatalLog = logger.Fatalln
	WarnLog  = logger.Warnln
	DebugLog = logger.Debugln
)
