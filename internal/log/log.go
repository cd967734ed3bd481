package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses a logrus level name ("debug", "info", ...).
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// With returns an entry tagged with the component name, e.g. "net" or "export".
func With(component string) *logrus.Entry {
	return Logger.WithField("component", component)
}

func Debug(msg string, args ...interface{}) {
	Logger.Debugf(msg, args...)
}

func Info(msg string, args ...interface{}) {
	Logger.Infof(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	Logger.Warnf(msg, args...)
}

func Error(msg string, args ...interface{}) {
	Logger.Errorf(msg, args...)
}

func Fatal(msg string, args ...interface{}) {
	Logger.Fatalf(msg, args...)
}
