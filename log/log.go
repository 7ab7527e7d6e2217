// Package log provides structured logging to stderr with optional filesystem persistence.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bbdl-cli/bbdl/filesystem"
	"github.com/bbdl-cli/bbdl/key"
	"github.com/bbdl-cli/bbdl/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	// stderr is swapped by tests.
	stderr io.Writer = os.Stderr
	// file is the dated log file opened by Setup, nil when logs.write is off.
	file io.Closer
)

// Setup configures formatting and severity from the global configuration.
// When logs.write is enabled, entries are additionally appended to a dated file in the logs directory.
// A file opened by an earlier Setup is closed first.
func Setup() error {
	if err := Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}

	var out io.Writer = stderr

	if viper.GetBool(key.LogsWrite) {
		dir := where.Logs()
		if dir == "" {
			return errors.New("log directory path is empty")
		}

		path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
		f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(stderr, f)
	}
	logrus.SetOutput(out)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// Close releases the log file opened by Setup and sends further entries to stderr only.
func Close() error {
	if file == nil {
		return nil
	}

	err := file.Close()
	file = nil
	logrus.SetOutput(stderr)
	return err
}

// WithField returns an entry carrying one structured field.
func WithField(k string, v any) *logrus.Entry {
	return logrus.WithField(k, v)
}

// WithFields returns an entry carrying several structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}

func Error(args ...interface{})                 { logrus.Error(args...) }
func Errorf(format string, args ...interface{}) { logrus.Errorf(format, args...) }
func Warn(args ...interface{})                  { logrus.Warn(args...) }
func Warnf(format string, args ...interface{})  { logrus.Warnf(format, args...) }
func Info(args ...interface{})                  { logrus.Info(args...) }
func Infof(format string, args ...interface{})  { logrus.Infof(format, args...) }
func Debug(args ...interface{})                 { logrus.Debug(args...) }
func Debugf(format string, args ...interface{}) { logrus.Debugf(format, args...) }
