package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
)

var output io.Writer = os.Stdout

// Setup initializes Logrus to write to stdout and a rotating file.
// An empty file disables the file sink.
func Setup(level, file string) {
	output = os.Stdout
	if file != "" {
		_ = os.MkdirAll(filepath.Dir(file), 0o755)
		rotator := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		}
		output = io.MultiWriter(os.Stdout, rotator)
	}

	logrus.SetOutput(output)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logrus.WithField("level", level).Warn("unknown log level, falling back to info")
	}
	logrus.SetLevel(lvl)
}

// Writer is the sink shared by the HTTP access log.
func Writer() io.Writer {
	return output
}

// GormLogger returns the standard Logrus logger for GORM
func GormLogger() *logrus.Logger {
	return logrus.StandardLogger()
}
