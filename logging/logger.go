package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = logrus.New()

// InitLogger configures the shared logger. Output goes to stdout and, when a
// log directory is writable, to a size-rotated file as well.
func InitLogger() {
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level := logrus.InfoLevel
	if parsed, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		level = parsed
	}
	Logger.SetLevel(level)

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		Logger.SetOutput(os.Stdout)
		Logger.Warnf("log directory unavailable, logging to stdout only: %v", err)
		return
	}

	rotated := &lumberjack.Logger{
		Filename:   logDir + "/buildledger.log",
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, rotated))
}
