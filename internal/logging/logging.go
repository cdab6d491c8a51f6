// Package logging configures the process-wide logrus logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared application logger. Call Init before use.
var Log *logrus.Logger

// Init initializes the logger. The level comes from LOG_LEVEL (debug,
// info, warn, error); unknown or empty values fall back to info.
func Init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}

// L returns the shared logger, initializing it on first use.
func L() *logrus.Logger {
	if Log == nil {
		Init()
	}
	return Log
}
