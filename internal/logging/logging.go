package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging returns the server logger: JSON lines on stdout.
func SetupLogging() *logrus.Logger {
	logger := logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}

	return &logger
}

// SetupCLILogging returns a logger for ledgerctl. Command output owns
// stdout, so log lines go to out as plain text.
func SetupCLILogging(out io.Writer) *logrus.Logger {
	return &logrus.Logger{
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: true,
		},
		Out:   out,
		Hooks: make(logrus.LevelHooks),
		Level: logrus.InfoLevel,
	}
}

// SetLevel applies a textual level such as "debug" or "warn" to logger.
func SetLevel(logger *logrus.Logger, level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(parsed)
	return nil
}
