package main

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's internal logging through slog
type cronLogger struct {
	log *slog.Logger
}

func newCronLogger(log *slog.Logger) cron.Logger {
	return &cronLogger{log: log.With(slog.String("source", "cron"))}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append([]interface{}{slog.Any("error", err)}, keysAndValues...)...)
}
