package worker

import (
	"fmt"

	"go.uber.org/zap"
)

type asynqLoggerAdapter struct {
	logger *zap.Logger
}

// NewAsynqLoggerAdapter routes asynq's internal logging through zap.
func NewAsynqLoggerAdapter(logger *zap.Logger) *asynqLoggerAdapter {
	return &asynqLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *asynqLoggerAdapter) Debug(args ...any) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLoggerAdapter) Info(args ...any) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLoggerAdapter) Warn(args ...any) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLoggerAdapter) Error(args ...any) {
	l.logger.Error(fmt.Sprint(args...))
}

// Fatal is downgraded to Error so that a broken Redis connection cannot exit the API process.
func (l *asynqLoggerAdapter) Fatal(args ...any) {
	l.logger.Error(fmt.Sprint(args...))
}
