package db

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Logger sends GORM output to zerolog.
type Logger struct {
	level gormlogger.LogLevel
}

// NewLogger returns a GORM logger writing through the global zerolog logger.
func NewLogger() *Logger {
	return &Logger{level: gormlogger.Warn}
}

// LogMode implements gormlogger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &Logger{level: level}
}

// Info implements gormlogger.Interface.
func (l *Logger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logger(ctx).Info().Msgf(msg, args...)
	}
}

// Warn implements gormlogger.Interface.
func (l *Logger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logger(ctx).Warn().Msgf(msg, args...)
	}
}

// Error implements gormlogger.Interface.
func (l *Logger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logger(ctx).Error().Msgf(msg, args...)
	}
}

// Trace implements gormlogger.Interface. Missing rows are expected lookups and
// are not reported as errors.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	var event *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		event = logger(ctx).Error().Err(err)
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		event = logger(ctx).Warn().Bool("slow", true)
	default:
		event = logger(ctx).Debug()
	}
	sql, rows := fc()
	event.Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
}

// logger falls back to the global logger when ctx carries none.
func logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
