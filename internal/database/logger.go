package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/alanjwade/tournament-manager-sub000/internal/util/slogx"
	"github.com/mattn/go-colorable"
	"gorm.io/gorm/logger"
)

type slogLogger struct {
	log           *slog.Logger
	slowThreshold time.Duration
}

func Logger(srcLog *slog.Logger, o Options) logger.Interface {
	if o.Debug {
		// gorm's own logger prints every statement, which is what one wants when debugging.
		return logger.New(
			log.New(colorable.NewColorableStderr(), "", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
			},
		)
	}
	return &slogLogger{
		log:           srcLog.With(slog.String("component", "gorm")),
		slowThreshold: o.SlowThreshold,
	}
}

func (l *slogLogger) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *slogLogger) Info(ctx context.Context, msg string, data ...any) {
	l.log.InfoContext(ctx, fmt.Sprintf(msg, data...))
}

func (l *slogLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.log.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

func (l *slogLogger) Error(ctx context.Context, msg string, data ...any) {
	l.log.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		sql, rows := fc()
		l.log.ErrorContext(ctx, "sql failed",
			slog.Duration("elapsed", elapsed), slogx.Err(err), slog.String("sql", sql), slog.Int64("rows", rows))
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		sql, rows := fc()
		l.log.WarnContext(ctx, "slow sql", slog.Duration("elapsed", elapsed), slog.String("sql", sql), slog.Int64("rows", rows))
	}
}
