package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

var _ hlog.FullLogger = (*HertzSlogAdapter)(nil)

// HertzSlogAdapter routes Hertz framework logs through slog.
type HertzSlogAdapter struct {
	logger *slog.Logger
	min    atomic.Int64
}

// NewHertzSlogAdapter wraps l. Records below hlog.LevelInfo are dropped until
// SetLevel lowers the threshold.
func NewHertzSlogAdapter(l *slog.Logger) *HertzSlogAdapter {
	a := &HertzSlogAdapter{logger: l}
	a.min.Store(int64(hlog.LevelInfo))
	return a
}

func (a *HertzSlogAdapter) log(ctx context.Context, level hlog.Level, msg string) {
	if int64(level) < a.min.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	a.logger.Log(ctx, toSlogLevel(level), msg, "component", "hertz")
}

func toSlogLevel(level hlog.Level) slog.Level {
	switch level {
	case hlog.LevelTrace, hlog.LevelDebug:
		return slog.LevelDebug
	case hlog.LevelInfo, hlog.LevelNotice:
		return slog.LevelInfo
	case hlog.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func sprint(v ...interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}

func (a *HertzSlogAdapter) Trace(v ...interface{}) {
	a.log(context.Background(), hlog.LevelTrace, sprint(v...))
}

func (a *HertzSlogAdapter) Debug(v ...interface{}) {
	a.log(context.Background(), hlog.LevelDebug, sprint(v...))
}

func (a *HertzSlogAdapter) Info(v ...interface{}) {
	a.log(context.Background(), hlog.LevelInfo, sprint(v...))
}

func (a *HertzSlogAdapter) Notice(v ...interface{}) {
	a.log(context.Background(), hlog.LevelNotice, sprint(v...))
}

func (a *HertzSlogAdapter) Warn(v ...interface{}) {
	a.log(context.Background(), hlog.LevelWarn, sprint(v...))
}

func (a *HertzSlogAdapter) Error(v ...interface{}) {
	a.log(context.Background(), hlog.LevelError, sprint(v...))
}

// Fatal is logged at error level; the adapter never exits the process.
func (a *HertzSlogAdapter) Fatal(v ...interface{}) {
	a.log(context.Background(), hlog.LevelFatal, sprint(v...))
}

func (a *HertzSlogAdapter) Tracef(format string, v ...interface{}) {
	a.log(context.Background(), hlog.LevelTrace, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) Debugf(format string, v ...interface{}) {
	a.log(context.Background(), hlog.LevelDebug, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) Infof(format string, v ...interface{}) {
	a.log(context.Background(), hlog.LevelInfo, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) Noticef(format string, v ...interface{}) {
	a.log(context.Background(), hlog.LevelNotice, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) Warnf(format string, v ...interface{}) {
	a.log(context.Background(), hlog.LevelWarn, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) Errorf(format string, v ...interface{}) {
	a.log(context.Background(), hlog.LevelError, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) Fatalf(format string, v ...interface{}) {
	a.log(context.Background(), hlog.LevelFatal, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	a.log(ctx, hlog.LevelTrace, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	a.log(ctx, hlog.LevelDebug, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	a.log(ctx, hlog.LevelInfo, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	a.log(ctx, hlog.LevelNotice, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	a.log(ctx, hlog.LevelWarn, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	a.log(ctx, hlog.LevelError, fmt.Sprintf(format, v...))
}

func (a *HertzSlogAdapter) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	a.log(ctx, hlog.LevelFatal, fmt.Sprintf(format, v...))
}

// SetLevel sets the minimum hlog level forwarded to slog.
func (a *HertzSlogAdapter) SetLevel(level hlog.Level) {
	a.min.Store(int64(level))
}

// SetOutput is a no-op: the slog handler owns the writer.
func (a *HertzSlogAdapter) SetOutput(io.Writer) {}
