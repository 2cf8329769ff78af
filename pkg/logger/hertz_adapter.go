package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// HertzAdapter routes hertz's hlog output into slog so the HTTP client logs
// land in the same file as everything else.
type HertzAdapter struct {
	logger *slog.Logger
	level  atomic.Int32 // hlog.Level floor; below it messages are dropped
}

var _ hlog.FullLogger = (*HertzAdapter)(nil)

// NewHertzAdapter creates an adapter writing to logger
func NewHertzAdapter(logger *slog.Logger) *HertzAdapter {
	a := &HertzAdapter{logger: logger}
	a.level.Store(int32(hlog.LevelTrace))
	return a
}

// InstallHertz makes hlog write through logger
func InstallHertz(logger *slog.Logger) {
	hlog.SetLogger(NewHertzAdapter(WithComponent(logger, "hertz")))
}

func toSlog(l hlog.Level) slog.Level {
	switch {
	case l <= hlog.LevelDebug:
		return slog.LevelDebug
	case l <= hlog.LevelNotice:
		return slog.LevelInfo
	case l == hlog.LevelWarn:
		return slog.LevelWarn
	}
	return slog.LevelError
}

func (a *HertzAdapter) emit(ctx context.Context, l hlog.Level, msg string) {
	if int32(l) < a.level.Load() {
		return
	}
	a.logger.Log(ctx, toSlog(l), msg)
}

func (a *HertzAdapter) print(l hlog.Level, v []interface{}) {
	a.emit(context.Background(), l, sprint(v))
}

func (a *HertzAdapter) printf(ctx context.Context, l hlog.Level, format string, v []interface{}) {
	a.emit(ctx, l, fmt.Sprintf(format, v...))
}

func (a *HertzAdapter) Trace(v ...interface{})  { a.print(hlog.LevelTrace, v) }
func (a *HertzAdapter) Debug(v ...interface{})  { a.print(hlog.LevelDebug, v) }
func (a *HertzAdapter) Info(v ...interface{})   { a.print(hlog.LevelInfo, v) }
func (a *HertzAdapter) Notice(v ...interface{}) { a.print(hlog.LevelNotice, v) }
func (a *HertzAdapter) Warn(v ...interface{})   { a.print(hlog.LevelWarn, v) }
func (a *HertzAdapter) Error(v ...interface{})  { a.print(hlog.LevelError, v) }
func (a *HertzAdapter) Fatal(v ...interface{})  { a.print(hlog.LevelFatal, v) }

func (a *HertzAdapter) Tracef(format string, v ...interface{}) {
	a.printf(context.Background(), hlog.LevelTrace, format, v)
}

func (a *HertzAdapter) Debugf(format string, v ...interface{}) {
	a.printf(context.Background(), hlog.LevelDebug, format, v)
}

func (a *HertzAdapter) Infof(format string, v ...interface{}) {
	a.printf(context.Background(), hlog.LevelInfo, format, v)
}

func (a *HertzAdapter) Noticef(format string, v ...interface{}) {
	a.printf(context.Background(), hlog.LevelNotice, format, v)
}

func (a *HertzAdapter) Warnf(format string, v ...interface{}) {
	a.printf(context.Background(), hlog.LevelWarn, format, v)
}

func (a *HertzAdapter) Errorf(format string, v ...interface{}) {
	a.printf(context.Background(), hlog.LevelError, format, v)
}

func (a *HertzAdapter) Fatalf(format string, v ...interface{}) {
	a.printf(context.Background(), hlog.LevelFatal, format, v)
}

func (a *HertzAdapter) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	a.printf(ctx, hlog.LevelTrace, format, v)
}

func (a *HertzAdapter) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	a.printf(ctx, hlog.LevelDebug, format, v)
}

func (a *HertzAdapter) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	a.printf(ctx, hlog.LevelInfo, format, v)
}

func (a *HertzAdapter) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	a.printf(ctx, hlog.LevelNotice, format, v)
}

func (a *HertzAdapter) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	a.printf(ctx, hlog.LevelWarn, format, v)
}

func (a *HertzAdapter) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	a.printf(ctx, hlog.LevelError, format, v)
}

func (a *HertzAdapter) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	a.printf(ctx, hlog.LevelFatal, format, v)
}

// SetLevel drops hertz messages below level
func (a *HertzAdapter) SetLevel(level hlog.Level) {
	a.level.Store(int32(level))
}

// SetOutput is a no-op; the slog handler owns the output
func (a *HertzAdapter) SetOutput(io.Writer) {}

func sprint(v []interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}
