package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

// 编译时接口检查
var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

// xlogger Logger 接口的实现
type xlogger struct {
	handler    slog.Handler
	levelVar   *slog.LevelVar
	onError    func(error)    // 内部错误回调
	errorCount *atomic.Uint64 // 内部错误计数器，派生 logger 共享
	addSource  bool
}

// log 通用日志方法，正确捕获调用者位置
//
//go:noinline
func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// skip=3: Callers → log → Debug/Info/… → 业务代码
		runtime.Callers(3, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)

	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

// handleError 处理内部错误（Handler.Handle 失败）。
// 日志子系统失败不扩散：回调 panic 被捕获并计入错误计数。
func (l *xlogger) handleError(err error) {
	if l.errorCount != nil {
		l.errorCount.Add(1)
	}
	if l.onError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && l.errorCount != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

// Debug 记录 Debug 级别日志
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info 记录 Info 级别日志
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn 记录 Warn 级别日志
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error 记录 Error 级别日志
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

// With 返回带额外属性的派生 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{
		handler:    l.handler.WithAttrs(attrs),
		levelVar:   l.levelVar,
		onError:    l.onError,
		errorCount: l.errorCount,
		addSource:  l.addSource,
	}
}

// SetLevel 动态设置日志级别（实现 Leveler 接口）
func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

// GetLevel 获取当前日志级别（实现 Leveler 接口）
func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

// Enabled 检查指定级别是否启用（实现 Leveler 接口）
func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}

// ErrorCount 返回 logger 的内部错误次数（Handler 写入失败等）。
// 非 xlog 构建的 Logger 返回 0。
func ErrorCount(l Logger) uint64 {
	xl, ok := l.(*xlogger)
	if !ok || xl.errorCount == nil {
		return 0
	}
	return xl.errorCount.Load()
}
