package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认值。
const (
	// DefaultMaxSizeMB 单个日志文件的默认上限（MB）。
	DefaultMaxSizeMB = 100

	// DefaultMaxBackups 默认保留的旧文件数量。
	DefaultMaxBackups = 5

	// DefaultMaxAgeDays 旧文件默认保留天数。
	DefaultMaxAgeDays = 7
)

// ErrEmptyFilename 表示 SetRotation 传入了空文件名。
var ErrEmptyFilename = errors.New("xlog: empty rotation filename")

// RotationOption 配置 lumberjack 轮转参数。
type RotationOption func(*lumberjack.Logger)

// WithMaxSize 设置单个文件大小上限（MB），非正数被忽略。
func WithMaxSize(mb int) RotationOption {
	return func(l *lumberjack.Logger) {
		if mb > 0 {
			l.MaxSize = mb
		}
	}
}

// WithMaxBackups 设置保留的旧文件数量，负数被忽略。
func WithMaxBackups(n int) RotationOption {
	return func(l *lumberjack.Logger) {
		if n >= 0 {
			l.MaxBackups = n
		}
	}
}

// WithCompress 设置是否 gzip 压缩旧文件。
func WithCompress(enable bool) RotationOption {
	return func(l *lumberjack.Logger) {
		l.Compress = enable
	}
}

// Builder 日志配置构建器
//
// Builder 为一次性使用：调用 Build 后不可复用。
type Builder struct {
	output    io.Writer
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	rotator   io.Closer
	onError   func(error)
	err       error
}

// New 创建配置构建器（stderr、Info 级别、text 格式）
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置日志输出目标，nil 被忽略
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.setErr(err)
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json。空值视为 text。
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.setErr(fmt.Errorf("xlog: unknown format %q", format))
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetRotation 将输出切换为按大小轮转的文件。
// 底层使用 lumberjack，文件在首次写入时创建。
func (b *Builder) SetRotation(filename string, opts ...RotationOption) *Builder {
	if strings.TrimSpace(filename) == "" {
		b.setErr(ErrEmptyFilename)
		return b
	}
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rotator)
		}
	}
	b.rotator = rotator
	b.output = rotator
	return b
}

// SetOnError 设置内部错误回调。
// 当 Handler.Handle() 失败时（磁盘满、writer 异常等）调用，回调应保持轻量。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，用于释放资源（如关闭轮转文件），可重复调用
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}

	var handler slog.Handler
	switch b.format {
	case "json":
		handler = slog.NewJSONHandler(b.output, opts)
	default:
		handler = slog.NewTextHandler(b.output, opts)
	}

	logger := &xlogger{
		handler:    handler,
		levelVar:   b.levelVar,
		onError:    b.onError,
		errorCount: new(atomic.Uint64),
		addSource:  b.addSource,
	}

	var once sync.Once
	rotator := b.rotator
	cleanup := func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}

	return logger, cleanup, nil
}
