package xrun

import (
	"os"

	"github.com/omeyang/xchkit/pkg/observability/xlog"
)

// Option 配置 Group。
type Option func(*groupOptions)

type groupOptions struct {
	logger          xlog.Logger
	name            string
	signals         []os.Signal
	noSignalHandler bool
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		logger: xlog.Discard(),
		name:   "xrun",
	}
}

// WithLogger 设置生命周期事件的日志记录器，nil 被忽略。
// 默认丢弃所有输出。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 Group 名称，出现在日志的 group 字段中，空字符串被忽略。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖默认监听的信号列表。
func WithSignals(signals []os.Signal) Option {
	// 创建时拷贝，调用方后续修改切片不影响配置
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 禁用信号监听，由调用方自行管理退出。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
