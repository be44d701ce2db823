package xchmodule

import (
	"github.com/omeyang/xchkit/pkg/lifecycle/xrun"
	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/observability/xmetrics"
	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
)

// Option 配置 Module。
type Option func(*options)

type options struct {
	logger         xlog.Logger
	observer       xmetrics.Observer
	connectOptions []xclickhouse.Option
	runOptions     []xrun.Option
}

func defaultOptions() *options {
	return &options{
		logger:   xlog.Discard(),
		observer: xmetrics.NoopObserver{},
	}
}

// WithLogger 设置日志记录器，同时传给每个连接，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测接口，同时传给每个连接，nil 被忽略。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithConnectOptions 追加传给 xclickhouse.Connect 的选项，
// 排在模块自身的 logger/observer 之后，可覆盖它们。
func WithConnectOptions(opts ...xclickhouse.Option) Option {
	return func(o *options) {
		o.connectOptions = append(o.connectOptions, opts...)
	}
}

// WithRunOptions 追加 Run 使用的 xrun 选项（如自定义信号）。
func WithRunOptions(opts ...xrun.Option) Option {
	return func(o *options) {
		o.runOptions = append(o.runOptions, opts...)
	}
}
