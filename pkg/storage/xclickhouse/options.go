package xclickhouse

import (
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/xchkit/internal/storageopt"
	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/observability/xmetrics"
)

// Dialer 根据厂商参数构造连接，默认 clickhouse.Open。
// 构造成功不代表可达，Connect 随后会 Ping。
type Dialer func(opts *clickhouse.Options) (driver.Conn, error)

// Options 建连与包装器的选项。
type Options struct {
	// Logger 记录重试与关闭事件，默认丢弃。
	Logger xlog.Logger

	// Observer 统一观测接口，默认 NoopObserver。
	Observer xmetrics.Observer

	// HealthTimeout 单次 Ping 的超时，建连验证与 Health 共用。
	HealthTimeout time.Duration

	// Dialer 连接构造函数。
	Dialer Dialer
}

// Option 配置 Options。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Logger:        xlog.Discard(),
		Observer:      xmetrics.NoopObserver{},
		HealthTimeout: storageopt.DefaultHealthTimeout,
		Dialer:        clickhouse.Open,
	}
}

func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLogger 设置日志记录器，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithObserver 设置统一观测接口，nil 被忽略。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *Options) {
		if observer != nil {
			o.Observer = observer
		}
	}
}

// WithHealthTimeout 设置 Ping 超时，非正数被忽略。
func WithHealthTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.HealthTimeout = timeout
		}
	}
}

// WithDialer 替换连接构造函数，nil 被忽略。
func WithDialer(d Dialer) Option {
	return func(o *Options) {
		if d != nil {
			o.Dialer = d
		}
	}
}
