package xclickhouse

import (
	"context"
	"sync/atomic"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/xchkit/internal/storageopt"
	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/observability/xmetrics"
)

const componentName = "xclickhouse"

type clickhouseWrapper struct {
	name    string
	conn    driver.Conn
	options *Options
	logger  xlog.Logger

	closed atomic.Bool

	health   storageopt.HealthCounter
	attempts *storageopt.AttemptCounter
}

func newWrapper(name string, conn driver.Conn, options *Options, attempts *storageopt.AttemptCounter) *clickhouseWrapper {
	return &clickhouseWrapper{
		name:     name,
		conn:     conn,
		options:  options,
		logger:   options.Logger.With(xlog.Component(componentName), xlog.Connection(name)),
		attempts: attempts,
	}
}

func (w *clickhouseWrapper) Name() string {
	return w.name
}

func (w *clickhouseWrapper) Client() driver.Conn {
	return w.conn
}

func (w *clickhouseWrapper) Health(ctx context.Context) (err error) {
	if w.closed.Load() {
		return ErrClosed
	}

	ctx, span := xmetrics.Start(ctx, w.options.Observer, spanOptions("health", w.name))
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	ctx, cancel := storageopt.HealthContext(ctx, w.options.HealthTimeout)
	defer cancel()

	err = w.conn.Ping(ctx)
	w.health.Observe(err)
	return err
}

func (w *clickhouseWrapper) Stats() Stats {
	ds := w.conn.Stats()
	return Stats{
		ConnectAttempts: w.attempts.Attempts(),
		ConnectFailures: w.attempts.Failures(),
		PingCount:       w.health.PingCount(),
		PingErrors:      w.health.PingErrors(),
		Pool: PoolStats{
			MaxOpen: ds.MaxOpenConns,
			Open:    ds.Open,
			Idle:    ds.Idle,
			InUse:   ds.Open - ds.Idle,
		},
	}
}

func (w *clickhouseWrapper) Close() (err error) {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	ctx, span := xmetrics.Start(context.Background(), w.options.Observer, spanOptions("close", w.name))
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	if err = w.conn.Close(); err != nil {
		w.logger.Warn(ctx, "clickhouse driver close failed", xlog.Err(err))
	}
	return err
}

func spanOptions(operation, name string) xmetrics.SpanOptions {
	return xmetrics.SpanOptions{
		Component: componentName,
		Operation: operation,
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("db.system", "clickhouse"),
			xmetrics.String("db.connection", name),
		},
	}
}
