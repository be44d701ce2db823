package xclickhouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/xchkit/internal/storageopt"
	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/observability/xmetrics"
	"github.com/omeyang/xchkit/pkg/resilience/xretry"
)

// Connect 建立 cfg 描述的连接，并在返回前用 Ping 验证可达。
//
// 构造或 Ping 失败会关闭半成品连接、记录一条日志，再等待 RetryDelay 重试，
// 最多尝试 RetryAttempts 次。返回的错误：
//   - *ConnectError：次数用尽，errors.Is(err, ErrRetryExhausted) 成立
//   - ErrInvalidConfig：厂商参数不可用（DSN 只解析一次），未发生任何拨号
//   - ctx 被取消：同时包含 ctx.Err() 与最后一次失败原因
//
// 多个 Connect 并发调用互不共享状态。
func Connect(ctx context.Context, cfg Config, opts ...Option) (_ ClickHouse, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	o := applyOptions(opts)
	eff := cfg.Effective()
	log := o.Logger.With(xlog.Component(componentName), xlog.Connection(eff.Name))

	ctx, span := xmetrics.Start(ctx, o.Observer, spanOptions("connect", eff.Name))
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	base, err := eff.ClientOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: connection %q: %w", ErrInvalidConfig, eff.Name, err)
	}

	retryer := xretry.NewRetryer(
		xretry.WithRetryPolicy(xretry.NewFixedRetry(eff.RetryAttempts)),
		xretry.WithBackoffPolicy(xretry.NewFixedBackoff(*eff.RetryDelay)),
	)

	counter := new(storageopt.AttemptCounter)
	attempt := 0
	conn, err := xretry.DoWithResult(ctx, retryer, func(ctx context.Context) (driver.Conn, error) {
		attempt++
		// Open 会填充默认值，每次尝试使用独立副本
		conn, err := dialAndPing(ctx, o, cloneOptions(base))
		counter.Observe(err)
		if err != nil {
			logAttempt(ctx, log, eff, attempt, err)
			return nil, err
		}
		return conn, nil
	})
	if err != nil {
		return nil, connectFailure(ctx, eff.Name, attempt, err)
	}

	w := newWrapper(eff.Name, conn, o, counter)
	log.Info(ctx, "clickhouse connection established", xlog.Attempt(attempt))
	return w, nil
}

// dialAndPing 构造连接并立即 Ping，失败时关闭已构造的连接。
func dialAndPing(ctx context.Context, o *Options, chOpts *clickhouse.Options) (driver.Conn, error) {
	conn, err := o.Dialer(chOpts)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if conn == nil {
		return nil, ErrNilClient
	}

	pingCtx, cancel := storageopt.HealthContext(ctx, o.HealthTimeout)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return conn, nil
}

func logAttempt(ctx context.Context, log xlog.Logger, cfg Config, attempt int, err error) {
	attrs := []slog.Attr{
		xlog.Attempt(attempt),
		xlog.MaxAttempts(cfg.RetryAttempts),
	}
	if cfg.VerboseRetryLog {
		attrs = append(attrs, xlog.Err(err))
		var ex *clickhouse.Exception
		if errors.As(err, &ex) {
			attrs = append(attrs,
				slog.Int("clickhouse_code", int(ex.Code)),
				slog.String("clickhouse_message", ex.Message),
			)
		}
	}
	log.Error(ctx, "clickhouse connection attempt failed", attrs...)
}

func connectFailure(ctx context.Context, name string, attempts int, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("xclickhouse: connection %q aborted after %d attempts: %w", name, attempts, err)
	}
	return &ConnectError{Name: name, Attempts: attempts, Err: err}
}
