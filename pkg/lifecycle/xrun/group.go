package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xchkit/pkg/observability/xlog"
)

// Group 并发运行多个服务，任一服务出错即取消其余服务。
//
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 context 在任一服务出错或 Cancel 时取消。
// nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 在新 goroutine 中运行 fn，fn 应监听 ctx.Done()。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，额外记录服务的启停日志。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		log := g.opts.logger.With(
			slog.String("group", g.opts.name),
			slog.String("service", name),
		)
		log.Debug(g.ctx, "service starting")
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn(g.ctx, "service exited with error", xlog.Err(err))
		} else {
			log.Debug(g.ctx, "service stopped")
		}
		return err
	})
}

// Wait 等待全部服务结束并返回退出原因。
//
// 由 Cancel(cause) 或信号触发的退出返回该 cause；没有显式 cause 的
// 取消返回 nil；服务自身返回的 context.Canceled 原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.opts.logger.Debug(context.Background(), "all services stopped",
		slog.String("group", g.opts.name))

	canceled := g.causeCtx.Err() != nil
	switch {
	case errors.Is(err, context.Canceled) && canceled:
		return g.explicitCause()
	case err == nil && canceled:
		return g.explicitCause()
	}
	return err
}

// explicitCause 返回 Cancel 设置的非 Canceled 原因，没有则返回 nil。
func (g *Group) explicitCause() error {
	cause := context.Cause(g.causeCtx)
	if cause == nil || errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

// Cancel 以 cause 为原因取消所有服务，Wait 会返回该 cause。
// cause 不应包装 context.Canceled，否则会被当作普通取消过滤。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Service 是可由 RunServices 管理的长期运行组件。
type Service interface {
	// Run 阻塞直到 ctx 取消或出错。
	Run(ctx context.Context) error
}

// ServiceFunc 将普通函数适配为 Service。
type ServiceFunc func(ctx context.Context) error

// Run 实现 Service。
func (f ServiceFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// RunServices 使用默认选项运行 services，见 RunServicesWithOptions。
func RunServices(ctx context.Context, services ...Service) error {
	return RunServicesWithOptions(ctx, nil, services...)
}

// RunServicesWithOptions 运行 services 并监听系统信号。
//
// 收到信号时取消所有服务并返回 *SignalError。全部服务正常返回后
// Group 随之结束；没有服务时阻塞到信号或 ctx 取消。
func RunServicesWithOptions(ctx context.Context, opts []Option, services ...Service) error {
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignalHandler {
		g.Go(g.watchSignals)
	}

	var remaining atomic.Int64
	remaining.Store(int64(len(services)))
	for i, svc := range services {
		if svc == nil {
			g.Go(func(context.Context) error { return ErrNilService })
			continue
		}
		g.GoWithName(serviceName(i), func(ctx context.Context) error {
			err := svc.Run(ctx)
			// 出错时由 errgroup 负责取消，保证该错误先被记录
			if remaining.Add(-1) == 0 && err == nil {
				g.cancel(nil)
			}
			return err
		})
	}
	return g.Wait()
}

func (g *Group) watchSignals(ctx context.Context) error {
	signals := g.opts.signals
	// signal.Notify 不带信号会订阅全部信号
	if len(signals) == 0 {
		signals = DefaultSignals()
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	var sig os.Signal
	select {
	case sig = <-testSigChan(ctx):
	case sig = <-sigCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.opts.logger.Info(ctx, "received signal",
		slog.String("group", g.opts.name),
		slog.String("signal", sig.String()))
	g.cancel(&SignalError{Signal: sig})
	return nil
}

func serviceName(i int) string {
	return "service-" + strconv.Itoa(i)
}
