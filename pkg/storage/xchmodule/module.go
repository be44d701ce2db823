package xchmodule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xchkit/pkg/lifecycle/xrun"
	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/observability/xmetrics"
	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
)

const componentName = "xchmodule"

// Module 持有全部连接注册、可注入服务与运行期 Registry。
//
// 注册方法可并发调用；Start 与 Shutdown 各只生效一次。
type Module struct {
	opts   *options
	logger xlog.Logger

	mu       sync.Mutex
	regs     []*registration
	byName   map[string]struct{}
	services map[string]any
	started  bool

	// startCancel 与 startDone 在 Start 运行期间有效，供 Shutdown 中止并等待
	startCancel context.CancelFunc
	startDone   chan struct{}

	registry     *Registry
	shutdownOnce sync.Once
	shutdownErr  error
}

// New 创建空模块。
func New(opts ...Option) *Module {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &Module{
		opts:     o,
		logger:   o.logger.With(xlog.Component(componentName)),
		byName:   make(map[string]struct{}),
		services: make(map[string]any),
		registry: newRegistry(),
	}
}

// Registry 返回运行期查找表。Start 之前为空。
func (m *Module) Registry() *Registry {
	return m.registry
}

// Register 以静态配置注册一个连接。
func (m *Module) Register(cfg xclickhouse.Config) error {
	name := xclickhouse.NormalizeName(cfg.Name)
	return m.add(&registration{name: name, static: &cfg})
}

// RegisterAsync 以延迟配置注册一个连接，配置在 Start 时求值。
// 未提供任何配置来源时立即返回 ErrNoConfigSource。
func (m *Module) RegisterAsync(opts AsyncOptions) error {
	name := xclickhouse.NormalizeName(opts.Name)
	if !opts.hasSource() {
		return fmt.Errorf("%w: connection %q", ErrNoConfigSource, name)
	}
	opts.Inject = append([]string(nil), opts.Inject...)
	return m.add(&registration{name: name, async: &opts})
}

func (m *Module) add(reg *registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrStarted
	}
	if _, ok := m.byName[reg.name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, reg.name)
	}
	m.byName[reg.name] = struct{}{}
	m.regs = append(m.regs, reg)
	return nil
}

// Provide 注册一个可供延迟配置使用的服务。
func (m *Module) Provide(key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrStarted
	}
	if _, ok := m.services[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateService, key)
	}
	m.services[key] = value
	return nil
}

// Start 建立全部已注册连接。
//
// 依赖缺失在任何拨号之前报告。之后每个名称在独立 goroutine 中解析配置并
// 调用 xclickhouse.Connect，彼此不共享取消；成功的连接发布到 Registry。
// 返回所有名称致命错误的 errors.Join，调用方应中止启动并执行 Shutdown。
func (m *Module) Start(ctx context.Context) (err error) {
	if ctx == nil {
		return xclickhouse.ErrNilContext
	}
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrStarted
	}
	m.started = true
	regs := m.regs
	services := m.services
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.startCancel, m.startDone = cancel, done
	m.mu.Unlock()
	defer close(done)
	defer cancel()

	ctx, span := xmetrics.Start(ctx, m.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "start",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{xmetrics.Int("connections", len(regs))},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	var wiring []error
	for _, reg := range regs {
		if err := reg.verify(services); err != nil {
			wiring = append(wiring, err)
		}
	}
	if len(wiring) > 0 {
		err = errors.Join(wiring...)
		m.logger.Error(ctx, "clickhouse module wiring failed", xlog.Err(err))
		return err
	}

	start := time.Now()
	var (
		g      errgroup.Group
		faults = make([]error, len(regs))
	)
	for i, reg := range regs {
		g.Go(func() error {
			faults[i] = m.startOne(ctx, reg, services)
			return nil
		})
	}
	_ = g.Wait()

	if err = errors.Join(faults...); err != nil {
		return err
	}
	m.logger.Info(ctx, "clickhouse connections ready",
		slog.Int("connections", len(regs)), xlog.Duration(time.Since(start)))
	return nil
}

func (m *Module) startOne(ctx context.Context, reg *registration, services map[string]any) error {
	log := m.logger.With(xlog.Connection(reg.name))

	cfg, err := reg.resolve(ctx, services)
	if err != nil {
		log.Error(ctx, "clickhouse config resolution failed", xlog.Err(err))
		return err
	}

	opts := append([]xclickhouse.Option{
		xclickhouse.WithLogger(m.opts.logger),
		xclickhouse.WithObserver(m.opts.observer),
	}, m.opts.connectOptions...)
	ch, err := xclickhouse.Connect(ctx, cfg, opts...)
	if err != nil {
		log.Error(ctx, "clickhouse connection failed", xlog.Err(err))
		return fmt.Errorf("xchmodule: connection %q: %w", reg.name, err)
	}
	if !m.registry.publish(ch) {
		// Shutdown 已完成清空，迟到的连接由这里负责关闭
		if cerr := ch.Close(); cerr != nil {
			log.Error(ctx, "clickhouse connection close failed", xlog.Err(cerr))
		} else {
			log.Warn(ctx, "clickhouse connection closed after shutdown")
		}
		return fmt.Errorf("%w: connection %q", ErrShutdown, reg.name)
	}
	return nil
}

// Shutdown 关闭每个注册名称对应的连接。
//
// 正在运行的 Start 会被取消，Shutdown 在 ctx 允许的时间内等待它返回；
// 此后才建立的连接不再发布，由 Start 就地关闭。
// 从未建立的连接直接跳过；关闭在各名称间并发进行，失败只记录并汇总返回，
// 不影响其他连接。调用方应将返回的错误视为非致命。重复调用返回首次的结果。
func (m *Module) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m.shutdownOnce.Do(func() {
		m.mu.Lock()
		m.started = true
		regs := m.regs
		cancel, done := m.startCancel, m.startDone
		m.mu.Unlock()

		m.registry.seal()
		var waitErr error
		if cancel != nil {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				waitErr = fmt.Errorf("xchmodule: waiting for start: %w", ctx.Err())
				m.logger.Warn(ctx, "clickhouse start still running at shutdown", xlog.Err(waitErr))
			}
		}
		m.shutdownErr = errors.Join(waitErr, m.closeAll(ctx, regs))
	})
	return m.shutdownErr
}

func (m *Module) closeAll(ctx context.Context, regs []*registration) (err error) {
	ctx, span := xmetrics.Start(ctx, m.opts.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: "shutdown",
		Kind:      xmetrics.KindInternal,
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	var (
		g      errgroup.Group
		faults = make([]error, len(regs))
	)
	for i, reg := range regs {
		g.Go(func() error {
			ch, ok := m.registry.take(reg.name)
			if !ok {
				return nil
			}
			log := m.logger.With(xlog.Connection(reg.name))
			if cerr := ch.Close(); cerr != nil {
				log.Error(ctx, "clickhouse connection close failed", xlog.Err(cerr))
				faults[i] = fmt.Errorf("xchmodule: close %q: %w", reg.name, cerr)
				return nil
			}
			log.Info(ctx, "clickhouse connection closed")
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(faults...)
}

// Run 依次执行 Start、运行 services 直到信号或出错、Shutdown。
//
// Shutdown 总会执行，包括 Start 部分失败时；其错误只记录不返回。
// Start 失败时不运行 services，直接返回启动错误。
func (m *Module) Run(ctx context.Context, services ...xrun.Service) error {
	if ctx == nil {
		return xclickhouse.ErrNilContext
	}
	defer func() {
		if err := m.Shutdown(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn(ctx, "clickhouse shutdown finished with errors", xlog.Err(err))
		}
	}()

	if err := m.Start(ctx); err != nil {
		return err
	}

	opts := append([]xrun.Option{
		xrun.WithName(componentName),
		xrun.WithLogger(m.opts.logger),
	}, m.opts.runOptions...)
	return xrun.RunServicesWithOptions(ctx, opts, services...)
}
