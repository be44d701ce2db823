package xchmodule

import (
	"context"
	"fmt"

	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
)

// ConfigProvider 能在启动期产出连接配置的对象。
type ConfigProvider interface {
	ClickHouseConfig(ctx context.Context) (xclickhouse.Config, error)
}

// ConfigProviderFunc 将函数适配为 ConfigProvider。
type ConfigProviderFunc func(ctx context.Context) (xclickhouse.Config, error)

// ClickHouseConfig 实现 ConfigProvider。
func (f ConfigProviderFunc) ClickHouseConfig(ctx context.Context) (xclickhouse.Config, error) {
	return f(ctx)
}

// Factory 基于已提供的服务产出连接配置。
type Factory func(ctx context.Context, deps Deps) (xclickhouse.Config, error)

// AsyncOptions 延迟配置的注册参数。
//
// 配置来源按 Factory、Existing、Provider 的顺序取第一个非空值。
type AsyncOptions struct {
	// Name 连接名，空值表示默认连接。
	Name string

	// Factory 以 Inject 声明的服务为输入产出配置。
	Factory Factory

	// Inject Factory 依赖的服务 key，Start 前校验全部存在。
	Inject []string

	// Provider 直接给出的配置提供者。
	Provider ConfigProvider

	// Existing 指向一个已 Provide 且实现 ConfigProvider 的服务。
	Existing string
}

func (o AsyncOptions) hasSource() bool {
	return o.Factory != nil || o.Existing != "" || o.Provider != nil
}

// Deps 是 Factory 可见的服务集合，仅包含 Inject 中声明的 key。
type Deps struct {
	services map[string]any
}

// Get 返回 key 对应的服务。
func (d Deps) Get(key string) (any, bool) {
	v, ok := d.services[key]
	return v, ok
}

// Lookup 返回 key 对应的服务并断言为 T。
func Lookup[T any](deps Deps, key string) (T, error) {
	var zero T
	v, ok := deps.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrMissingDependency, key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("xchmodule: service %q is %T, not %T", key, v, zero)
	}
	return t, nil
}

// registration 单个连接名的注册信息，static 与 async 二选一。
type registration struct {
	name   string
	static *xclickhouse.Config
	async  *AsyncOptions
}

// verify 在拨号前检查声明的依赖是否齐全。
func (r *registration) verify(services map[string]any) error {
	if r.async == nil {
		return nil
	}
	switch {
	case r.async.Factory != nil:
		for _, key := range r.async.Inject {
			if _, ok := services[key]; !ok {
				return fmt.Errorf("%w: connection %q injects %q", ErrMissingDependency, r.name, key)
			}
		}
	case r.async.Existing != "":
		svc, ok := services[r.async.Existing]
		if !ok {
			return fmt.Errorf("%w: connection %q uses existing %q", ErrMissingDependency, r.name, r.async.Existing)
		}
		if _, ok := svc.(ConfigProvider); !ok {
			return fmt.Errorf("%w: connection %q uses existing %q (%T)", ErrInvalidProvider, r.name, r.async.Existing, svc)
		}
	}
	return nil
}

// resolve 得到最终配置。名称为空时继承注册名，不一致时报错。
func (r *registration) resolve(ctx context.Context, services map[string]any) (xclickhouse.Config, error) {
	if r.static != nil {
		cfg := *r.static
		cfg.Name = r.name
		return cfg, nil
	}

	var (
		cfg xclickhouse.Config
		err error
	)
	switch {
	case r.async.Factory != nil:
		deps := Deps{services: make(map[string]any, len(r.async.Inject))}
		for _, key := range r.async.Inject {
			deps.services[key] = services[key]
		}
		cfg, err = r.async.Factory(ctx, deps)
	case r.async.Existing != "":
		cfg, err = services[r.async.Existing].(ConfigProvider).ClickHouseConfig(ctx)
	default:
		cfg, err = r.async.Provider.ClickHouseConfig(ctx)
	}
	if err != nil {
		return xclickhouse.Config{}, fmt.Errorf("%w: connection %q: %w", ErrResolveConfig, r.name, err)
	}

	if cfg.Name == "" {
		cfg.Name = r.name
	}
	if xclickhouse.NormalizeName(cfg.Name) != r.name {
		return xclickhouse.Config{}, fmt.Errorf("%w: registered %q, resolved %q", ErrNameMismatch, r.name, cfg.Name)
	}
	cfg.Name = r.name
	return cfg, nil
}
