package xclickhouse

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const (
	// DefaultRetryAttempts 默认总尝试次数（含首次）。
	DefaultRetryAttempts = 10

	// DefaultRetryDelay 默认重试间隔。
	DefaultRetryDelay = 3000 * time.Millisecond
)

// Config 单个命名连接的配置。
//
// Options 与 DSN 是厂商参数的两种来源，原样交给 clickhouse-go；
// 其余字段只控制命名与启动期重试。
type Config struct {
	// Name 连接名，空值表示 DefaultName。
	Name string

	// Options 厂商连接参数，优先于 DSN。
	Options *clickhouse.Options

	// DSN Options 为空时使用，由 clickhouse.ParseDSN 解析。
	DSN string

	// RetryAttempts 总尝试次数（含首次），<= 0 使用 DefaultRetryAttempts。
	RetryAttempts int

	// RetryDelay 两次尝试间的等待。nil 使用 DefaultRetryDelay，显式 0 表示不等待。
	RetryDelay *time.Duration

	// VerboseRetryLog 为 true 时重试日志附带失败原因。
	VerboseRetryLog bool
}

// Delay 返回 d 的指针，便于在字面量中设置 RetryDelay。
func Delay(d time.Duration) *time.Duration {
	return &d
}

// Effective 返回补齐默认值后的副本，不修改 c。
func (c *Config) Effective() Config {
	eff := *c
	eff.Name = NormalizeName(c.Name)
	if eff.RetryAttempts <= 0 {
		eff.RetryAttempts = DefaultRetryAttempts
	}
	delay := DefaultRetryDelay
	if c.RetryDelay != nil {
		delay = max(*c.RetryDelay, 0)
	}
	eff.RetryDelay = &delay
	return eff
}

// ClientOptions 返回仅含厂商参数的 clickhouse.Options。
//
// 返回值总是新对象：Options 会被复制（含 Addr 与 Settings），
// 因此 clickhouse.Open 对其做的默认值填充不会影响调用方。
func (c Config) ClientOptions() (*clickhouse.Options, error) {
	if c.Options != nil {
		return cloneOptions(c.Options), nil
	}
	if c.DSN == "" {
		return nil, ErrNoClientOptions
	}
	o, err := clickhouse.ParseDSN(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	return o, nil
}

// cloneOptions 浅拷贝 Options，并复制 Open 可能改写的 Addr 与 Settings。
func cloneOptions(src *clickhouse.Options) *clickhouse.Options {
	o := *src
	o.Addr = slices.Clone(src.Addr)
	o.Settings = maps.Clone(src.Settings)
	return &o
}
