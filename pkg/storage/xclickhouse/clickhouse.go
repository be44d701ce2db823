package xclickhouse

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/xchkit/internal/storageopt"
)

// ClickHouse 已验证可达的命名连接。
type ClickHouse interface {
	// Name 返回规范化后的连接名。
	Name() string

	// Client 返回底层连接，用于执行任意查询。
	// 关闭后仍可调用，但底层操作会返回驱动错误。
	Client() driver.Conn

	// Health 通过 Ping 检查连接，关闭后返回 ErrClosed。
	Health(ctx context.Context) error

	// Stats 返回建连与健康检查统计及连接池状态。
	Stats() Stats

	// Close 关闭连接。只有第一次调用会到达驱动，之后返回 ErrClosed。
	Close() error
}

// Stats 连接统计。
type Stats struct {
	// ConnectAttempts 建连尝试次数，New 包装的连接为 0。
	ConnectAttempts int64
	// ConnectFailures 失败的建连尝试次数。
	ConnectFailures int64

	PingCount  int64
	PingErrors int64

	Pool PoolStats
}

// PoolStats 驱动连接池状态。
type PoolStats struct {
	MaxOpen int
	Open    int
	Idle    int
	InUse   int
}

// New 包装一个已建立的连接，不做 Ping 也不重试。
// 用于调用方自行管理建连的场景。
func New(name string, client driver.Conn, opts ...Option) (ClickHouse, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return newWrapper(NormalizeName(name), client, applyOptions(opts), new(storageopt.AttemptCounter)), nil
}
