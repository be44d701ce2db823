package xchmodule

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
)

// Registry 按 Token 保存已验证的连接。
//
// Start 期间只追加，运行期只读，Shutdown 时封存并清空。并发安全。
type Registry struct {
	mu      sync.RWMutex
	byToken map[string]xclickhouse.ClickHouse
	sealed  bool
}

func newRegistry() *Registry {
	return &Registry{byToken: make(map[string]xclickhouse.ClickHouse)}
}

// Get 返回 name 对应的连接，"" 表示默认连接。
func (r *Registry) Get(name string) (xclickhouse.ClickHouse, bool) {
	return r.ByToken(xclickhouse.Token(name))
}

// MustGet 与 Get 相同，不存在时 panic。
// 用于启动阶段已确定存在的连接。
func (r *Registry) MustGet(name string) xclickhouse.ClickHouse {
	ch, ok := r.Get(name)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrNotFound, xclickhouse.NormalizeName(name)))
	}
	return ch
}

// Conn 返回 name 对应连接的底层 driver.Conn。
func (r *Registry) Conn(name string) (driver.Conn, error) {
	ch, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, xclickhouse.NormalizeName(name))
	}
	return ch.Client(), nil
}

// ByToken 按 xclickhouse.Token 的结果查找。
func (r *Registry) ByToken(token string) (xclickhouse.ClickHouse, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.byToken[token]
	return ch, ok
}

// Names 返回已发布连接的名称，按字典序排列。
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byToken))
	for _, ch := range r.byToken {
		names = append(names, ch.Name())
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Len 返回已发布连接的数量。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken)
}

// publish 发布连接。封存后拒绝发布并返回 false，由调用方关闭该连接。
func (r *Registry) publish(ch xclickhouse.ClickHouse) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return false
	}
	r.byToken[xclickhouse.Token(ch.Name())] = ch
	return true
}

// seal 此后 publish 一律失败。
func (r *Registry) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// take 取出并移除 name 对应的连接。
func (r *Registry) take(name string) (xclickhouse.ClickHouse, bool) {
	token := xclickhouse.Token(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.byToken[token]
	delete(r.byToken, token)
	return ch, ok
}
