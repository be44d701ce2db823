package xchmodule

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ClickHouse/clickhouse-go/v2/lib/proto"

	"github.com/omeyang/xchkit/pkg/observability/xlog"
	"github.com/omeyang/xchkit/pkg/storage/xclickhouse"
)

var errRefused = errors.New("dial tcp: connect: connection refused")

// mockConn 实现 driver.Conn，只模拟 Ping/Stats/Close。
type mockConn struct {
	mu         sync.Mutex
	pingErr    error
	closeErr   error
	closeCount int
}

func (m *mockConn) Contributors() []string { return nil }

func (m *mockConn) ServerVersion() (*proto.ServerHandshake, error) {
	return &proto.ServerHandshake{}, nil
}

func (m *mockConn) Select(context.Context, any, string, ...any) error { return nil }

func (m *mockConn) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (m *mockConn) QueryRow(context.Context, string, ...any) driver.Row { return nil }

func (m *mockConn) PrepareBatch(context.Context, string, ...driver.PrepareBatchOption) (driver.Batch, error) {
	return nil, errors.New("batch not implemented")
}

func (m *mockConn) Exec(context.Context, string, ...any) error { return nil }

func (m *mockConn) AsyncInsert(context.Context, string, bool, ...any) error { return nil }

func (m *mockConn) Ping(context.Context) error { return m.pingErr }

func (m *mockConn) Stats() driver.Stats { return driver.Stats{} }

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount++
	return m.closeErr
}

func (m *mockConn) closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// fakeCluster 按地址模拟服务端：down 中的地址 Ping 总是失败。
type fakeCluster struct {
	mu       sync.Mutex
	down     map[string]bool
	closeErr map[string]error
	conns    map[string][]*mockConn
	onDial   func(addr string)
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{
		down:     map[string]bool{},
		closeErr: map[string]error{},
		conns:    map[string][]*mockConn{},
	}
}

func (c *fakeCluster) Dial(opts *clickhouse.Options) (driver.Conn, error) {
	addr := opts.Addr[0]
	c.mu.Lock()
	conn := &mockConn{closeErr: c.closeErr[addr]}
	if c.down[addr] {
		conn.pingErr = errRefused
	}
	c.conns[addr] = append(c.conns[addr], conn)
	onDial := c.onDial
	c.mu.Unlock()
	if onDial != nil {
		onDial(addr)
	}
	return conn, nil
}

func (c *fakeCluster) dials(addr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns[addr])
}

func (c *fakeCluster) last(addr string) *mockConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	conns := c.conns[addr]
	if len(conns) == 0 {
		return nil
	}
	return conns[len(conns)-1]
}

// conf 返回指向 addr 的连接配置，重试间隔为 0。
func conf(name, addr string) xclickhouse.Config {
	return xclickhouse.Config{
		Name:          name,
		Options:       &clickhouse.Options{Addr: []string{addr}},
		RetryAttempts: 3,
		RetryDelay:    xclickhouse.Delay(0),
	}
}

// recordingLogger 记录所有日志，派生 logger 共享同一份记录。
type recordingLogger struct {
	mu      *sync.Mutex
	records *[]logRecord
	attrs   []slog.Attr
}

type logRecord struct {
	level string
	msg   string
	attrs map[string]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, records: &[]logRecord{}}
}

func (l *recordingLogger) add(level, msg string, attrs []slog.Attr) {
	r := logRecord{level: level, msg: msg, attrs: map[string]string{}}
	for _, a := range append(append([]slog.Attr{}, l.attrs...), attrs...) {
		if a.Key != "" {
			r.attrs[a.Key] = a.Value.String()
		}
	}
	l.mu.Lock()
	*l.records = append(*l.records, r)
	l.mu.Unlock()
}

func (l *recordingLogger) Debug(_ context.Context, msg string, attrs ...slog.Attr) {
	l.add("debug", msg, attrs)
}

func (l *recordingLogger) Info(_ context.Context, msg string, attrs ...slog.Attr) {
	l.add("info", msg, attrs)
}

func (l *recordingLogger) Warn(_ context.Context, msg string, attrs ...slog.Attr) {
	l.add("warn", msg, attrs)
}

func (l *recordingLogger) Error(_ context.Context, msg string, attrs ...slog.Attr) {
	l.add("error", msg, attrs)
}

func (l *recordingLogger) With(attrs ...slog.Attr) xlog.Logger {
	return &recordingLogger{
		mu:      l.mu,
		records: l.records,
		attrs:   append(append([]slog.Attr{}, l.attrs...), attrs...),
	}
}

// messages 返回 msg 匹配的记录。
func (l *recordingLogger) messages(msg string) []logRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logRecord
	for _, r := range *l.records {
		if r.msg == msg {
			out = append(out, r)
		}
	}
	return out
}
