package xclickhouse

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ClickHouse/clickhouse-go/v2/lib/proto"

	"github.com/omeyang/xchkit/pkg/observability/xlog"
)

var errPing = errors.New("dial tcp 127.0.0.1:9000: connect: connection refused")

// mockConn 实现 driver.Conn，只模拟 Ping/Stats/Close。
type mockConn struct {
	mu         sync.Mutex
	pingErr    error
	pingCount  int
	closeErr   error
	closeCount int
	stats      driver.Stats
}

func (m *mockConn) Contributors() []string { return []string{"test"} }

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

func (m *mockConn) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingCount++
	return m.pingErr
}

func (m *mockConn) Stats() driver.Stats { return m.stats }

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

// scriptedDialer 前 failures 次构造的连接 Ping 失败，always 为 true 时全部失败。
type scriptedDialer struct {
	mu       sync.Mutex
	failures int
	always   bool
	pingErr  error
	openErr  error
	conns    []*mockConn
	lastOpts *clickhouse.Options
}

func (d *scriptedDialer) Dial(opts *clickhouse.Options) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastOpts = opts
	if d.openErr != nil {
		d.conns = append(d.conns, nil)
		return nil, d.openErr
	}
	c := &mockConn{}
	if d.always || len(d.conns) < d.failures {
		c.pingErr = d.pingErr
		if c.pingErr == nil {
			c.pingErr = errPing
		}
	}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *scriptedDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// logRecord 是 recordingLogger 捕获的一条日志。
type logRecord struct {
	level string
	msg   string
	attrs map[string]slog.Value
}

// recordingLogger 记录所有日志，派生 logger 共享同一份记录。
type recordingLogger struct {
	mu      *sync.Mutex
	records *[]logRecord
	attrs   []slog.Attr
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, records: &[]logRecord{}}
}

func (l *recordingLogger) add(level, msg string, attrs []slog.Attr) {
	r := logRecord{level: level, msg: msg, attrs: map[string]slog.Value{}}
	for _, a := range append(append([]slog.Attr{}, l.attrs...), attrs...) {
		if a.Key != "" {
			r.attrs[a.Key] = a.Value
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

func (l *recordingLogger) byLevel(level string) []logRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logRecord
	for _, r := range *l.records {
		if r.level == level {
			out = append(out, r)
		}
	}
	return out
}
