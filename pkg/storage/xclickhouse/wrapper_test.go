package xclickhouse

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xchkit/pkg/observability/xmetrics"
)

func TestNew_NilClient(t *testing.T) {
	_, err := New("logs", nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestWrapper_Health(t *testing.T) {
	conn := &mockConn{}
	ch, err := New("", conn)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, ch.Name())
	assert.Same(t, conn, ch.Client())

	require.NoError(t, ch.Health(context.Background()))
	conn.pingErr = errPing
	assert.ErrorIs(t, ch.Health(context.Background()), errPing)

	stats := ch.Stats()
	assert.Equal(t, int64(2), stats.PingCount)
	assert.Equal(t, int64(1), stats.PingErrors)
	assert.Zero(t, stats.ConnectAttempts)
}

func TestWrapper_CloseOnce(t *testing.T) {
	conn := &mockConn{}
	ch, err := New("logs", conn)
	require.NoError(t, err)

	require.NoError(t, ch.Close())
	assert.ErrorIs(t, ch.Close(), ErrClosed)
	assert.ErrorIs(t, ch.Health(context.Background()), ErrClosed)
	assert.Equal(t, 1, conn.closes())
}

func TestWrapper_CloseError(t *testing.T) {
	closeErr := errors.New("close failed")
	log := newRecordingLogger()
	ch, err := New("logs", &mockConn{closeErr: closeErr}, WithLogger(log))
	require.NoError(t, err)

	assert.ErrorIs(t, ch.Close(), closeErr)
	warns := log.byLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, "logs", warns[0].attrs["connection"].String())
}

func TestWrapper_PoolStats(t *testing.T) {
	ch, err := New("logs", &mockConn{stats: driver.Stats{MaxOpenConns: 10, Open: 4, Idle: 1}})
	require.NoError(t, err)

	pool := ch.Stats().Pool
	assert.Equal(t, PoolStats{MaxOpen: 10, Open: 4, Idle: 1, InUse: 3}, pool)
}

// recordingObserver 记录跨度的开始与结束。
type recordingObserver struct {
	started []xmetrics.SpanOptions
	ended   []xmetrics.Result
}

func (o *recordingObserver) Start(ctx context.Context, opts xmetrics.SpanOptions) (context.Context, xmetrics.Span) {
	o.started = append(o.started, opts)
	return ctx, spanFunc(func(r xmetrics.Result) { o.ended = append(o.ended, r) })
}

type spanFunc func(xmetrics.Result)

func (f spanFunc) End(r xmetrics.Result) { f(r) }

func TestWrapper_Observed(t *testing.T) {
	obs := &recordingObserver{}
	dialer := &scriptedDialer{always: true}

	_, err := Connect(context.Background(), Config{
		Name: "logs", DSN: "clickhouse://127.0.0.1:9000", RetryAttempts: 1,
	}, WithDialer(dialer.Dial), WithObserver(obs))
	require.Error(t, err)

	require.Len(t, obs.started, 1)
	assert.Equal(t, "xclickhouse", obs.started[0].Component)
	assert.Equal(t, "connect", obs.started[0].Operation)
	assert.Contains(t, obs.started[0].Attrs, xmetrics.String("db.connection", "logs"))
	require.Len(t, obs.ended, 1)
	assert.ErrorIs(t, obs.ended[0].Err, ErrRetryExhausted)
}
