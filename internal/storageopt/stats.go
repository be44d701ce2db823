package storageopt

import "sync/atomic"

// HealthCounter 记录 ping 次数与失败次数，零值可用。
type HealthCounter struct {
	pings      atomic.Int64
	pingErrors atomic.Int64
}

// Observe 记录一次 ping 结果。
func (h *HealthCounter) Observe(err error) {
	h.pings.Add(1)
	if err != nil {
		h.pingErrors.Add(1)
	}
}

func (h *HealthCounter) PingCount() int64  { return h.pings.Load() }
func (h *HealthCounter) PingErrors() int64 { return h.pingErrors.Load() }

// AttemptCounter 记录建连尝试次数与失败次数，零值可用。
type AttemptCounter struct {
	attempts atomic.Int64
	failures atomic.Int64
}

// Observe 记录一次建连尝试的结果。
func (a *AttemptCounter) Observe(err error) {
	a.attempts.Add(1)
	if err != nil {
		a.failures.Add(1)
	}
}

func (a *AttemptCounter) Attempts() int64 { return a.attempts.Load() }
func (a *AttemptCounter) Failures() int64 { return a.failures.Load() }
