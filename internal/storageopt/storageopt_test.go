package storageopt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthContext(t *testing.T) {
	ctx, cancel := HealthContext(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx, cancel = HealthContext(context.Background(), time.Second)
	defer cancel()
	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
}

func TestHealthCounter(t *testing.T) {
	var h HealthCounter
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				h.Observe(errors.New("down"))
				return
			}
			h.Observe(nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), h.PingCount())
	assert.Equal(t, int64(5), h.PingErrors())
}

func TestAttemptCounter(t *testing.T) {
	var a AttemptCounter
	a.Observe(errors.New("refused"))
	a.Observe(errors.New("refused"))
	a.Observe(nil)

	assert.Equal(t, int64(3), a.Attempts())
	assert.Equal(t, int64(2), a.Failures())
}
