package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestCircuitBreaker(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("opens after consecutive failures", func(t *testing.T) {
		now := start
		cb := New(3, 1, time.Minute, func() time.Time { return now })

		for i := 0; i < 3; i++ {
			assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
		}
		assert.Equal(t, StateOpen, cb.State())

		called := false
		err := cb.Execute(func() error { called = true; return nil })
		assert.ErrorIs(t, err, ErrOpen)
		assert.False(t, called)
	})

	t.Run("success resets the failure count", func(t *testing.T) {
		cb := New(2, 1, time.Minute, nil)
		_ = cb.Execute(func() error { return errBoom })
		_ = cb.Execute(func() error { return nil })
		_ = cb.Execute(func() error { return errBoom })
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("half-open trial closes or reopens", func(t *testing.T) {
		now := start
		cb := New(1, 2, time.Minute, func() time.Time { return now })

		var transitions []string
		cb.OnStateChange(func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		})

		_ = cb.Execute(func() error { return errBoom })
		now = now.Add(time.Minute)
		assert.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateHalfOpen, cb.State())
		assert.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())

		_ = cb.Execute(func() error { return errBoom })
		now = now.Add(time.Minute)
		_ = cb.Execute(func() error { return errBoom })
		assert.Equal(t, StateOpen, cb.State())

		assert.Equal(t, []string{
			"closed->open", "open->half-open", "half-open->closed",
			"closed->open", "open->half-open", "half-open->open",
		}, transitions)
	})

	t.Run("cancelled callers are not failures", func(t *testing.T) {
		cb := New(2, 1, time.Minute, nil)
		for i := 0; i < 5; i++ {
			err := cb.Execute(func() error { return fmt.Errorf("redis: %w", context.Canceled) })
			assert.ErrorIs(t, err, context.Canceled)
		}
		assert.Equal(t, StateClosed, cb.State())
		assert.NoError(t, cb.Execute(func() error { return nil }))
	})

	t.Run("cancelled trial frees the half-open slot", func(t *testing.T) {
		now := start
		cb := New(1, 1, time.Minute, func() time.Time { return now })
		_ = cb.Execute(func() error { return errBoom })
		now = now.Add(time.Minute)

		assert.ErrorIs(t, cb.Execute(func() error { return context.Canceled }), context.Canceled)
		assert.Equal(t, StateHalfOpen, cb.State())
		assert.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("half-open admits one trial at a time", func(t *testing.T) {
		var mu sync.Mutex
		now := start
		clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }
		cb := New(1, 1, time.Minute, clock)
		_ = cb.Execute(func() error { return errBoom })
		mu.Lock()
		now = now.Add(time.Minute)
		mu.Unlock()

		gate := make(chan struct{})
		var admitted, rejected atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := cb.Execute(func() error {
					admitted.Add(1)
					<-gate
					return nil
				})
				if errors.Is(err, ErrOpen) {
					rejected.Add(1)
				}
			}()
		}

		assert.Eventually(t, func() bool { return rejected.Load() == 9 }, time.Second, time.Millisecond)
		close(gate)
		wg.Wait()

		assert.Equal(t, int32(1), admitted.Load())
		assert.Equal(t, int32(9), rejected.Load())
		assert.Equal(t, StateClosed, cb.State())
	})
}
