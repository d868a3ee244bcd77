// File: internal/browser/wait_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFor(t *testing.T) {
	t.Run("returns immediately when the condition already holds", func(t *testing.T) {
		start := time.Now()
		err := waitFor(context.Background(), 500*time.Millisecond, 50*time.Millisecond,
			func(context.Context) (bool, error) { return true, nil })
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("succeeds once the condition starts holding", func(t *testing.T) {
		calls := 0
		err := waitFor(context.Background(), time.Second, 10*time.Millisecond,
			func(context.Context) (bool, error) {
				calls++
				return calls >= 3, nil
			})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("waits at least the timeout and less than timeout plus two intervals", func(t *testing.T) {
		timeout := 200 * time.Millisecond
		interval := 50 * time.Millisecond

		start := time.Now()
		err := waitFor(context.Background(), timeout, interval,
			func(context.Context) (bool, error) { return false, nil })
		elapsed := time.Since(start)

		require.ErrorIs(t, err, errWaitTimeout)
		assert.GreaterOrEqual(t, elapsed, timeout)
		assert.Less(t, elapsed, timeout+2*interval)
	})

	t.Run("propagates check errors unchanged", func(t *testing.T) {
		boom := errors.New("probe exploded")
		err := waitFor(context.Background(), time.Second, 10*time.Millisecond,
			func(context.Context) (bool, error) { return false, boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("honors context cancellation between polls", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(30 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := waitFor(ctx, 5*time.Second, 100*time.Millisecond,
			func(context.Context) (bool, error) { return false, nil })
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
