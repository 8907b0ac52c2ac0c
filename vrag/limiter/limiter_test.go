package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// overlapTracker records the highest number of simultaneously active calls.
type overlapTracker struct {
	active *atomic.Int64
	peak   *atomic.Int64
}

func newOverlapTracker() *overlapTracker {
	return &overlapTracker{active: atomic.NewInt64(0), peak: atomic.NewInt64(0)}
}

func (p *overlapTracker) enter() {
	n := p.active.Inc()
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			return
		}
	}
}

func (p *overlapTracker) exit() { p.active.Dec() }

func TestNew_RejectsInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		l, err := New(size)
		assert.ErrorIs(t, err, ErrInvalidSize)
		assert.Nil(t, l)
	}
}

func TestWrap_BoundsConcurrentCalls(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("max_%d", n), func(t *testing.T) {
			l, err := New(n)
			require.NoError(t, err)

			probe := newOverlapTracker()
			wrapped := Wrap(l, func(ctx context.Context, i int) (int, error) {
				probe.enter()
				defer probe.exit()
				assert.LessOrEqual(t, l.InFlight(), n)
				time.Sleep(2 * time.Millisecond)
				return i * 2, nil
			})

			const calls = 40
			var wg sync.WaitGroup
			results := make([]int, calls)
			for i := 0; i < calls; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					out, err := wrapped(context.Background(), i)
					assert.NoError(t, err)
					results[i] = out
				}(i)
			}
			wg.Wait()

			assert.LessOrEqual(t, probe.peak.Load(), int64(n))
			assert.Equal(t, 0, l.InFlight())
			for i, r := range results {
				assert.Equal(t, i*2, r)
			}
		})
	}
}

func TestWrap_ReleasesSlotOnError(t *testing.T) {
	l, err := New(3)
	require.NoError(t, err)

	boom := errors.New("boom")
	wrapped := Wrap(l, func(ctx context.Context, _ struct{}) (string, error) {
		time.Sleep(time.Millisecond)
		return "", boom
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := wrapped(context.Background(), struct{}{})
			assert.ErrorIs(t, err, boom)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, l.InFlight())

	// All slots are still usable.
	for i := 0; i < 3; i++ {
		_, err := l.Acquire(context.Background(), "")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, l.InFlight())
}

func TestWrap_ReleasesSlotOnPanic(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)

	wrapped := Wrap(l, func(ctx context.Context, _ int) (int, error) {
		panic("wrapped call exploded")
	})

	assert.Panics(t, func() { _, _ = wrapped(context.Background(), 0) })
	assert.Equal(t, 0, l.InFlight())
}

func TestWrap_SequentialCallsNeverOverlap(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)

	var mu sync.Mutex
	var intervals [][2]time.Time
	wrapped := Wrap(l, func(ctx context.Context, _ int) (int, error) {
		start := time.Now()
		time.Sleep(time.Millisecond)
		mu.Lock()
		intervals = append(intervals, [2]time.Time{start, time.Now()})
		mu.Unlock()
		return 0, nil
	})

	_, err = wrapped(context.Background(), 1)
	require.NoError(t, err)
	_, err = wrapped(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, intervals, 2)
	assert.False(t, intervals[1][0].Before(intervals[0][1]))
}

func TestAcquire_CancelledWaiterDoesNotLeak(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)

	release, err := l.Acquire(context.Background(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, l.InFlight())

	release()
	release() // idempotent
	assert.Equal(t, 0, l.InFlight())

	release2, err := l.Acquire(context.Background(), "")
	require.NoError(t, err)
	release2()
}

func TestWrap_CancelledBeforeSlotSkipsCall(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)

	hold, err := l.Acquire(context.Background(), "")
	require.NoError(t, err)
	defer hold()

	called := atomic.NewBool(false)
	wrapped := Wrap(l, func(ctx context.Context, _ int) (int, error) {
		called.Store(true)
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = wrapped(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called.Load())
}

func TestWrap_CancelledDuringCallReleasesSlot(t *testing.T) {
	l, err := New(1)
	require.NoError(t, err)

	started := make(chan struct{})
	wrapped := Wrap(l, func(ctx context.Context, _ int) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := wrapped(ctx, 0)
		done <- err
	}()

	<-started
	assert.Equal(t, 1, l.InFlight())
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("wrapped call did not return after cancellation")
	}
	assert.Equal(t, 0, l.InFlight())

	// The slot is free for the next caller
	release, err := l.Acquire(context.Background(), "")
	require.NoError(t, err)
	release()
}

func TestLimitAsyncFuncCall(t *testing.T) {
	fn, l, err := LimitAsyncFuncCall(2, func(ctx context.Context, s string) (int, error) {
		return len(s), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, l.MaxSize())

	n, err := fn(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, _, err = LimitAsyncFuncCall(0, func(ctx context.Context, s string) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMap_KeepsOrderAndBound(t *testing.T) {
	l, err := New(3)
	require.NoError(t, err)

	probe := newOverlapTracker()
	fn := Wrap(l, func(ctx context.Context, s string) (string, error) {
		probe.enter()
		defer probe.exit()
		time.Sleep(time.Millisecond)
		return s + "!", nil
	})

	inputs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	out, err := Map(context.Background(), fn, inputs)
	require.NoError(t, err)

	assert.Equal(t, []string{"a!", "b!", "c!", "d!", "e!", "f!", "g!", "h!"}, out)
	assert.LessOrEqual(t, probe.peak.Load(), int64(3))
	assert.Equal(t, 0, l.InFlight())
}

func TestMap_CollectsErrors(t *testing.T) {
	l, err := New(2)
	require.NoError(t, err)

	bad := errors.New("odd input")
	fn := Wrap(l, func(ctx context.Context, i int) (int, error) {
		if i%2 == 1 {
			return 0, bad
		}
		return i, nil
	})

	out, err := Map(context.Background(), fn, []int{0, 1, 2, 3, 4})
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, []int{0, 0, 2, 0, 4}, out)
	assert.Equal(t, 0, l.InFlight())
}

func TestMap_Empty(t *testing.T) {
	out, err := Map(context.Background(), func(ctx context.Context, i int) (int, error) { return i, nil }, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
