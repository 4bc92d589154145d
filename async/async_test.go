package async

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/craftdeck/log"
	"github.com/kastheco/craftdeck/notify"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

func newBridge(t *testing.T, timeout time.Duration) (*Bridge, *notify.Queue) {
	t.Helper()
	exec := NewExecutor(2, nil)
	t.Cleanup(func() { _ = exec.Shutdown(time.Second) })
	q := notify.NewQueue()
	return NewBridge(exec, q, timeout), q
}

func TestRunOrNotify_Success(t *testing.T) {
	b, q := newBridge(t, time.Second)

	v, ok := RunOrNotify(b, "answer", func(context.Context) (int, error) { return 42, nil }, nil)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Empty(t, q.Poll())
}

func TestRunOrNotify_FailurePushesOneNotification(t *testing.T) {
	b, q := newBridge(t, time.Second)

	_, ok := RunOrNotify(b, "boom", func(context.Context) (string, error) {
		return "", errors.New("disk full")
	}, func(err error) string { return "could not save: " + err.Error() })
	assert.False(t, ok)

	got := q.Poll()
	require.Len(t, got, 1)
	assert.Equal(t, notify.ErrorTitle, got[0].Title)
	assert.Equal(t, "could not save: disk full", got[0].Body)
	assert.Equal(t, notify.DangerPair, got[0].Colors)
	assert.Equal(t, notify.ErrorTTL, got[0].TTL)
}

func TestRunOrNotify_TimeoutCancels(t *testing.T) {
	b, q := newBridge(t, 20*time.Millisecond)

	cancelled := make(chan struct{})
	start := time.Now()
	_, ok := RunOrNotify(b, "slow", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	}, nil)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("operation context was not cancelled")
	}

	got := q.Poll()
	require.Len(t, got, 1)
	assert.Equal(t, TimeoutMessage, got[0].Body)
}

func TestDo(t *testing.T) {
	b, q := newBridge(t, time.Second)

	assert.True(t, Do(b, "ok", func(context.Context) error { return nil }, nil))
	assert.False(t, Do(b, "bad", func(context.Context) error { return errors.New("nope") }, nil))
	got := q.Poll()
	require.Len(t, got, 1)
	assert.Equal(t, "nope", got[0].Body)
}

func TestExecutor_BoundsConcurrency(t *testing.T) {
	exec := NewExecutor(2, nil)
	var running, peak atomic.Int32
	release := make(chan struct{})

	for i := 0; i < 6; i++ {
		require.NoError(t, exec.Go(context.Background(), "work", func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
			return nil
		}))
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	require.NoError(t, exec.Shutdown(time.Second))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExecutor_RejectsAfterShutdown(t *testing.T) {
	exec := NewExecutor(1, nil)
	require.NoError(t, exec.Shutdown(time.Second))

	err := exec.Go(context.Background(), "late", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrShutdown)

	task := Spawn(exec, "late", func(context.Context) (int, error) { return 1, nil })
	_, err, ok := task.Result()
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestExecutor_ShutdownTimeout(t *testing.T) {
	exec := NewExecutor(1, nil)
	require.NoError(t, exec.Go(exec.Context(), "stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	err := exec.Shutdown(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrShutdownTimeout)
	assert.Error(t, exec.Context().Err())
}

func TestSlot_Lifecycle(t *testing.T) {
	exec := NewExecutor(1, nil)
	t.Cleanup(func() { _ = exec.Shutdown(time.Second) })

	var s Slot[string]
	assert.False(t, s.Occupied())

	release := make(chan struct{})
	require.NoError(t, s.Start(exec, "install", func(context.Context) (string, error) {
		<-release
		return "done", nil
	}))
	assert.True(t, s.Running())
	assert.False(t, s.Finished())
	assert.ErrorIs(t, s.Start(exec, "again", nil), ErrSlotOccupied)
	assert.False(t, s.Clear(), "running task cannot be cleared")

	_, _, ok := s.Take()
	assert.False(t, ok)

	close(release)
	require.Eventually(t, s.Finished, time.Second, time.Millisecond)

	// finished but untaken still blocks a new start
	assert.ErrorIs(t, s.Start(exec, "again", nil), ErrSlotOccupied)

	v, err, ok := s.Take()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.False(t, s.Occupied())
}

func TestSlot_ErrorResult(t *testing.T) {
	exec := NewExecutor(1, nil)
	t.Cleanup(func() { _ = exec.Shutdown(time.Second) })

	var s Slot[int]
	require.NoError(t, s.Start(exec, "fail", func(context.Context) (int, error) {
		return 0, errors.New("no network")
	}))
	require.Eventually(t, s.Finished, time.Second, time.Millisecond)

	_, err, ok := s.Peek()
	assert.True(t, ok)
	assert.EqualError(t, err, "no network")
	assert.True(t, s.Occupied(), "peek leaves the result in place")

	_, err, ok = s.Take()
	assert.True(t, ok)
	assert.EqualError(t, err, "no network")
	assert.False(t, s.Occupied())
}
