package async

import (
	"context"
	"errors"
	"time"

	"github.com/kastheco/craftdeck/log"
	"github.com/kastheco/craftdeck/notify"
)

// TimeoutMessage is the notification body shown when a blocking call exceeds
// the bridge timeout.
const TimeoutMessage = "operation timed out"

// ErrTimeout is the error a blocking call reports to the log on timeout.
var ErrTimeout = errors.New(TimeoutMessage)

// Bridge runs blocking operations for the UI and reports their failures as
// notifications.
type Bridge struct {
	exec     *Executor
	notifier notify.Notifier
	timeout  time.Duration
}

// NewBridge returns a bridge. timeout <= 0 means no bound.
func NewBridge(exec *Executor, notifier notify.Notifier, timeout time.Duration) *Bridge {
	return &Bridge{exec: exec, notifier: notifier, timeout: timeout}
}

func (b *Bridge) Executor() *Executor        { return b.exec }
func (b *Bridge) Notifier() notify.Notifier { return b.notifier }

// Fail logs err under name and pushes the error notification with
// formatter(err) as its body. A nil formatter uses err.Error().
func (b *Bridge) Fail(name string, err error, formatter func(error) string) {
	log.ErrorLog.Printf("%s: %v", name, err)
	if formatter == nil {
		formatter = error.Error
	}
	notify.Error(b.notifier, formatter(err))
}

type outcome[R any] struct {
	value R
	err   error
}

// RunOrNotify runs op on the executor and waits for it. On failure the error
// is reported through the notifier and ok is false; callers must not report
// it again. When the bridge timeout elapses first, op's context is cancelled
// and the body is TimeoutMessage.
func RunOrNotify[R any](b *Bridge, name string, op func(context.Context) (R, error), formatter func(error) string) (R, bool) {
	var zero R

	ctx, cancel := b.context()
	defer cancel()

	done := make(chan outcome[R], 1)
	err := b.exec.Go(ctx, name, func(ctx context.Context) error {
		v, err := op(ctx)
		done <- outcome[R]{value: v, err: err}
		return err
	})
	if err != nil {
		b.Fail(name, err, formatter)
		return zero, false
	}

	select {
	case res := <-done:
		if res.err != nil {
			b.Fail(name, res.err, formatter)
			return zero, false
		}
		return res.value, true
	case <-ctx.Done():
		log.ErrorLog.Printf("%s: %v", name, ErrTimeout)
		notify.Error(b.notifier, TimeoutMessage)
		return zero, false
	}
}

// Do is RunOrNotify for operations without a result.
func Do(b *Bridge, name string, op func(context.Context) error, formatter func(error) string) bool {
	_, ok := RunOrNotify(b, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, formatter)
	return ok
}

func (b *Bridge) context() (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(b.exec.Context())
	}
	return context.WithTimeout(b.exec.Context(), b.timeout)
}
