// Package async bridges the synchronous bubbletea Update loop to background
// work. RunOrNotify blocks the caller for a bounded time; Spawn and Slot hand
// back a PendingTask the caller polls every tick.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/semaphore"

	"github.com/kastheco/craftdeck/internal/telemetry"
)

var (
	// ErrShutdown is returned when work is submitted after Shutdown.
	ErrShutdown = errors.New("executor is shut down")
	// ErrShutdownTimeout is returned when in-flight work outlived the drain
	// bound. The work's context has been cancelled.
	ErrShutdownTimeout = errors.New("timed out draining background work")
)

// Executor runs background operations on at most maxWorkers goroutines at a
// time. Each operation runs inside a span named after it.
type Executor struct {
	sem    *semaphore.Weighted
	tracer oteltrace.Tracer

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewExecutor returns an executor. A nil tracer disables tracing.
func NewExecutor(maxWorkers int, tracer oteltrace.Tracer) *Executor {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("craftdeck/async")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		sem:    semaphore.NewWeighted(int64(maxWorkers)),
		tracer: tracer,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled when Shutdown gives up waiting.
func (e *Executor) Context() context.Context {
	return e.ctx
}

// Go schedules fn. It never blocks the caller: waiting for a worker slot
// happens on the new goroutine. fn is not called when ctx ends before a slot
// frees up.
func (e *Executor) Go(ctx context.Context, name string, fn func(context.Context) error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrShutdown
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		if err := e.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer e.sem.Release(1)

		spanCtx, span := e.tracer.Start(ctx, name)
		span.SetAttributes(telemetry.Operation(name))
		defer span.End()

		if err := fn(spanCtx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	return nil
}

// Shutdown rejects new work and waits up to timeout for in-flight work. On
// timeout every operation's context is cancelled.
func (e *Executor) Shutdown(timeout time.Duration) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		return nil
	case <-time.After(timeout):
		e.cancel()
		return ErrShutdownTimeout
	}
}
