package pkgroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 10

// ErrPanic marks errors produced by a task that panicked.
var ErrPanic = errors.New("task panicked")

// Manager runs named background tasks with a concurrency limit and collects
// their failures for Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error
	wg   sync.WaitGroup
	sema chan struct{}
}

func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go runs f in its own goroutine once a slot is free. It blocks while the
// manager is full and gives up, returning false, if ctx ends first.
//
// A returned error or a panic is recorded under name and reported by Wait.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	select {
	case g.sema <- struct{}{}:
	case <-ctx.Done():
		slog.WarnContext(ctx, "task canceled before start", "task", name, "because", ctx.Err())
		return false
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() { <-g.sema }()

		if err := run(ctx, f); err != nil {
			slog.ErrorContext(ctx, "task failed", "task", name, "error", err)
			g.record(fmt.Errorf("%s: %w", name, err))
		}
	}()

	return true
}

// Wait blocks until every started task returns and joins their errors.
func (g *Manager) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

func run(ctx context.Context, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrPanic, rvr)
		}
	}()

	return f(ctx)
}
