package app

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
)

const closerHTTPServer = "HTTP Server"

// Start serves HTTP in the background. The returned channel is closed once a
// termination signal arrives.
func (a *App) Start() <-chan struct{} {
	terminate := make(chan struct{})

	a.goroutine.Go(a.ctx, "http server", func(ctx context.Context) error {
		slog.InfoContext(ctx, "http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
		return nil
	})

	go func() {
		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		<-ctx.Done()
		slog.Info("termination signal received")
		close(terminate)
	}()

	return terminate
}

// Stop drains the HTTP server first, then waits for background tasks and
// finally releases every other resource in name order.
func (a *App) Stop(ctx context.Context) {
	if closeHTTP, ok := a.closers[closerHTTPServer]; ok {
		if err := closeHTTP(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closerHTTPServer, "error", err)
		}
	}

	if a.cancel != nil {
		a.cancel()
	}

	slog.InfoContext(ctx, "waiting for background tasks to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background task ended with error", "error", err)
	}

	for _, name := range slices.Sorted(maps.Keys(a.closers)) {
		if name == closerHTTPServer {
			continue
		}
		if err := a.closers[name](ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
