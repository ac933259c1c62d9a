package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// closeOrder lists resources that must be released in sequence. Anything not
// listed is closed afterwards.
var closeOrder = []string{"Dataset", "Config"}

func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		sig := <-sigint
		slog.Info("received shutdown signal", "signal", sig.String())

		terminateChan <- struct{}{}
		close(terminateChan)
	}()

	return terminateChan
}

// Stop drains HTTP traffic first, then waits for running backtests, then
// releases the dataset registry and configuration.
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	slog.InfoContext(ctx, "waiting for running backtests to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	done := map[string]bool{"HTTP Server": true}
	for _, name := range closeOrder {
		a.close(ctx, name)
		done[name] = true
	}
	for name := range a.closerFn {
		if !done[name] {
			a.close(ctx, name)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}

func (a *App) close(ctx context.Context, name string) {
	closer, ok := a.closerFn[name]
	if !ok {
		return
	}
	if err := closer(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", name, "error", err)
	}
}
