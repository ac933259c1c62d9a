// Package pkglog sets up the process-wide slog JSON logger and threads
// request correlation IDs through contexts, including into background
// backtest runs.
package pkglog
