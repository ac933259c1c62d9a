// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, collects returned errors, and turns
// panics into recorded errors so that background work such as backtest
// simulations never crashes the process silently.
package pkgroutine
