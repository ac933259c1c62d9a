// Package pkguid generates identifiers for backtests and dataset events.
//
// Backtest runs are addressed by time-ordered UUID strings (StringID) while
// dataset events carry Snowflake numbers (NumberID) that consumers use as
// idempotency keys.
package pkguid
