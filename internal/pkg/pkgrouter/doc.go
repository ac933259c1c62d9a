// Package pkgrouter wraps HTTP routing and common middleware used by the API.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON encoding, error mapping, logging, recovery and correlation ID
// propagation. It also exposes the Prometheus scrape endpoint at /metrics.
package pkgrouter
