package pkgconfig

import "time"

// Config is the read-only view of application configuration.
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetString(key string) string
	GetDuration(key string) time.Duration
	GetArray(key string) []string
	Close() error
}

// Defaults returns the fallback value of every key the application reads.
func Defaults() map[string]any {
	return map[string]any{
		"tz":                          "UTC",
		"log.level":                   "info",
		"server.address.http":         ":8000",
		"server.cors.allowed_origins": "*",

		"modules.dataset.enabled":  true,
		"modules.backtest.enabled": true,

		"dataset.upload_dir":           "data/uploads",
		"dataset.file_mode":            "0644",
		"dataset.max_upload_bytes":     50 << 20,
		"dataset.duplicate_policy":     "replace",
		"dataset.seed_sample":          false,
		"dataset.rehydrate":            true,
		"dataset.registry.driver":      "memory",
		"dataset.registry.sqlite_path": "data/registry.db",
		"dataset.event.buffer":         512,
		"dataset.event.workers":        2,
		"dataset.event.max_retries":    3,
		"dataset.event.base_backoff":   "200ms",
		"backtest.max_concurrent":      8,
	}
}
