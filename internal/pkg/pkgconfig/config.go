package pkgconfig

import "time"

// Config is the read-only view of configuration handed to modules. Keys are
// dotted paths such as "orderitem.fetch.timeout".
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetString(key string) string
	GetDuration(key string) time.Duration
	GetArray(key string) []string
	Close() error
}
