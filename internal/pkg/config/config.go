package config

import (
	"io"
	"time"
)

// Config reads typed values from the runtime configuration. Missing keys
// yield the zero value of the requested type; callers that need a default
// apply it themselves.
type Config interface {
	io.Closer

	// GetSecond reads the value at key as a whole number of seconds.
	GetSecond(key string) time.Duration

	// GetInt reads the value at key as an int.
	GetInt(key string) int

	// GetInt32 reads the value at key as an int32.
	GetInt32(key string) int32

	// GetUint16 reads the value at key as a uint16.
	GetUint16(key string) uint16

	// GetFloat64 reads the value at key as a float64.
	GetFloat64(key string) float64

	// GetBool reads the value at key as a bool.
	GetBool(key string) bool

	// GetString reads the value at key as a string.
	GetString(key string) string

	// GetArray reads the value at key as a string slice. Both native list
	// values and comma-separated strings are accepted.
	GetArray(key string) []string
}
