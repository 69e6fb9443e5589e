package system

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable constants for macperms
const (
	// Logging
	EnvDebug   = "MACPERMS_DEBUG"
	EnvLogJSON = "MACPERMS_LOG_JSON"
	EnvLogDest = "MACPERMS_LOG_DEST"
	EnvLogTime = "MACPERMS_LOG_TIME"

	// Configuration
	EnvConfig       = "MACPERMS_CONFIG"
	EnvCacheTTL     = "MACPERMS_CACHE_TTL"
	EnvEventTarget  = "MACPERMS_EVENT_TARGET"
	EnvPollInterval = "MACPERMS_POLL_INTERVAL"
	EnvCodec        = "MACPERMS_CODEC"
)

// GetBool returns the boolean value of an environment variable.
// Returns true if the variable is set to "1", "true", "yes", or "on" (case-insensitive).
// Returns false otherwise.
func GetBool(key string) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

// LookupBool is GetBool that also reports whether the variable was set.
func LookupBool(key string) (value, ok bool) {
	if strings.TrimSpace(os.Getenv(key)) == "" {
		return false, false
	}
	return GetBool(key), true
}

// GetString returns the string value of an environment variable.
// Returns the defaultValue if the variable is not set or empty.
func GetString(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// GetInt returns the integer value of an environment variable.
// Returns the defaultValue if the variable is not set, empty, or cannot be parsed.
func GetInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// GetDuration returns a duration such as "30s" from an environment variable.
// A bare integer is read as seconds. Returns defaultValue when the variable
// is unset or cannot be parsed.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// IsDebugEnabled checks if debug mode is enabled via environment variable.
func IsDebugEnabled() bool {
	return GetBool(EnvDebug)
}
