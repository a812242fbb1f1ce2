// Package utils reads typed settings from the process environment. Every
// helper trims the raw value and falls back to its default when the variable
// is unset or does not parse.
package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultServiceName = "waitlist-api"

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	if v := GetEnvTrimmed(key); v != "" {
		return v
	}
	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(GetEnvTrimmed(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// GetEnvPositiveInt ignores zero and negative values.
func GetEnvPositiveInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(GetEnvTrimmed(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func GetEnvPositiveInt64(key string, defaultValue int64) int64 {
	n, err := strconv.ParseInt(GetEnvTrimmed(key), 10, 64)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// GetEnvDuration accepts Go duration strings ("90s") or a bare number of seconds.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := GetEnvTrimmed(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// GetEnvRatio parses a float clamped to [0, 1].
func GetEnvRatio(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(GetEnvTrimmed(key), 64)
	if err != nil {
		return defaultValue
	}
	return min(1, max(0, f))
}

func IsTracingEnabled() bool {
	return GetEnvBool("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	return GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", defaultServiceName)
}
