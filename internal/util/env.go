// Package util holds small helpers shared across the assistant: random ID
// generation and parsing of the YOYO_PIZZA_* environment toggles.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean toggle such as YOYO_PIZZA_DEBUG from the
// environment. Accepts true/1/yes/on and false/0/no/off (case-insensitive);
// unset or unrecognized values fall back to defaultValue, with a warning
// logged for the unrecognized case.
func ParseBoolEnv(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		slog.Warn("ParseBoolEnv: invalid boolean value, using default", "key", key, "value", val, "default", defaultValue)
		return defaultValue
	}
}
