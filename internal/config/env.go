package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup reads KEY, falling back to the trimmed contents of the file named by
// KEY_FILE so values can come from mounted secrets
func lookup(key string) (string, bool) {
	if val := os.Getenv(key); val != "" {
		return val, true
	}
	path := os.Getenv(key + "_FILE")
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// parsed returns parse(value of key), or def when the key is unset or the
// value does not parse
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	val, ok := lookup(key)
	if !ok || val == "" {
		return def
	}
	v, err := parse(val)
	if err != nil {
		return def
	}
	return v
}

// Get returns the string value of key, or def
func Get(key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}

func GetInt(key string, def int) int {
	return parsed(key, def, strconv.Atoi)
}

func GetFloat(key string, def float64) float64 {
	return parsed(key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetBool accepts 1/t/true/y/yes/on and 0/f/false/n/no/off, case-insensitively
func GetBool(key string, def bool) bool {
	return parsed(key, def, parseBool)
}

// GetDuration accepts anything ParseDuration does
func GetDuration(key string, def time.Duration) time.Duration {
	return parsed(key, def, ParseDuration)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseDuration is time.ParseDuration plus a whole-day suffix, e.g. "7d"
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
