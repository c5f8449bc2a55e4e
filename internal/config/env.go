package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
)

func envOrDefault(key, defaultValue string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return defaultValue
}

// envKeyMapper resolves known variables to koanf paths; unknown or empty
// variables are skipped so defaults stay in place.
func envKeyMapper(name, value string) (string, any) {
	key, ok := envKeys[name]
	if !ok || strings.TrimSpace(value) == "" {
		return "", nil
	}
	return key, value
}

// sanitize drops values that would fail to decode or are out of range, so the
// defaults underneath win instead of failing the whole load.
func sanitize(k *koanf.Koanf) {
	for _, key := range durationKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil || parsed <= 0 {
			k.Delete(key)
		}
	}
	for _, key := range positiveIntKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		val, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || val <= 0 {
			k.Delete(key)
		}
	}
	for _, key := range boolKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		val, known := parseBool(raw)
		k.Delete(key)
		if known {
			_ = k.Set(key, val)
		}
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes"):
		return true, true
	case raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no"):
		return false, true
	default:
		return false, false
	}
}
