package coordinator

import (
	"log/slog"
	"time"
)

// DefaultInterval matches the default delta lookback, so consecutive delta
// runs cover every change.
const DefaultInterval = 5 * time.Minute

// ParseInterval parses a configured interval, falling back to DefaultInterval
// when it is empty or invalid.
func ParseInterval(raw string) time.Duration {
	if raw != "" {
		if interval, err := time.ParseDuration(raw); err == nil && interval > 0 {
			return interval
		}
		slog.Warn("Invalid coordinator interval, using default",
			"interval", raw,
			"default", DefaultInterval)
	}
	return DefaultInterval
}
