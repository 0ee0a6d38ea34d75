package queue

import (
	domain "github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/infrastructure/config"
)

// ConfigFromSettings builds a coordinator Config from loaded application settings
func ConfigFromSettings(s config.QueueConfig) Config {
	cfg := Config{
		Concurrency:       s.Concurrency,
		MaxAttempts:       s.MaxAttempts,
		LeaseDuration:     s.LeaseDuration,
		HeartbeatInterval: s.HeartbeatInterval,
		PollInterval:      s.PollInterval,
		ReapInterval:      s.ReapInterval,
		ItemTimeout:       s.ItemTimeout,
	}
	if s.BackoffInitial > 0 {
		cfg.Backoff = domain.ExponentialBackoff{Initial: s.BackoffInitial, Max: s.BackoffMax}
	}
	return cfg
}
