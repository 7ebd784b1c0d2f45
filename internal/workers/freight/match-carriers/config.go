// internal/workers/freight/match-carriers/config.go
package matchcarriers

import (
	"time"

	"carrier-matching/internal/common/camunda"
	"carrier-matching/internal/common/config"
	"carrier-matching/internal/matching"
)

type Config struct {
	Timeout      time.Duration
	CacheTTL     time.Duration
	CommandRetry *camunda.RetryConfig
	Engine       *matching.Config
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		CommandRetry: camunda.DefaultRetryConfig,
		Engine:       matching.LoadConfig(),
	}
}

// FromAppConfig builds the worker and engine settings from the matching
// section and the worker's own entry. max_retries bounds how often a job
// command is resent after a transient broker error.
func FromAppConfig(cfg *config.Config) *Config {
	w := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:  config.GetDuration(w.Timeout),
		CacheTTL: time.Duration(cfg.Matching.CacheTTL) * time.Second,
		CommandRetry: &camunda.RetryConfig{
			MaxRetries: w.MaxRetries,
			BaseDelay:  camunda.DefaultRetryConfig.BaseDelay,
			MaxDelay:   camunda.DefaultRetryConfig.MaxDelay,
		},
		Engine: &matching.Config{
			DefaultMaxResults:         cfg.Matching.DefaultMaxResults,
			DefaultIncludeFmcsaHealth: cfg.Matching.IncludeFmcsaHealth,
			LaneHistoryMonths:         cfg.Matching.LaneHistoryMonths,
		},
	}
}
