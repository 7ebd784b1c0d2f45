// internal/common/database/pool.go
package database

import (
	"time"

	"carrier-matching/internal/common/config"
)

// QueriesPerMatchRun is how many queries one match run holds open at once
// while it prefetches venture stats, lane history and preferred lanes.
const QueriesPerMatchRun = 4

const applicationName = "carrier-matching"

// PoolOptions size the Postgres and Redis pools for the matching worker.
type PoolOptions struct {
	// ConcurrentRuns is how many match runs may execute at once, normally
	// the worker's max_jobs_active. Zero falls back to static defaults.
	ConcurrentRuns int
	// StatementTimeout bounds each query on the server. Zero keeps the
	// server default.
	StatementTimeout time.Duration
}

// MatchPoolOptions derives pool options from the worker entry for taskType.
func MatchPoolOptions(cfg *config.Config, taskType string) PoolOptions {
	w := config.GetWorkerConfig(cfg, taskType)
	return PoolOptions{
		ConcurrentRuns:   w.MaxJobsActive,
		StatementTimeout: config.GetDuration(w.Timeout),
	}
}

// SingleRun is used by one-shot tools that run a single match.
var SingleRun = PoolOptions{ConcurrentRuns: 1}

// maxOpen prefers an explicit max_connections and otherwise leaves room for
// every concurrent run's prefetch plus one spare connection.
func (o PoolOptions) maxOpen(configured int) int {
	if configured > 0 {
		return configured
	}
	if o.ConcurrentRuns <= 0 {
		return 10
	}
	return o.ConcurrentRuns*QueriesPerMatchRun + 1
}

func (o PoolOptions) maxIdle(configured, maxOpen int) int {
	idle := configured
	if idle <= 0 {
		idle = o.ConcurrentRuns
	}
	if idle <= 0 {
		idle = 2
	}
	return min(idle, maxOpen)
}

// redisPoolSize gives each run its own connection for the cache read and
// write, with a floor for health checks.
func (o PoolOptions) redisPoolSize() int {
	return max(o.ConcurrentRuns+1, 4)
}
