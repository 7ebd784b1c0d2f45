package database

import (
	"context"
	"testing"
	"time"

	"carrier-matching/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()}, PoolOptions{ConcurrentRuns: 5})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 6, client.Client.Options().PoolSize)
	assert.Equal(t, "carrier-matching", client.Client.Options().ClientName)

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{}, SingleRun)
	assert.Error(t, err)
}

func TestPostgresClient_PingAndClose(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectClose()

	client := &PostgresClient{DB: db}
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Pool Sizing Tests
// ==========================

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{Host: "localhost", Port: 5432, User: "u", Database: "d", SSLMode: "disable"}
}

func TestNewPostgres_ExplicitMaxConnectionsWins(t *testing.T) {
	cfg := testPostgresConfig()
	cfg.MaxConnections = 7
	cfg.MaxIdle = 2

	client, err := NewPostgres(cfg, PoolOptions{ConcurrentRuns: 10})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 7, client.DB.Stats().MaxOpenConnections)
}

func TestNewPostgres_SizedForConcurrentRuns(t *testing.T) {
	client, err := NewPostgres(testPostgresConfig(), PoolOptions{ConcurrentRuns: 5})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 5*QueriesPerMatchRun+1, client.DB.Stats().MaxOpenConnections)
}

func TestPoolOptions_Sizing(t *testing.T) {
	tests := []struct {
		name      string
		opts      PoolOptions
		maxConns  int
		maxIdle   int
		wantOpen  int
		wantIdle  int
		wantRedis int
	}{
		{name: "static defaults", opts: PoolOptions{}, wantOpen: 10, wantIdle: 2, wantRedis: 4},
		{name: "single run", opts: SingleRun, wantOpen: 5, wantIdle: 1, wantRedis: 4},
		{name: "worker concurrency", opts: PoolOptions{ConcurrentRuns: 8}, wantOpen: 33, wantIdle: 8, wantRedis: 9},
		{name: "configured limits", opts: PoolOptions{ConcurrentRuns: 8}, maxConns: 6, maxIdle: 10, wantOpen: 6, wantIdle: 6, wantRedis: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open := tt.opts.maxOpen(tt.maxConns)
			assert.Equal(t, tt.wantOpen, open)
			assert.Equal(t, tt.wantIdle, tt.opts.maxIdle(tt.maxIdle, open))
			assert.Equal(t, tt.wantRedis, tt.opts.redisPoolSize())
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(testPostgresConfig(), PoolOptions{StatementTimeout: 30 * time.Second})
	assert.Contains(t, dsn, "application_name=carrier-matching")
	assert.Contains(t, dsn, "statement_timeout=30000")

	assert.NotContains(t, postgresDSN(testPostgresConfig(), SingleRun), "statement_timeout")
}

func TestMatchPoolOptions(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		"match-carriers-for-load": {Enabled: true, MaxJobsActive: 6, Timeout: 20000},
	}}

	opts := MatchPoolOptions(cfg, "match-carriers-for-load")
	assert.Equal(t, 6, opts.ConcurrentRuns)
	assert.Equal(t, 20*time.Second, opts.StatementTimeout)
}
