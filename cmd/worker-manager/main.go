// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"carrier-matching/internal/common/camunda"
	"carrier-matching/internal/common/config"
	"carrier-matching/internal/common/database"
	"carrier-matching/internal/common/logger"
	"carrier-matching/internal/common/observability"
	"carrier-matching/internal/common/validation"
	"carrier-matching/internal/freight/queries"
	"carrier-matching/internal/matching"
	mc "carrier-matching/internal/workers/freight/match-carriers"
	"carrier-matching/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

var postgresRetryDelay = 2 * time.Second

type postgresOpener func(config.PostgresConfig, database.PoolOptions) (*database.PostgresClient, error)

// connectPostgres opens and pings the pool with retries. A pool whose ping
// failed is closed before the next attempt opens a new one.
func connectPostgres(ctx context.Context, cfg config.PostgresConfig, opts database.PoolOptions, open postgresOpener, log *zap.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		client, err := open(cfg, opts)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return err
		}
		pg = client
		return nil
	}, 15, postgresRetryDelay, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	return pg, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment))

	obs, err := observability.New("carrier-matching")
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("registry is invalid", zap.Error(err))
	}
	activity, ok := reg.Find(mc.TaskType)
	if !ok {
		zapLog.Fatal("activity not registered", zap.String("taskType", mc.TaskType))
	}
	validator, err := validation.NewValidator(activity.InputSchema)
	if err != nil {
		zapLog.Fatal("input schema does not compile", zap.Error(err))
	}

	workerCfg := mc.FromAppConfig(cfg)
	poolOpts := database.MatchPoolOptions(cfg, mc.TaskType)

	// --- Init PostgreSQL with retry ---
	pg, err := connectPostgres(ctx, cfg.Database.Postgres, poolOpts, database.NewPostgres, zapLog)
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully",
		zap.Int("maxOpenConns", pg.DB.Stats().MaxOpenConnections))

	// --- Init Redis with retry, only when the result cache is on ---
	cache := mc.NewResultCache(nil, 0)
	if workerCfg.CacheTTL > 0 {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis, poolOpts)
			if err != nil {
				return err
			}
			if err := rc.Ping(ctx); err != nil {
				rc.Close()
				return err
			}
			return nil
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		cache = mc.NewResultCache(rc.Client, workerCfg.CacheTTL)
		zapLog.Info("Redis connected successfully", zap.Duration("cacheTTL", workerCfg.CacheTTL))
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Matching worker ---
	var workers []*camunda.CamundaWorker
	switch {
	case !config.IsWorkerEnabled(cfg, mc.TaskType):
		zapLog.Info("worker disabled", zap.String("taskType", mc.TaskType))
	case !activity.Serviceable():
		zapLog.Warn("activity is not serviceable, worker not started",
			zap.String("taskType", mc.TaskType),
			zap.String("status", activity.ImplementationStatus))
	default:
		store := queries.NewStore(pg.DB, log)
		engine := matching.NewEngine(workerCfg.Engine, store, log)
		handler := mc.NewHandler(workerCfg, engine, cache, validator, obs, log)

		wc := config.GetWorkerConfig(cfg, mc.TaskType)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), mc.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, handler, zapLog))
	}

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newServeMux(pg, zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

type pinger interface {
	Ping(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// newServeMux serves liveness, readiness and metrics. Readiness fails while
// the database or the broker is unreachable.
func newServeMux(db pinger, broker healthChecker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "postgres": err.Error()})
			return
		}
		if err := broker.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "zeebe": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	body["time"] = time.Now().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
