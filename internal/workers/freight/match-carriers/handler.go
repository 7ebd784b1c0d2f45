// internal/workers/freight/match-carriers/handler.go
package matchcarriers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"carrier-matching/internal/common/camunda"
	"carrier-matching/internal/common/errors"
	"carrier-matching/internal/common/logger"
	"carrier-matching/internal/common/metrics"
	"carrier-matching/internal/common/observability"
	"carrier-matching/internal/common/validation"
	"carrier-matching/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "match-carriers-for-load"
)

// Matcher is the engine surface the worker needs.
type Matcher interface {
	GetMatchesForLoad(ctx context.Context, loadID int64, opts matching.Options) (*matching.MatchResultSet, error)
}

type Handler struct {
	config       *Config
	engine       Matcher
	cache        *ResultCache
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
	newRunID     func() string
}

// NewHandler wires the worker. cache, validator and obs may be nil.
func NewHandler(config *Config, engine Matcher, cache *ResultCache, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:    config,
		engine:    engine,
		cache:     cache,
		validator: validator,
		obs:       obs,
		logger:    log,
		newRunID:  uuid.NewString,
	}
	h.errorHandler = errors.NewErrorHandler(log).WithSender(h.sendWithRetry)
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) (err error) {
	start := time.Now()
	defer func() { h.recordJob(start, err) }()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.reportFailure(ctx, client, job, err)
		return err
	}

	runStart := time.Now()
	output, err := h.execute(ctx, input)
	if err != nil {
		h.obs.RecordMatchRun(ctx, "error", 0, time.Since(runStart))
		jobErr := toJobError(input.LoadID, err)
		h.reportFailure(ctx, client, job, jobErr)
		return jobErr
	}
	h.obs.RecordMatchRun(ctx, "success", len(output.MatchResult.Matches), time.Since(runStart))

	return h.completeJob(ctx, client, job, output)
}

// parseInput validates the job variables against the activity schema and
// decodes them.
func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		return nil, errors.NewInvalidMatchInputError(fmt.Sprintf("parse variables: %v", err))
	}

	if h.validator != nil {
		result, err := h.validator.Validate(raw)
		if err != nil {
			return nil, errors.NewInvalidMatchInputError(err.Error())
		}
		if !result.Valid {
			return nil, errors.NewInvalidMatchInputError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidMatchInputError(fmt.Sprintf("decode variables: %v", err))
	}
	if input.LoadID <= 0 {
		return nil, errors.NewInvalidMatchInputError("loadId must be a positive integer")
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	runID := h.newRunID()
	key := CacheKey(input.LoadID, input.Options)

	cached, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("match cache read failed", map[string]interface{}{
			"loadId": input.LoadID,
			"error":  err,
		})
	}
	if cached != nil {
		h.logger.Info("match result served from cache", map[string]interface{}{
			"loadId":     input.LoadID,
			"matchRunId": runID,
		})
		return &Output{MatchRunID: runID, Cached: true, MatchResult: cached}, nil
	}

	set, err := h.engine.GetMatchesForLoad(ctx, input.LoadID, input.Options)
	if err != nil {
		return nil, err
	}

	if err := h.cache.Set(ctx, key, set); err != nil {
		h.logger.Warn("match cache write failed", map[string]interface{}{
			"loadId": input.LoadID,
			"error":  err,
		})
	}

	h.logger.Info("carriers matched", map[string]interface{}{
		"loadId":          input.LoadID,
		"matchRunId":      runID,
		"totalCandidates": set.TotalCandidates,
		"returned":        len(set.Matches),
	})

	return &Output{MatchRunID: runID, MatchResult: set}, nil
}

// toJobError maps an engine failure to the error the job is failed with.
// A missing load is a business error; everything else came from the data
// store and is retryable.
func toJobError(loadID int64, err error) error {
	if stderrors.Is(err, matching.ErrLoadNotFound) {
		return errors.NewLoadNotFoundError(loadID)
	}
	return errors.FromDataStoreError("match_carriers", err).WithMetadata("loadId", loadID)
}

func (h *Handler) reportFailure(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := string(errors.ErrCodeInternal)
	if stdErr, ok := errors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	err = h.sendWithRetry(ctx, "complete", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

// sendWithRetry sends a job command, resending it after transient broker
// errors up to the worker's max_retries.
func (h *Handler) sendWithRetry(ctx context.Context, action string, send func(context.Context) error) error {
	return camunda.ExecuteWithRetry(ctx, h.config.CommandRetry, send, action+"-job")
}

// recordJob feeds the job-level OpenTelemetry instruments. The job context
// may already be cancelled, so a fresh one is used.
func (h *Handler) recordJob(start time.Time, err error) {
	status := "completed"
	if err != nil {
		status = "failed"
	}
	ctx := context.Background()
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), status)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
