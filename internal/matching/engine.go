// Package matching ranks eligible carriers for a freight load by a weighted
// fit score built from distance, equipment, lane history, preferred lanes,
// bonuses, on-time reliability and capacity.
package matching

import (
	"context"
	"fmt"
	"time"

	"carrier-matching/internal/common/logger"
	"carrier-matching/internal/common/metrics"
	"carrier-matching/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "carrier-matching/internal/matching"

// Labels for carriers dropped by per-carrier hard filters.
const (
	excludeDisqualified = "disqualified"
	excludeMaxDistance  = "max_distance"
	excludeEquipment    = "equipment"
	excludeMinOnTime    = "min_on_time"
)

type Engine struct {
	config *Config
	store  Store
	logger logger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func NewEngine(config *Config, store Store, log logger.Logger) *Engine {
	if config == nil {
		config = LoadConfig()
	}
	return &Engine{
		config: config,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "matching"}),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

// candidateData is everything prefetched once per call for the candidate set.
type candidateData struct {
	now          time.Time
	ventureStats map[int64]models.CarrierVentureStats
	laneHistory  map[int64]models.LaneHistory
	carrierLanes map[int64]CarrierLaneMatch
	shipperLane  LaneLookup
}

// GetMatchesForLoad ranks the eligible carriers for a load. It returns an
// error wrapping ErrLoadNotFound when the load does not exist; data store
// failures other than preferred-lane lookups fail the whole call.
func (e *Engine) GetMatchesForLoad(ctx context.Context, loadID int64, opts Options) (*MatchResultSet, error) {
	ctx, span := e.tracer.Start(ctx, "matching.GetMatchesForLoad",
		trace.WithAttributes(attribute.Int64("load.id", loadID)))
	defer span.End()

	set, err := e.getMatches(ctx, loadID, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("matching.candidates", set.TotalCandidates),
		attribute.Int("matching.returned", len(set.Matches)),
	)
	return set, nil
}

func (e *Engine) getMatches(ctx context.Context, loadID int64, opts Options) (*MatchResultSet, error) {
	start := e.now()

	load, err := e.store.LoadByID(ctx, loadID)
	if err != nil {
		return nil, fmt.Errorf("load %d: %w", loadID, err)
	}
	if load == nil {
		return nil, fmt.Errorf("load %d: %w", loadID, ErrLoadNotFound)
	}

	eff := opts.Resolve(load, e.config)
	set := &MatchResultSet{
		LoadID:    loadID,
		VentureID: eff.VentureID,
		Matches:   []MatchResult{},
		Options:   eff,
	}

	filter := BuildCarrierFilter(eff)
	carriers, err := e.store.EligibleCarriers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("eligible carriers: %w", err)
	}
	if len(carriers) == 0 {
		e.logger.Info("no eligible carriers", map[string]interface{}{
			"loadId": loadID,
			"fmcsa":  filter.Fmcsa.String(),
		})
		metrics.MatchCandidates.Observe(0)
		return set, nil
	}

	data, err := e.prefetch(ctx, load, eff, carrierIDs(carriers))
	if err != nil {
		return nil, err
	}

	results := make([]MatchResult, 0, len(carriers))
	for _, c := range carriers {
		r, excluded := e.scoreCarrier(load, c, eff, data)
		if excluded != "" {
			metrics.MatchExclusions.WithLabelValues(excluded).Inc()
			continue
		}
		results = append(results, r)
	}

	if len(results) > 0 {
		dispatchers, err := e.store.PrimaryDispatchers(ctx, resultIDs(results))
		if err != nil {
			return nil, fmt.Errorf("primary dispatchers: %w", err)
		}
		attachDispatchers(results, dispatchers)
	}

	set.TotalCandidates = len(results)
	set.Matches = rankAndLimit(results, eff.MaxResults)
	metrics.MatchCandidates.Observe(float64(len(results)))

	fields := map[string]interface{}{
		"loadId":          loadID,
		"pool":            len(carriers),
		"totalCandidates": set.TotalCandidates,
		"returned":        len(set.Matches),
		"durationMs":      e.now().Sub(start).Milliseconds(),
	}
	if len(set.Matches) > 0 {
		fields["topScore"] = set.Matches[0].TotalScore
	}
	e.logger.Info("match run completed", fields)

	return set, nil
}

// prefetch loads the batched per-candidate data concurrently. Venture stats
// and lane history are required; preferred lane failures are logged and
// scored as no match.
func (e *Engine) prefetch(ctx context.Context, load *models.Load, eff EffectiveOptions, ids []int64) (*candidateData, error) {
	ctx, span := e.tracer.Start(ctx, "matching.prefetch",
		trace.WithAttributes(attribute.Int("matching.pool", len(ids))))
	defer span.End()

	data := &candidateData{
		now:          e.now(),
		ventureStats: make(map[int64]models.CarrierVentureStats),
	}
	ventureID, scoped := eff.scopedVenture()

	g, gctx := errgroup.WithContext(ctx)

	if scoped {
		g.Go(func() error {
			rows, err := e.store.VentureStats(gctx, ventureID, ids)
			if err != nil {
				return fmt.Errorf("venture stats: %w", err)
			}
			for _, vs := range rows {
				data.ventureStats[vs.CarrierID] = vs
			}
			return nil
		})
	}

	g.Go(func() error {
		q := LaneDeliveryQuery{
			CarrierIDs: ids,
			Since:      laneHistoryWindow(data.now, e.config.LaneHistoryMonths),
			Statuses:   LaneHistoryStatuses,
		}
		if scoped {
			q.VentureID = &ventureID
		}
		groups, err := e.store.LaneDeliveries(gctx, q)
		if err != nil {
			return fmt.Errorf("lane deliveries: %w", err)
		}
		data.laneHistory = AggregateLaneHistory(load, groups)
		return nil
	})

	g.Go(func() error {
		lanes, err := ResolveCarrierLanes(gctx, e.store, load, ids)
		if err != nil {
			e.logger.Warn("carrier preferred lane lookup failed", map[string]interface{}{
				"loadId":   load.ID,
				"carriers": len(ids),
				"error":    err.Error(),
			})
			metrics.LaneLookupFailures.WithLabelValues("carrier").Inc()
		}
		data.carrierLanes = lanes
		return nil
	})

	g.Go(func() error {
		data.shipperLane = ResolveShipperLane(gctx, e.store, load)
		if data.shipperLane.Status == LookupFailed {
			e.logger.Warn("shipper preferred lane lookup failed", map[string]interface{}{
				"loadId": load.ID,
				"error":  data.shipperLane.Reason,
			})
			metrics.LaneLookupFailures.WithLabelValues("shipper").Inc()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return data, nil
}

// scoreCarrier applies the per-carrier hard filters in order and, for a
// surviving carrier, computes its components and reasons. A non-empty second
// return names the filter that excluded the carrier.
func (e *Engine) scoreCarrier(load *models.Load, c models.Carrier, eff EffectiveOptions, data *candidateData) (MatchResult, string) {
	if c.IsDisqualified() {
		return MatchResult{}, excludeDisqualified
	}

	var comps Components
	reasons := []string{}

	comps.DistanceScore = ScoreDistance(load.Miles)
	if eff.exceedsMaxDistance(load.Miles) {
		return MatchResult{}, excludeMaxDistance
	}
	if comps.DistanceScore >= 90 {
		reasons = append(reasons, "Close to lane")
	}

	comps.EquipmentScore = ScoreEquipment(load.EquipmentType, c.EquipmentTypes)
	if eff.RequireEquipmentMatch && comps.EquipmentScore == 0 {
		return MatchResult{}, excludeEquipment
	}
	if comps.EquipmentScore >= 90 {
		reasons = append(reasons, "Equipment match")
	} else if comps.EquipmentScore > 0 {
		reasons = append(reasons, "Equipment partially compatible")
	}

	var vs *models.CarrierVentureStats
	if row, ok := data.ventureStats[c.ID]; ok {
		vs = &row
	}
	stats := ResolveStats(c, vs)
	if eff.belowMinOnTime(stats.OnTimePct) {
		return MatchResult{}, excludeMinOnTime
	}

	comps.OnTimeScore = ScoreOnTime(stats.OnTimePct)
	if comps.OnTimeScore >= 95 {
		reasons = append(reasons, "High on-time performance")
	}
	if stats.VentureScoped() {
		reasons = append(reasons, "Venture-scoped intelligence")
	}

	comps.CapacityScore = ScoreCapacity(c.PowerUnits, stats.RecentLoads)
	if comps.CapacityScore >= 40 {
		reasons = append(reasons, "Capacity suitable")
	}

	var shipperBonus *float64
	if data.shipperLane.Found() {
		shipperBonus = data.shipperLane.Bonus
		reasons = append(reasons, "Preferred lane match (shipper)")
	}
	lanes := data.carrierLanes[c.ID]
	comps.PreferredLaneScore = ScorePreferredLane(lanes.Exact.Found(), lanes.State.Found(), shipperBonus)
	if lanes.Exact.Found() {
		reasons = append(reasons, "Preferred lane match (carrier)")
	} else if lanes.State.Found() {
		reasons = append(reasons, "Preferred lane proximity (carrier)")
	}

	comps.BonusScore = ScoreBonus(shipperBonus, load.DefaultBonusValue())
	if comps.BonusScore > 0 {
		reasons = append(reasons, "Shipper bonus applied")
	}

	if h, ok := data.laneHistory[c.ID]; ok {
		comps.LaneHistoryScore = ScoreLaneHistory(h, DaysSinceDelivery(h, data.now))
		if h.ExactCityMatches > 0 {
			reasons = append(reasons, fmt.Sprintf("Lane history: %d exact lane match(es)", h.ExactCityMatches))
		} else if h.StateMatches > 0 {
			reasons = append(reasons, fmt.Sprintf("Lane history: %d state match(es)", h.StateMatches))
		}
	}

	penalty, blocked, lowOnTime := ScorePenalty(c.Blocked, stats.OnTimePct)
	comps.PenaltyScore = penalty
	if blocked {
		reasons = append(reasons, "Penalty: blocked")
	}
	if lowOnTime {
		reasons = append(reasons, "Penalty: low on-time")
	}

	return newMatchResult(c, stats, comps, reasons, eff.IncludeFmcsaHealth), ""
}
