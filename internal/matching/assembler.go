package matching

import (
	"sort"

	"carrier-matching/internal/models"
)

func fmcsaSnapshot(c models.Carrier) *FmcsaHealth {
	return &FmcsaHealth{
		Authorized:       c.FmcsaAuthorized,
		ComplianceStatus: c.ComplianceStatus,
		McNumber:         c.McNumber,
		DotNumber:        c.DotNumber,
		LastSyncedAt:     c.FmcsaLastSyncAt,
	}
}

func newMatchResult(c models.Carrier, stats ResolvedStats, comps Components, reasons []string, includeFmcsa bool) MatchResult {
	r := MatchResult{
		CarrierID:              c.ID,
		CarrierName:            c.Name,
		TotalScore:             comps.Total(),
		Components:             comps,
		Reasons:                reasons,
		PowerUnits:             c.PowerUnits,
		EquipmentTypes:         c.EquipmentTypes,
		OnTimePercentage:       stats.OnTimePct,
		GlobalOnTimePercentage: c.OnTimePercentage,
		VentureScoped:          stats.VentureScoped(),
		StatsSource:            stats.Source,
		Contact: Contact{
			Phone: c.Phone,
			Email: c.Email,
			City:  c.City,
			State: c.State,
		},
	}
	if includeFmcsa {
		r.FmcsaHealth = fmcsaSnapshot(c)
	}
	return r
}

// attachDispatchers sets the primary dispatcher on each result. When a store
// returns more than one primary for a carrier, the first row wins.
func attachDispatchers(results []MatchResult, dispatchers []models.CarrierDispatcher) {
	byCarrier := make(map[int64]models.CarrierDispatcher, len(dispatchers))
	for _, d := range dispatchers {
		if _, ok := byCarrier[d.CarrierID]; !ok {
			byCarrier[d.CarrierID] = d
		}
	}
	for i := range results {
		if d, ok := byCarrier[results[i].CarrierID]; ok {
			results[i].PrimaryDispatcher = &d
		}
	}
}

// rankAndLimit stable-sorts descending by total score and truncates to
// maxResults. A non-positive maxResults keeps everything.
func rankAndLimit(results []MatchResult, maxResults int) []MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})
	if maxResults > 0 && len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}

func carrierIDs(carriers []models.Carrier) []int64 {
	ids := make([]int64, 0, len(carriers))
	for _, c := range carriers {
		ids = append(ids, c.ID)
	}
	return ids
}

func resultIDs(results []MatchResult) []int64 {
	ids := make([]int64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.CarrierID)
	}
	return ids
}
