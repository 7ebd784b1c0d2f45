package matching

import "carrier-matching/internal/models"

// StatsSource records where a carrier's effective performance figures came from.
type StatsSource string

const (
	StatsVentureScoped  StatsSource = "VENTURE_SCOPED"
	StatsGlobalFallback StatsSource = "GLOBAL_FALLBACK"
	StatsUnknown        StatsSource = "UNKNOWN"
)

// ResolvedStats is the effective on-time and recent-load figures for one carrier.
type ResolvedStats struct {
	OnTimePct   *float64
	RecentLoads *int
	Source      StatsSource
}

// VentureScoped reports whether a venture stats row backed the resolution.
func (r ResolvedStats) VentureScoped() bool {
	return r.Source == StatsVentureScoped
}

// ResolveStats merges venture-scoped stats over the carrier's global figures.
// Fallback is per field: a venture row with a null on-time percentage still
// takes the carrier's global value for that field, but the source stays
// VentureScoped because the row exists.
func ResolveStats(c models.Carrier, vs *models.CarrierVentureStats) ResolvedStats {
	if vs != nil {
		r := ResolvedStats{
			OnTimePct:   vs.OnTimePct,
			RecentLoads: vs.RecentLoadsDelivered,
			Source:      StatsVentureScoped,
		}
		if r.OnTimePct == nil {
			r.OnTimePct = c.OnTimePercentage
		}
		if r.RecentLoads == nil {
			r.RecentLoads = c.RecentLoadsDelivered
		}
		return r
	}

	if c.OnTimePercentage == nil && c.RecentLoadsDelivered == nil {
		return ResolvedStats{Source: StatsUnknown}
	}
	return ResolvedStats{
		OnTimePct:   c.OnTimePercentage,
		RecentLoads: c.RecentLoadsDelivered,
		Source:      StatsGlobalFallback,
	}
}
