package matching

import "carrier-matching/internal/models"

// Options are the caller-supplied knobs of a match request. Nil pointers mean
// "use the default".
type Options struct {
	MaxResults             *int     `json:"maxResults,omitempty"`
	IncludeFmcsaHealth     *bool    `json:"includeFmcsaHealth,omitempty"`
	OnlyAuthorizedCarriers bool     `json:"onlyAuthorizedCarriers,omitempty"`
	MinOnTimePercentage    *float64 `json:"minOnTimePercentage,omitempty"`
	MaxDistance            *float64 `json:"maxDistance,omitempty"`
	RequireEquipmentMatch  bool     `json:"requireEquipmentMatch,omitempty"`
	VentureID              *int64   `json:"ventureId,omitempty"`
}

// EffectiveOptions is the fully resolved option set a result was computed with.
type EffectiveOptions struct {
	MaxResults             int      `json:"maxResults"`
	IncludeFmcsaHealth     bool     `json:"includeFmcsaHealth"`
	OnlyAuthorizedCarriers bool     `json:"onlyAuthorizedCarriers"`
	MinOnTimePercentage    *float64 `json:"minOnTimePercentage,omitempty"`
	MaxDistance            *float64 `json:"maxDistance,omitempty"`
	RequireEquipmentMatch  bool     `json:"requireEquipmentMatch"`
	VentureID              *int64   `json:"ventureId,omitempty"`
}

// Resolve fills unset options from cfg and picks the venture: an explicit
// override wins over the load's own venture.
func (o Options) Resolve(load *models.Load, cfg *Config) EffectiveOptions {
	if cfg == nil {
		cfg = LoadConfig()
	}

	eff := EffectiveOptions{
		MaxResults:             cfg.DefaultMaxResults,
		IncludeFmcsaHealth:     cfg.DefaultIncludeFmcsaHealth,
		OnlyAuthorizedCarriers: o.OnlyAuthorizedCarriers,
		MinOnTimePercentage:    o.MinOnTimePercentage,
		MaxDistance:            o.MaxDistance,
		RequireEquipmentMatch:  o.RequireEquipmentMatch,
	}
	if o.MaxResults != nil {
		eff.MaxResults = *o.MaxResults
	}
	if o.IncludeFmcsaHealth != nil {
		eff.IncludeFmcsaHealth = *o.IncludeFmcsaHealth
	}

	switch {
	case o.VentureID != nil:
		eff.VentureID = o.VentureID
	case load != nil:
		eff.VentureID = load.VentureID
	}
	return eff
}

// scopedVenture returns the venture id used for stats and lane-history scoping.
// A zero id counts as no venture.
func (e EffectiveOptions) scopedVenture() (int64, bool) {
	if e.VentureID == nil || *e.VentureID == 0 {
		return 0, false
	}
	return *e.VentureID, true
}

// exceedsMaxDistance applies the maxDistance filter. A zero limit means no
// limit; any other limit applies to loads with positive miles, so a negative
// limit excludes every such load.
func (e EffectiveOptions) exceedsMaxDistance(miles *float64) bool {
	if e.MaxDistance == nil || *e.MaxDistance == 0 {
		return false
	}
	if miles == nil || *miles <= 0 {
		return false
	}
	return *miles > *e.MaxDistance
}

// belowMinOnTime applies the minOnTimePercentage filter. Carriers without any
// on-time data fail the filter whenever a minimum is set.
func (e EffectiveOptions) belowMinOnTime(pct *float64) bool {
	if e.MinOnTimePercentage == nil {
		return false
	}
	return pct == nil || *pct < *e.MinOnTimePercentage
}
