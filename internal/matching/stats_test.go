package matching

import (
	"testing"

	"carrier-matching/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveStats(t *testing.T) {
	tests := []struct {
		name           string
		carrier        models.Carrier
		venture        *models.CarrierVentureStats
		expectedOnTime *float64
		expectedLoads  *int
		expectedSource StatsSource
	}{
		{
			name:           "venture stats win over global",
			carrier:        models.Carrier{OnTimePercentage: floatPtr(80), RecentLoadsDelivered: intPtr(40)},
			venture:        &models.CarrierVentureStats{OnTimePct: floatPtr(95), RecentLoadsDelivered: intPtr(3)},
			expectedOnTime: floatPtr(95),
			expectedLoads:  intPtr(3),
			expectedSource: StatsVentureScoped,
		},
		{
			name:           "venture row falls back per field",
			carrier:        models.Carrier{OnTimePercentage: floatPtr(80), RecentLoadsDelivered: intPtr(40)},
			venture:        &models.CarrierVentureStats{RecentLoadsDelivered: intPtr(7)},
			expectedOnTime: floatPtr(80),
			expectedLoads:  intPtr(7),
			expectedSource: StatsVentureScoped,
		},
		{
			name:           "global only",
			carrier:        models.Carrier{OnTimePercentage: floatPtr(72)},
			expectedOnTime: floatPtr(72),
			expectedSource: StatsGlobalFallback,
		},
		{
			name:           "no data anywhere",
			carrier:        models.Carrier{},
			expectedSource: StatsUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStats(tt.carrier, tt.venture)

			assert.Equal(t, tt.expectedSource, got.Source)
			assert.Equal(t, tt.expectedOnTime, got.OnTimePct)
			assert.Equal(t, tt.expectedLoads, got.RecentLoads)
			assert.Equal(t, tt.expectedSource == StatsVentureScoped, got.VentureScoped())
		})
	}
}

// ==========================
// Options & Pool Filter Tests
// ==========================

func TestOptions_Resolve(t *testing.T) {
	load := &models.Load{ID: 1, VentureID: int64Ptr(7)}

	eff := Options{}.Resolve(load, nil)
	assert.Equal(t, DefaultMaxResults, eff.MaxResults)
	assert.True(t, eff.IncludeFmcsaHealth)
	assert.False(t, eff.OnlyAuthorizedCarriers)
	assert.Equal(t, int64Ptr(7), eff.VentureID)

	eff = Options{
		MaxResults:         intPtr(0),
		IncludeFmcsaHealth: boolPtr(false),
		VentureID:          int64Ptr(9),
	}.Resolve(load, LoadConfig())
	assert.Equal(t, 0, eff.MaxResults)
	assert.False(t, eff.IncludeFmcsaHealth)
	assert.Equal(t, int64Ptr(9), eff.VentureID)
}

func TestEffectiveOptions_ScopedVenture(t *testing.T) {
	_, ok := EffectiveOptions{}.scopedVenture()
	assert.False(t, ok)

	_, ok = EffectiveOptions{VentureID: int64Ptr(0)}.scopedVenture()
	assert.False(t, ok, "zero venture id means unscoped")

	id, ok := EffectiveOptions{VentureID: int64Ptr(3)}.scopedVenture()
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)
}

func TestEffectiveOptions_Filters(t *testing.T) {
	eff := EffectiveOptions{MaxDistance: floatPtr(500)}
	assert.True(t, eff.exceedsMaxDistance(floatPtr(501)))
	assert.False(t, eff.exceedsMaxDistance(floatPtr(500)))
	assert.False(t, eff.exceedsMaxDistance(nil), "unknown miles never exclude")
	assert.False(t, EffectiveOptions{MaxDistance: floatPtr(0)}.exceedsMaxDistance(floatPtr(9000)))

	eff = EffectiveOptions{MinOnTimePercentage: floatPtr(80)}
	assert.True(t, eff.belowMinOnTime(nil))
	assert.True(t, eff.belowMinOnTime(floatPtr(79.9)))
	assert.False(t, eff.belowMinOnTime(floatPtr(80)))
	assert.False(t, EffectiveOptions{}.belowMinOnTime(nil))
	assert.True(t, EffectiveOptions{MinOnTimePercentage: floatPtr(0)}.belowMinOnTime(nil))
}

func TestBuildCarrierFilter(t *testing.T) {
	assert.Equal(t, FmcsaNotRevoked, BuildCarrierFilter(EffectiveOptions{IncludeFmcsaHealth: true}).Fmcsa)
	assert.Equal(t, FmcsaAny, BuildCarrierFilter(EffectiveOptions{}).Fmcsa)
	assert.Equal(t, FmcsaAuthorizedOnly, BuildCarrierFilter(EffectiveOptions{
		OnlyAuthorizedCarriers: true,
		IncludeFmcsaHealth:     true,
	}).Fmcsa)
	assert.Equal(t, models.ComplianceStatusPass, BuildCarrierFilter(EffectiveOptions{}).ComplianceStatus)
}

func TestCarrierFilter_Matches(t *testing.T) {
	base := models.Carrier{Active: true, ComplianceStatus: models.ComplianceStatusPass}

	withAuth := func(v *bool) models.Carrier {
		c := base
		c.FmcsaAuthorized = v
		return c
	}

	notRevoked := CarrierFilter{ComplianceStatus: models.ComplianceStatusPass, Fmcsa: FmcsaNotRevoked}
	assert.True(t, notRevoked.Matches(withAuth(nil)))
	assert.True(t, notRevoked.Matches(withAuth(boolPtr(true))))
	assert.False(t, notRevoked.Matches(withAuth(boolPtr(false))))

	strict := CarrierFilter{ComplianceStatus: models.ComplianceStatusPass, Fmcsa: FmcsaAuthorizedOnly}
	assert.False(t, strict.Matches(withAuth(nil)))
	assert.True(t, strict.Matches(withAuth(boolPtr(true))))

	anyAuth := CarrierFilter{ComplianceStatus: models.ComplianceStatusPass}
	assert.True(t, anyAuth.Matches(withAuth(boolPtr(false))))

	blocked := base
	blocked.Blocked = true
	assert.False(t, anyAuth.Matches(blocked))

	disq := base
	disq.Disqualified = boolPtr(true)
	assert.False(t, anyAuth.Matches(disq))

	failing := base
	failing.ComplianceStatus = "FAIL"
	assert.False(t, anyAuth.Matches(failing))

	inactive := base
	inactive.Active = false
	assert.False(t, anyAuth.Matches(inactive))
}
