package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func boolPtr(v bool) *bool        { return &v }

// ==========================
// Component Score Tests
// ==========================

func TestScoreDistance(t *testing.T) {
	tests := []struct {
		name     string
		miles    *float64
		expected int
	}{
		{"missing miles", nil, 70},
		{"zero miles", floatPtr(0), 70},
		{"negative miles", floatPtr(-12), 70},
		{"short haul", floatPtr(50), 99},
		{"regional", floatPtr(250), 93},
		{"thousand miles", floatPtr(1000), 70},
		{"long haul", floatPtr(1666), 50},
		{"floored", floatPtr(5000), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScoreDistance(tt.miles))
		})
	}
}

func TestScoreDistance_NonIncreasingAndBounded(t *testing.T) {
	prev := ScoreDistance(floatPtr(1))
	for miles := 1.0; miles <= 6000; miles += 7 {
		score := ScoreDistance(floatPtr(miles))
		assert.LessOrEqual(t, score, prev, "miles=%v", miles)
		assert.GreaterOrEqual(t, score, 10)
		assert.LessOrEqual(t, score, 100)
		prev = score
	}
}

func TestScoreEquipment(t *testing.T) {
	tests := []struct {
		name     string
		load     string
		carrier  string
		expected int
	}{
		{"exact single", "VAN", "VAN", 100},
		{"exact in list case-insensitive", "reefer", "Van, Reefer ,Flatbed", 100},
		{"substring only", "VAN", "DRY VAN", 80},
		{"no overlap", "FLATBED", "VAN,REEFER", 0},
		{"missing load equipment", "", "VAN", 0},
		{"missing carrier equipment", "VAN", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScoreEquipment(tt.load, tt.carrier))
		})
	}
}

func TestScoreOnTime(t *testing.T) {
	assert.Equal(t, 0, ScoreOnTime(nil))
	assert.Equal(t, 88, ScoreOnTime(floatPtr(87.5)))
	assert.Equal(t, 87, ScoreOnTime(floatPtr(87.4)))
	assert.Equal(t, 100, ScoreOnTime(floatPtr(140)))
	assert.Equal(t, 0, ScoreOnTime(floatPtr(-5)))
}

func TestScoreCapacity(t *testing.T) {
	tests := []struct {
		name     string
		pu       *int
		recent   *int
		expected int
	}{
		{"no data", nil, nil, 0},
		{"small fleet", intPtr(5), nil, 15},
		{"fleet capped", intPtr(50), nil, 60},
		{"recent capped", nil, intPtr(100), 40},
		{"both capped", intPtr(30), intPtr(30), 100},
		{"mixed", intPtr(10), intPtr(5), 40},
		{"negative counts clamp", intPtr(-4), intPtr(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScoreCapacity(tt.pu, tt.recent))
		})
	}
}

func TestScorePreferredLane(t *testing.T) {
	assert.Equal(t, 0.0, ScorePreferredLane(false, false, nil))
	assert.Equal(t, 40.0, ScorePreferredLane(true, true, nil))
	assert.Equal(t, 20.0, ScorePreferredLane(false, true, nil))
	assert.Equal(t, 55.0, ScorePreferredLane(true, false, floatPtr(15)))
	assert.Equal(t, 0.0, ScorePreferredLane(false, false, floatPtr(0)))
}

func TestScoreBonus(t *testing.T) {
	assert.Equal(t, 0.0, ScoreBonus(nil, nil))
	assert.Equal(t, 15.0, ScoreBonus(floatPtr(15), nil))
	assert.Equal(t, 25.0, ScoreBonus(floatPtr(15), floatPtr(10)))
	assert.Equal(t, -5.0, ScoreBonus(nil, floatPtr(-5)))
}

func TestScorePenalty(t *testing.T) {
	score, blocked, low := ScorePenalty(false, nil)
	assert.Equal(t, 0, score)
	assert.False(t, blocked)
	assert.False(t, low)

	score, blocked, low = ScorePenalty(true, floatPtr(65))
	assert.Equal(t, 110, score)
	assert.True(t, blocked)
	assert.True(t, low)

	score, _, low = ScorePenalty(false, floatPtr(70))
	assert.Equal(t, 0, score)
	assert.False(t, low)
}

// ==========================
// Total Score Tests
// ==========================

func TestComponents_Total(t *testing.T) {
	tests := []struct {
		name     string
		comps    Components
		expected int
	}{
		{
			name:     "all zero",
			comps:    Components{},
			expected: 0,
		},
		{
			name: "all maxed",
			comps: Components{
				DistanceScore: 100, EquipmentScore: 100, PreferredLaneScore: 100,
				LaneHistoryScore: 100, BonusScore: 100, OnTimeScore: 100, CapacityScore: 100,
			},
			expected: 100,
		},
		{
			// 93*.15 + 100*.20 + 90*.15 + 15*.10 = 13.95 + 20 + 13.5 + 1.5 = 48.95
			name:     "typical",
			comps:    Components{DistanceScore: 93, EquipmentScore: 100, OnTimeScore: 90, CapacityScore: 15},
			expected: 49,
		},
		{
			name:     "penalty floors at zero",
			comps:    Components{DistanceScore: 70, PenaltyScore: 110},
			expected: 0,
		},
		{
			// 70*.15 + 100*.20 = 30.5 rounds half up
			name:     "half rounds up",
			comps:    Components{DistanceScore: 70, EquipmentScore: 100},
			expected: 31,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := tt.comps.Total()
			assert.Equal(t, tt.expected, total)
			assert.GreaterOrEqual(t, total, 0)
		})
	}
}
