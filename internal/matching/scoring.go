package matching

import "strings"

// Component weights of the blended total score.
const (
	weightDistance      = 0.15
	weightEquipment     = 0.20
	weightPreferredLane = 0.15
	weightLaneHistory   = 0.15
	weightBonus         = 0.10
	weightOnTime        = 0.15
	weightCapacity      = 0.10
)

const (
	penaltyBlocked     = 100
	penaltyLowOnTime   = 10
	lowOnTimeThreshold = 70.0

	preferredLaneExact = 40.0
	preferredLaneState = 20.0
)

// ScoreDistance decays linearly with load miles: about 50 at 1000mi, floored
// at 10. Missing or non-positive miles score a neutral 70.
func ScoreDistance(miles *float64) int {
	if miles == nil || *miles <= 0 {
		return 70
	}
	return clampInt(int(roundHalfUp(100-*miles*0.03)), 10, 100)
}

// ScoreEquipment is 100 for an exact entry in the carrier's comma-separated
// list, 80 when the list merely contains the load's equipment text, else 0.
func ScoreEquipment(loadEquip, carrierEquip string) int {
	if loadEquip == "" || carrierEquip == "" {
		return 0
	}
	want := strings.ToLower(loadEquip)
	have := strings.ToLower(carrierEquip)

	for _, e := range strings.Split(have, ",") {
		if strings.TrimSpace(e) == want {
			return 100
		}
	}
	if strings.Contains(have, want) {
		return 80
	}
	return 0
}

func ScoreOnTime(pct *float64) int {
	if pct == nil {
		return 0
	}
	return clampInt(int(roundHalfUp(*pct)), 0, 100)
}

// ScoreCapacity rewards fleet size (up to 60) and recent volume (up to 40).
func ScoreCapacity(powerUnits, recentLoads *int) int {
	pu, recent := 0, 0
	if powerUnits != nil {
		pu = *powerUnits
	}
	if recentLoads != nil {
		recent = *recentLoads
	}
	return clampInt(clampInt(pu*3, 0, 60)+clampInt(recent*2, 0, 40), 0, 100)
}

// ScorePreferredLane gives 40 for a city-level carrier lane, 20 for a
// state-level one, plus any shipper lane bonus.
func ScorePreferredLane(exact, state bool, shipperBonus *float64) float64 {
	score := 0.0
	if exact {
		score += preferredLaneExact
	} else if state {
		score += preferredLaneState
	}
	if shipperBonus != nil {
		score += *shipperBonus
	}
	return score
}

func ScoreBonus(shipperBonus, loadBonus *float64) float64 {
	score := 0.0
	if shipperBonus != nil {
		score += *shipperBonus
	}
	if loadBonus != nil {
		score += *loadBonus
	}
	return score
}

// ScorePenalty returns the penalty points and whether each penalty fired.
func ScorePenalty(blocked bool, onTimePct *float64) (score int, isBlocked, lowOnTime bool) {
	if blocked {
		score += penaltyBlocked
		isBlocked = true
	}
	if onTimePct != nil && *onTimePct < lowOnTimeThreshold {
		score += penaltyLowOnTime
		lowOnTime = true
	}
	return score, isBlocked, lowOnTime
}

// Total blends the components into the final score, never below zero.
func (c Components) Total() int {
	sum := float64(c.DistanceScore)*weightDistance +
		float64(c.EquipmentScore)*weightEquipment +
		c.PreferredLaneScore*weightPreferredLane +
		float64(c.LaneHistoryScore)*weightLaneHistory +
		c.BonusScore*weightBonus +
		float64(c.OnTimeScore)*weightOnTime +
		float64(c.CapacityScore)*weightCapacity -
		float64(c.PenaltyScore)

	return max(0, int(roundHalfUp(sum)))
}
