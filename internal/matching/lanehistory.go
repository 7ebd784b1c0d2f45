package matching

import (
	"math"
	"strings"
	"time"

	"carrier-matching/internal/models"
)

// daysAgo used when a carrier has matching history but no delivery timestamp.
const noRecentDeliveryDays = 365

// AggregateLaneHistory folds grouped delivery rows into per-carrier history for
// the load's lane. A row is an exact match when both cities equal the load's
// (case-insensitive), otherwise a state match when both states do. A missing
// end equals another missing end, so a load and a row that both lack cities
// are an exact match. Rows that match neither are ignored and do not count
// toward TotalDelivered.
func AggregateLaneHistory(load *models.Load, groups []models.LaneDeliveryGroup) map[int64]models.LaneHistory {
	out := make(map[int64]models.LaneHistory)
	if load == nil {
		return out
	}

	for _, g := range groups {
		if g.CarrierID == 0 || g.Count <= 0 {
			continue
		}

		exact := sameEnds(g.PickupCity, g.DropCity, load.PickupCity, load.DropCity)
		state := !exact && sameEnds(g.PickupState, g.DropState, load.PickupState, load.DropState)
		if !exact && !state {
			continue
		}

		h := out[g.CarrierID]
		if exact {
			h.ExactCityMatches += g.Count
		} else {
			h.StateMatches += g.Count
		}
		h.TotalDelivered += g.Count

		if g.LastDeliveredAt != nil {
			if h.MostRecentDelivery == nil || g.LastDeliveredAt.After(*h.MostRecentDelivery) {
				t := *g.LastDeliveredAt
				h.MostRecentDelivery = &t
			}
		}
		out[g.CarrierID] = h
	}
	return out
}

// sameEnds compares a row's lane ends with the load's. Blank and null ends
// both arrive as "" and compare equal to each other.
func sameEnds(rowFrom, rowTo, loadFrom, loadTo string) bool {
	return strings.EqualFold(strings.TrimSpace(rowFrom), strings.TrimSpace(loadFrom)) &&
		strings.EqualFold(strings.TrimSpace(rowTo), strings.TrimSpace(loadTo))
}

// DaysSinceDelivery returns whole days (rounded) between the most recent
// delivery and now, or 365 when no timestamp is known.
func DaysSinceDelivery(h models.LaneHistory, now time.Time) int {
	if h.MostRecentDelivery == nil {
		return noRecentDeliveryDays
	}
	days := now.Sub(*h.MostRecentDelivery).Hours() / 24
	return int(roundHalfUp(days))
}

func recencyMultiplier(daysAgo int) float64 {
	switch {
	case daysAgo <= 30:
		return 1.0
	case daysAgo <= 90:
		return 0.85
	case daysAgo <= 180:
		return 0.7
	default:
		return 0.5
	}
}

// ScoreLaneHistory scores a carrier's history on the lane, weighting exact
// city matches over state matches and decaying by recency.
func ScoreLaneHistory(h models.LaneHistory, daysAgo int) int {
	if h.TotalDelivered == 0 {
		return 0
	}

	base := min(h.ExactCityMatches*25, 75) +
		min(h.StateMatches*10, 30) +
		min(h.TotalDelivered*3, 20)

	return clampInt(int(roundHalfUp(float64(base)*recencyMultiplier(daysAgo))), 0, 100)
}

// laneHistoryWindow returns the start of the trailing lookback window.
func laneHistoryWindow(now time.Time, months int) time.Time {
	if months <= 0 {
		months = DefaultLaneHistoryMonths
	}
	return now.AddDate(0, -months, 0)
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
