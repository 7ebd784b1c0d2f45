package matching

import (
	"context"

	"carrier-matching/internal/models"
)

// LookupStatus is the outcome of a preferred-lane lookup.
type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupFailed:
		return "failed"
	default:
		return "not_found"
	}
}

// LaneLookup carries the bonus of a found lane, or the reason a lookup failed.
// A failed lookup scores exactly like NotFound.
type LaneLookup struct {
	Status LookupStatus
	Bonus  *float64
	Reason string
}

func (l LaneLookup) Found() bool { return l.Status == LookupFound }

func found(bonus *float64) LaneLookup {
	return LaneLookup{Status: LookupFound, Bonus: bonus}
}

func failed(err error) LaneLookup {
	return LaneLookup{Status: LookupFailed, Reason: err.Error()}
}

// CarrierLaneMatch holds the city-level and state-level carrier lane lookups.
type CarrierLaneMatch struct {
	Exact LaneLookup
	State LaneLookup
}

// Failed reports whether either level could not be looked up.
func (m CarrierLaneMatch) Failed() bool {
	return m.Exact.Status == LookupFailed || m.State.Status == LookupFailed
}

// CityLane is the load's pickup/drop city pair.
func CityLane(load *models.Load) models.Lane {
	return models.Lane{Origin: load.PickupCity, Destination: load.DropCity}
}

// StateLane is the load's pickup/drop state pair.
func StateLane(load *models.Load) models.Lane {
	return models.Lane{Origin: load.PickupState, Destination: load.DropState}
}

// laneCovers reports whether a stored lane satisfies the wanted lane. A blank
// end on the wanted side matches any stored value, so a blank lane covers
// every stored lane.
func laneCovers(want models.Lane, origin, destination string) bool {
	if want.Origin != "" && want.Origin != origin {
		return false
	}
	if want.Destination != "" && want.Destination != destination {
		return false
	}
	return true
}

// ResolveCarrierLanes fetches carrier preferred lanes for all candidates in one
// query and classifies them per carrier. The city lane is always looked up;
// when the load has no cities any lane the carrier prefers is an exact match.
// The state-level lane is only considered when the load has at least one
// state. A store error marks every carrier's lookups as failed rather than
// failing the call.
func ResolveCarrierLanes(ctx context.Context, store Store, load *models.Load, carrierIDs []int64) (map[int64]CarrierLaneMatch, error) {
	out := make(map[int64]CarrierLaneMatch, len(carrierIDs))
	if len(carrierIDs) == 0 {
		return out, nil
	}

	city := CityLane(load)
	state := StateLane(load)

	lanes := []models.Lane{city}
	if !state.IsZero() {
		lanes = append(lanes, state)
	}

	rows, err := store.CarrierPreferredLanes(ctx, carrierIDs, lanes)
	if err != nil {
		miss := CarrierLaneMatch{Exact: failed(err), State: failed(err)}
		for _, id := range carrierIDs {
			out[id] = miss
		}
		return out, err
	}

	for _, row := range rows {
		m := out[row.CarrierID]
		if !m.Exact.Found() && laneCovers(city, row.Origin, row.Destination) {
			m.Exact = found(row.Bonus)
		} else if !state.IsZero() && !m.State.Found() && laneCovers(state, row.Origin, row.Destination) {
			m.State = found(row.Bonus)
		}
		out[row.CarrierID] = m
	}
	return out, nil
}

// ResolveShipperLane looks up the shipper's preferred lane for the load's
// cities. A load without cities takes the shipper's first lane. It is carrier
// independent, so it runs once per match request. A found lane without a
// bonus yields a bonus of zero.
func ResolveShipperLane(ctx context.Context, store Store, load *models.Load) LaneLookup {
	if load.ShipperID == nil || *load.ShipperID == 0 {
		return LaneLookup{Status: LookupNotFound}
	}
	lane, err := store.ShipperPreferredLane(ctx, *load.ShipperID, CityLane(load))
	if err != nil {
		return failed(err)
	}
	if lane == nil {
		return LaneLookup{Status: LookupNotFound}
	}

	bonus := 0.0
	if lane.Bonus != nil {
		bonus = *lane.Bonus
	}
	return found(&bonus)
}
