// internal/models/load.go
package models

import (
	"encoding/json"
	"time"
)

// Load is the freight load a match request is computed for.
type Load struct {
	ID            int64        `json:"id"`
	VentureID     *int64       `json:"ventureId,omitempty"`
	ShipperID     *int64       `json:"shipperId,omitempty"`
	PickupCity    string       `json:"pickupCity"`
	PickupState   string       `json:"pickupState"`
	DropCity      string       `json:"dropCity"`
	DropState     string       `json:"dropState"`
	Miles         *float64     `json:"miles,omitempty"`
	EquipmentType string       `json:"equipmentType"`
	Bonuses       *LoadBonuses `json:"bonuses,omitempty"`
}

// LoadBonuses is the typed form of a load's preferred_bonuses_json column.
type LoadBonuses struct {
	DefaultBonus *float64 `json:"defaultBonus,omitempty"`
}

// ParseLoadBonuses decodes the raw bonus blob stored on a load. Empty, malformed
// or non-object payloads return nil. A null or non-numeric defaultBonus leaves
// DefaultBonus nil.
func ParseLoadBonuses(raw []byte) *LoadBonuses {
	if len(raw) == 0 {
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil
	}

	bonuses := &LoadBonuses{}
	if v, ok := doc["defaultBonus"]; ok {
		var f *float64
		if err := json.Unmarshal(v, &f); err == nil {
			bonuses.DefaultBonus = f
		}
	}
	return bonuses
}

// DefaultBonusValue returns the load-level bonus, or nil when none is configured.
func (l *Load) DefaultBonusValue() *float64 {
	if l == nil || l.Bonuses == nil {
		return nil
	}
	return l.Bonuses.DefaultBonus
}

// LaneDeliveryGroup is one row of the grouped delivered-load aggregation.
type LaneDeliveryGroup struct {
	CarrierID       int64
	PickupCity      string
	PickupState     string
	DropCity        string
	DropState       string
	Count           int
	LastDeliveredAt *time.Time
}

// LaneHistory summarises a carrier's matching deliveries on a load's lane.
type LaneHistory struct {
	ExactCityMatches   int        `json:"exactCityMatches"`
	StateMatches       int        `json:"stateMatches"`
	TotalDelivered     int        `json:"totalDelivered"`
	MostRecentDelivery *time.Time `json:"mostRecentDelivery,omitempty"`
}
