// internal/models/carrier.go
package models

import "time"

const ComplianceStatusPass = "PASS"

type Carrier struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Active               bool       `json:"active"`
	Blocked              bool       `json:"blocked"`
	Disqualified         *bool      `json:"disqualified,omitempty"`
	ComplianceStatus     string     `json:"complianceStatus"`
	FmcsaAuthorized      *bool      `json:"fmcsaAuthorized,omitempty"`
	FmcsaLastSyncAt      *time.Time `json:"fmcsaLastSyncAt,omitempty"`
	OnTimePercentage     *float64   `json:"onTimePercentage,omitempty"`
	PowerUnits           *int       `json:"powerUnits,omitempty"`
	RecentLoadsDelivered *int       `json:"recentLoadsDelivered,omitempty"`
	EquipmentTypes       string     `json:"equipmentTypes"`
	Phone                string     `json:"phone,omitempty"`
	Email                string     `json:"email,omitempty"`
	City                 string     `json:"city,omitempty"`
	State                string     `json:"state,omitempty"`
	McNumber             string     `json:"mcNumber,omitempty"`
	DotNumber            string     `json:"dotNumber,omitempty"`
}

// IsDisqualified treats a null flag as not disqualified.
func (c Carrier) IsDisqualified() bool {
	return c.Disqualified != nil && *c.Disqualified
}

// CarrierVentureStats overrides a carrier's global performance fields for one venture.
type CarrierVentureStats struct {
	VentureID            int64    `json:"ventureId"`
	CarrierID            int64    `json:"carrierId"`
	OnTimePct            *float64 `json:"onTimePct,omitempty"`
	RecentLoadsDelivered *int     `json:"recentLoadsDelivered,omitempty"`
	LaneAffinityScore    *float64 `json:"laneAffinityScore,omitempty"`
}

type CarrierDispatcher struct {
	ID                     string `json:"id"`
	CarrierID              int64  `json:"-"`
	Name                   string `json:"name"`
	Role                   string `json:"role,omitempty"`
	Phone                  string `json:"phone,omitempty"`
	Mobile                 string `json:"mobile,omitempty"`
	Email                  string `json:"email,omitempty"`
	PreferredContactMethod string `json:"preferredContactMethod,omitempty"`
	IsPrimary              bool   `json:"-"`
}

// Lane is an origin/destination pair at either city or state granularity.
type Lane struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// IsZero reports whether neither end of the lane is known.
func (l Lane) IsZero() bool {
	return l.Origin == "" && l.Destination == ""
}

type CarrierPreferredLane struct {
	ID          int64    `json:"id"`
	CarrierID   int64    `json:"carrierId"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Bonus       *float64 `json:"bonus,omitempty"`
}

type ShipperPreferredLane struct {
	ID          int64    `json:"id"`
	ShipperID   int64    `json:"shipperId"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Bonus       *float64 `json:"bonus,omitempty"`
}
