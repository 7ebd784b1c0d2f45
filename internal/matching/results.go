package matching

import (
	"time"

	"carrier-matching/internal/models"
)

// Components is the per-factor breakdown behind a match's total score.
type Components struct {
	DistanceScore      int     `json:"distanceScore"`
	EquipmentScore     int     `json:"equipmentScore"`
	PreferredLaneScore float64 `json:"preferredLaneScore"`
	LaneHistoryScore   int     `json:"laneHistoryScore"`
	BonusScore         float64 `json:"bonusScore"`
	OnTimeScore        int     `json:"onTimeScore"`
	CapacityScore      int     `json:"capacityScore"`
	PenaltyScore       int     `json:"penaltyScore"`
}

type FmcsaHealth struct {
	Authorized       *bool      `json:"authorized"`
	ComplianceStatus string     `json:"complianceStatus"`
	McNumber         string     `json:"mcNumber,omitempty"`
	DotNumber        string     `json:"dotNumber,omitempty"`
	LastSyncedAt     *time.Time `json:"lastSyncedAt,omitempty"`
}

type Contact struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

type MatchResult struct {
	CarrierID              int64                     `json:"carrierId"`
	CarrierName            string                    `json:"carrierName"`
	TotalScore             int                       `json:"totalScore"`
	Components             Components                `json:"components"`
	Reasons                []string                  `json:"reasons"`
	FmcsaHealth            *FmcsaHealth              `json:"fmcsaHealth,omitempty"`
	PowerUnits             *int                      `json:"powerUnits,omitempty"`
	EquipmentTypes         string                    `json:"equipmentTypes"`
	OnTimePercentage       *float64                  `json:"onTimePercentage"`
	GlobalOnTimePercentage *float64                  `json:"globalOnTimePercentage"`
	VentureScoped          bool                      `json:"ventureScoped"`
	StatsSource            StatsSource               `json:"statsSource"`
	Contact                Contact                   `json:"contact"`
	PrimaryDispatcher      *models.CarrierDispatcher `json:"primaryDispatcher"`
}

// MatchResultSet is the ranked output of one GetMatchesForLoad call.
type MatchResultSet struct {
	LoadID          int64            `json:"loadId"`
	VentureID       *int64           `json:"ventureId"`
	Matches         []MatchResult    `json:"matches"`
	TotalCandidates int              `json:"totalCandidates"`
	Options         EffectiveOptions `json:"options"`
}
