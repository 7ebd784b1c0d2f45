package matching

import (
	"context"
	"errors"
	"time"

	"carrier-matching/internal/models"
)

// ErrLoadNotFound is returned (wrapped) when the requested load has no record.
var ErrLoadNotFound = errors.New("load not found")

// Lane history only counts loads that reached one of these statuses.
var LaneHistoryStatuses = []string{"DELIVERED", "COVERED"}

// LaneDeliveryQuery selects the grouped delivery rows used for lane history.
type LaneDeliveryQuery struct {
	CarrierIDs []int64
	Since      time.Time
	VentureID  *int64
	Statuses   []string
}

// Store is the read side the engine depends on. Implementations must return
// ErrLoadNotFound from LoadByID when no row exists, and nil, nil from
// ShipperPreferredLane when no lane is configured.
type Store interface {
	LoadByID(ctx context.Context, id int64) (*models.Load, error)
	EligibleCarriers(ctx context.Context, filter CarrierFilter) ([]models.Carrier, error)
	VentureStats(ctx context.Context, ventureID int64, carrierIDs []int64) ([]models.CarrierVentureStats, error)
	LaneDeliveries(ctx context.Context, q LaneDeliveryQuery) ([]models.LaneDeliveryGroup, error)
	CarrierPreferredLanes(ctx context.Context, carrierIDs []int64, lanes []models.Lane) ([]models.CarrierPreferredLane, error)
	ShipperPreferredLane(ctx context.Context, shipperID int64, lane models.Lane) (*models.ShipperPreferredLane, error)
	PrimaryDispatchers(ctx context.Context, carrierIDs []int64) ([]models.CarrierDispatcher, error)
}
