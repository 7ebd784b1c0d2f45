package matching

import (
	"context"
	"errors"
	"testing"

	"carrier-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCarrierLanes(t *testing.T) {
	store := &fakeStore{
		carrierLanes: []models.CarrierPreferredLane{
			{CarrierID: 1, Origin: "Dallas", Destination: "Houston", Bonus: floatPtr(12)},
			{CarrierID: 2, Origin: "TX", Destination: "TX"},
			{CarrierID: 3, Origin: "Tulsa", Destination: "Houston"},
			{CarrierID: 9, Origin: "Dallas", Destination: "Houston"},
		},
	}

	lanes, err := ResolveCarrierLanes(context.Background(), store, dallasHoustonLoad(), []int64{1, 2, 3})
	require.NoError(t, err)

	assert.True(t, lanes[1].Exact.Found())
	assert.Equal(t, floatPtr(12), lanes[1].Exact.Bonus)
	assert.False(t, lanes[2].Exact.Found())
	assert.True(t, lanes[2].State.Found())
	assert.Equal(t, LookupNotFound, lanes[3].Exact.Status)
	assert.Equal(t, LookupNotFound, lanes[3].State.Status)
	_, ok := lanes[9]
	assert.False(t, ok, "carriers outside the candidate set are never classified")
}

func TestResolveCarrierLanes_PartialLaneIsWildcard(t *testing.T) {
	store := &fakeStore{
		carrierLanes: []models.CarrierPreferredLane{
			{CarrierID: 1, Origin: "Dallas", Destination: "Anywhere"},
		},
	}
	load := &models.Load{PickupCity: "Dallas"}

	lanes, err := ResolveCarrierLanes(context.Background(), store, load, []int64{1})
	require.NoError(t, err)
	assert.True(t, lanes[1].Exact.Found())
}

func TestResolveCarrierLanes_LoadWithoutCitiesMatchesAnyLane(t *testing.T) {
	store := &fakeStore{
		carrierLanes: []models.CarrierPreferredLane{
			{CarrierID: 1, Origin: "Dallas", Destination: "Houston", Bonus: floatPtr(8)},
		},
	}

	lanes, err := ResolveCarrierLanes(context.Background(), store, &models.Load{}, []int64{1, 2})
	require.NoError(t, err)
	assert.True(t, lanes[1].Exact.Found())
	assert.Equal(t, floatPtr(8), lanes[1].Exact.Bonus)
	assert.False(t, lanes[2].Exact.Found())
	assert.False(t, lanes[2].Failed())
}

func TestResolveCarrierLanes_Failure(t *testing.T) {
	store := &fakeStore{carrierLaneErr: errors.New("connection reset")}

	lanes, err := ResolveCarrierLanes(context.Background(), store, dallasHoustonLoad(), []int64{1, 2})
	require.Error(t, err)

	for _, id := range []int64{1, 2} {
		assert.True(t, lanes[id].Failed())
		assert.False(t, lanes[id].Exact.Found())
		assert.Equal(t, "connection reset", lanes[id].Exact.Reason)
	}
}

func TestResolveShipperLane(t *testing.T) {
	lanes := []models.ShipperPreferredLane{
		{ShipperID: 5, Origin: "Dallas", Destination: "Houston", Bonus: floatPtr(15)},
		{ShipperID: 6, Origin: "Dallas", Destination: "Houston"},
	}

	withShipper := func(id int64) *models.Load {
		l := dallasHoustonLoad()
		l.ShipperID = int64Ptr(id)
		return l
	}

	tests := []struct {
		name           string
		store          *fakeStore
		load           *models.Load
		expectedStatus LookupStatus
		expectedBonus  *float64
	}{
		{"found with bonus", &fakeStore{shipperLanes: lanes}, withShipper(5), LookupFound, floatPtr(15)},
		{"found without bonus defaults to zero", &fakeStore{shipperLanes: lanes}, withShipper(6), LookupFound, floatPtr(0)},
		{"no lane for shipper", &fakeStore{shipperLanes: lanes}, withShipper(7), LookupNotFound, nil},
		{"no shipper on load", &fakeStore{shipperLanes: lanes}, dallasHoustonLoad(), LookupNotFound, nil},
		{"zero shipper id", &fakeStore{shipperLanes: lanes}, withShipper(0), LookupNotFound, nil},
		{"load without cities takes first lane", &fakeStore{shipperLanes: lanes}, &models.Load{ShipperID: int64Ptr(5)}, LookupFound, floatPtr(15)},
		{"store error", &fakeStore{shipperLaneErr: errors.New("timeout")}, withShipper(5), LookupFailed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveShipperLane(context.Background(), tt.store, tt.load)
			assert.Equal(t, tt.expectedStatus, got.Status)
			assert.Equal(t, tt.expectedBonus, got.Bonus)
		})
	}
}

func TestLookupStatus_String(t *testing.T) {
	assert.Equal(t, "found", LookupFound.String())
	assert.Equal(t, "failed", LookupFailed.String())
	assert.Equal(t, "not_found", LookupNotFound.String())
}
