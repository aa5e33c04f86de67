package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverhub/internal/vehicle"
	"driverhub/internal/vehicle/store"
	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

func TestUpsertReplacesKeepingIdentity(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemoryStore()
	driverID := domain.NewDriverID()

	first := vehicle.Vehicle{
		ID:          domain.NewVehicleID(),
		DriverID:    driverID,
		Make:        "Ford",
		MaxWeightKg: 800,
		MaxVolumeM3: 6,
		MaxPackages: 60,
	}
	require.NoError(t, s.Upsert(ctx, first))

	replacement := vehicle.Vehicle{
		ID:          domain.NewVehicleID(),
		DriverID:    driverID,
		Make:        "Mercedes",
		MaxWeightKg: 1200,
		MaxVolumeM3: 9,
		MaxPackages: 90,
	}
	require.NoError(t, s.Upsert(ctx, replacement))

	found, err := s.FindByDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID, "replace keeps the original identity")
	assert.Equal(t, "Mercedes", found.Make)
	assert.Equal(t, 1200.0, found.MaxWeightKg)
}

func TestFindByDriverNotFound(t *testing.T) {
	s := store.NewInMemoryStore()
	_, err := s.FindByDriver(context.Background(), domain.NewDriverID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
