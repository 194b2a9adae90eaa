package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/service"
)

func TestAssertOwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	owned := ownerID
	vehicle := &domain.Vehicle{ID: vehicleID, OwnerID: &owned, Marca: "Fiat", Modelo: "Argo"}

	t.Run("Owner", func(t *testing.T) {
		repo := new(MockVehicleRepo)
		repo.On("GetVehicle", ctx, vehicleID).Return(vehicle, nil)

		v, err := service.AssertOwnerOrAdmin(ctx, repo, owner, vehicleID)
		require.NoError(t, err)
		assert.Equal(t, vehicle, v)
		repo.AssertExpectations(t)
	})

	t.Run("Admin", func(t *testing.T) {
		repo := new(MockVehicleRepo)
		repo.On("GetVehicle", ctx, vehicleID).Return(vehicle, nil)

		_, err := service.AssertOwnerOrAdmin(ctx, repo, admin, vehicleID)
		assert.NoError(t, err)
	})

	t.Run("Forbidden", func(t *testing.T) {
		repo := new(MockVehicleRepo)
		repo.On("GetVehicle", ctx, vehicleID).Return(vehicle, nil)

		for _, p := range []domain.Principal{otherOwner, driver, {ID: ownerID, Role: domain.RoleDriver}} {
			_, err := service.AssertOwnerOrAdmin(ctx, repo, p, vehicleID)
			var forbidden *domain.ErrForbidden
			assert.ErrorAs(t, err, &forbidden, "principal %+v", p)
		}
	})

	t.Run("Vehicle without owner", func(t *testing.T) {
		repo := new(MockVehicleRepo)
		repo.On("GetVehicle", ctx, ownerlessVehID).Return(&domain.Vehicle{ID: ownerlessVehID}, nil)

		_, err := service.AssertOwnerOrAdmin(ctx, repo, admin, ownerlessVehID)
		var notFound *domain.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("Vehicle not found", func(t *testing.T) {
		repo := new(MockVehicleRepo)
		repo.On("GetVehicle", ctx, int32(99)).Return(nil, &domain.ErrNotFound{Resource: "veiculo", ID: 99})

		_, err := service.AssertOwnerOrAdmin(ctx, repo, owner, 99)
		var notFound *domain.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}
