package service

import (
	"context"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/repository"
)

// AssertOwnerOrAdmin returns the vehicle when p is its registered owner or an
// admin. A vehicle without an owner on record is reported as not found.
func AssertOwnerOrAdmin(ctx context.Context, vehicles repository.VehicleRepository, p domain.Principal, vehicleID int32) (*domain.Vehicle, error) {
	v, err := vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v.OwnerID == nil {
		return nil, &domain.ErrNotFound{Resource: "proprietario do veiculo", ID: vehicleID}
	}
	if p.IsAdmin() {
		return v, nil
	}
	if !p.IsOwner() {
		return nil, &domain.ErrForbidden{Action: "gerenciar veiculo", Reason: "apenas proprietario ou admin"}
	}
	if *v.OwnerID != p.ID {
		return nil, &domain.ErrForbidden{Action: "gerenciar veiculo", Reason: "veiculo de outro proprietario"}
	}
	return v, nil
}

// isVehicleOwner reports whether p is the owner-role principal registered on v.
func isVehicleOwner(p domain.Principal, v *domain.Vehicle) bool {
	return p.IsOwner() && v.OwnerID != nil && *v.OwnerID == p.ID
}

func vehicleLabel(v *domain.Vehicle) string {
	return v.Marca + " " + v.Modelo + " (" + v.Placa + ")"
}

// authorizeMarkRead checks that p is the specific party whose seen flag is
// being cleared: the entity's driver, or the owner of its vehicle. Admins
// have no flag of their own to clear.
func authorizeMarkRead(ctx context.Context, vehicles repository.VehicleRepository, p domain.Principal, party domain.Party, driverID, vehicleID int32) error {
	switch party {
	case domain.PartyDriver:
		if p.IsDriver() && p.ID == driverID {
			return nil
		}
	case domain.PartyOwner:
		v, err := vehicles.GetVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		if isVehicleOwner(p, v) {
			return nil
		}
	default:
		return &domain.ErrValidation{Field: "party", Message: "invalid party"}
	}
	return &domain.ErrForbidden{Action: "marcar como lido", Reason: "nao e a parte indicada"}
}
