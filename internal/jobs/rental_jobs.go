package jobs

import (
	"context"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/repository"
)

// StartSignedRentals moves signed rentals whose start day has arrived to
// in-progress and marks their vehicles as rented.
func (jr *JobRunner) StartSignedRentals() {
	jr.runWithRecovery("StartSignedRentals", func(ctx context.Context) error {
		today := jr.today()
		return jr.tx.WithTx(ctx, func(tx repository.Repositories) error {
			started, err := tx.StartDueRentals(ctx, today)
			if err != nil {
				return err
			}
			for _, rt := range started {
				if err := tx.SetVehicleStatus(ctx, rt.VehicleID, domain.VehicleStatusRented); err != nil {
					return err
				}
				logger.Debug("Rental started",
					"rental_id", rt.ID,
					"driver_id", rt.DriverID,
					"vehicle_id", rt.VehicleID,
					"start_date", rt.StartDate)
			}
			logger.Info("Started signed rentals", "count", len(started), "today", today)
			return nil
		})
	})
}

// FinishRentals closes in-progress rentals whose last day has passed and
// releases their vehicles unless another rental is already under way.
func (jr *JobRunner) FinishRentals() {
	jr.runWithRecovery("FinishRentals", func(ctx context.Context) error {
		today := jr.today()
		return jr.tx.WithTx(ctx, func(tx repository.Repositories) error {
			finished, err := tx.FinishDueRentals(ctx, today)
			if err != nil {
				return err
			}
			for _, rt := range finished {
				logger.Debug("Rental finished",
					"rental_id", rt.ID,
					"vehicle_id", rt.VehicleID,
					"end_date", rt.EndDate)

				// A back-to-back rental may already have taken the vehicle
				busy, err := tx.HasRentalInProgress(ctx, rt.VehicleID)
				if err != nil {
					return err
				}
				if busy {
					continue
				}
				if err := tx.SetVehicleStatus(ctx, rt.VehicleID, domain.VehicleStatusAvailable); err != nil {
					return err
				}
			}
			logger.Info("Finished rentals", "count", len(finished), "today", today)
			return nil
		})
	})
}
