package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/repository"
)

const rentalColumns = `id, motorista_id, veiculo_id, solicitacao_id, data_inicio, data_fim, valor_por_dia, valor_total, status, criado_em`

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row scanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var start, end, created time.Time
	if err := row.Scan(&rt.ID, &rt.DriverID, &rt.VehicleID, &rt.RequestID, &start, &end, &rt.DailyRate, &rt.TotalAmount, &rt.Status, &created); err != nil {
		return nil, err
	}
	rt.StartDate = start.Format("2006-01-02")
	rt.EndDate = end.Format("2006-01-02")
	rt.CreatedAt = created.UTC().Format(time.RFC3339)
	return rt, nil
}

func (r *rentalRepository) CreateRental(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.CreateRental", "requestID", rt.RequestID, "vehicleID", rt.VehicleID)

	query := `INSERT INTO alugueis (motorista_id, veiculo_id, solicitacao_id, data_inicio, data_fim, valor_por_dia, valor_total, status, criado_em, atualizado_em)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "alugueis", "requestID", rt.RequestID)
	err := r.db.QueryRowContext(ctx, query, rt.DriverID, rt.VehicleID, rt.RequestID, rt.StartDate, rt.EndDate, rt.DailyRate, rt.TotalAmount, rt.Status, now, now).Scan(&rt.ID)
	logger.DatabaseResult("INSERT", 1, err, "rentalID", rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.CreateRental", err)
		return err
	}
	rt.CreatedAt = now.Format(time.RFC3339)

	logger.ExitMethod("rentalRepository.CreateRental", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetRental(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM alugueis WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "aluguel", ID: id}
	}
	return rt, err
}

func (r *rentalRepository) HasOverlappingRental(ctx context.Context, vehicleID int32, startDate, endDate string) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM alugueis
	            WHERE veiculo_id = $1
	              AND status = ANY($2)
	              AND NOT (data_fim < $3 OR data_inicio > $4)
	          )`
	statuses := make([]string, len(domain.ActiveRentalStatuses))
	for i, s := range domain.ActiveRentalStatuses {
		statuses[i] = string(s)
	}

	var exists bool
	logger.DatabaseCall("SELECT", "alugueis", "vehicleID", vehicleID, "start", startDate, "end", endDate)
	err := r.db.QueryRowContext(ctx, query, vehicleID, pq.Array(statuses), startDate, endDate).Scan(&exists)
	return exists, err
}

func (r *rentalRepository) SetRentalStatus(ctx context.Context, id int32, status domain.RentalStatus) error {
	query := `UPDATE alugueis SET status = $1, atualizado_em = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *rentalRepository) UpdateRentalTerms(ctx context.Context, id int32, dailyRate, total float64) error {
	query := `UPDATE alugueis SET valor_por_dia = $1, valor_total = $2, atualizado_em = NOW() WHERE id = $3`
	logger.DatabaseCall("UPDATE", "alugueis", "rentalID", id, "operation", "terms")
	_, err := r.db.ExecContext(ctx, query, dailyRate, total, id)
	return err
}

func (r *rentalRepository) HasRentalInProgress(ctx context.Context, vehicleID int32) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM alugueis WHERE veiculo_id = $1 AND status = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, vehicleID, domain.RentalStatusInProgress).Scan(&exists)
	return exists, err
}

func (r *rentalRepository) StartDueRentals(ctx context.Context, today string) ([]domain.Rental, error) {
	query := `UPDATE alugueis SET status = $1, atualizado_em = NOW()
	          WHERE status = $2 AND data_inicio <= $3
	          RETURNING ` + rentalColumns
	return r.transition(ctx, query, domain.RentalStatusInProgress, domain.RentalStatusSigned, today)
}

func (r *rentalRepository) FinishDueRentals(ctx context.Context, today string) ([]domain.Rental, error) {
	query := `UPDATE alugueis SET status = $1, atualizado_em = NOW()
	          WHERE status = $2 AND data_fim < $3
	          RETURNING ` + rentalColumns
	return r.transition(ctx, query, domain.RentalStatusFinished, domain.RentalStatusInProgress, today)
}

func (r *rentalRepository) transition(ctx context.Context, query string, to, from domain.RentalStatus, today string) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, to, from, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}
