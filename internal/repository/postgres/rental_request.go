package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/repository"
)

const requestColumns = `s.id, s.motorista_id, s.veiculo_id, s.data_inicio, s.data_fim, s.status, s.motivo_recusa,
	s.visto_por_motorista, s.visto_por_proprietario, s.criado_em`

type rentalRequestRepository struct {
	db DBTX
}

func NewRentalRequestRepository(db DBTX) repository.RentalRequestRepository {
	return &rentalRequestRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner, withVehicle bool) (*domain.RentalRequest, error) {
	rq := &domain.RentalRequest{}
	var start, end, created time.Time
	var reason sql.NullString
	dest := []any{&rq.ID, &rq.DriverID, &rq.VehicleID, &start, &end, &rq.Status, &reason,
		&rq.SeenByDriver, &rq.SeenByOwner, &created}
	var v domain.VehicleSummary
	if withVehicle {
		dest = append(dest, &v.Marca, &v.Modelo, &v.Placa)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rq.StartDate = start.Format("2006-01-02")
	rq.EndDate = end.Format("2006-01-02")
	rq.CreatedAt = created.UTC().Format(time.RFC3339)
	if reason.Valid {
		rq.RefusalReason = &reason.String
	}
	if withVehicle {
		rq.Vehicle = &v
	}
	return rq, nil
}

func (r *rentalRequestRepository) CreateRequest(ctx context.Context, rq *domain.RentalRequest) error {
	logger.EnterMethod("rentalRequestRepository.CreateRequest", "driverID", rq.DriverID, "vehicleID", rq.VehicleID)

	query := `INSERT INTO solicitacoes_aluguel (motorista_id, veiculo_id, data_inicio, data_fim, status, visto_por_motorista, visto_por_proprietario, criado_em)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "solicitacoes_aluguel", "driverID", rq.DriverID)
	err := r.db.QueryRowContext(ctx, query, rq.DriverID, rq.VehicleID, rq.StartDate, rq.EndDate, rq.Status, rq.SeenByDriver, rq.SeenByOwner, now).Scan(&rq.ID)
	logger.DatabaseResult("INSERT", 1, err, "requestID", rq.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRequestRepository.CreateRequest", err)
		return err
	}
	rq.CreatedAt = now.Format(time.RFC3339)

	logger.ExitMethod("rentalRequestRepository.CreateRequest", "requestID", rq.ID)
	return nil
}

func (r *rentalRequestRepository) GetRequest(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	return r.get(ctx, id, "")
}

func (r *rentalRequestRepository) GetRequestForUpdate(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *rentalRequestRepository) get(ctx context.Context, id int32, lock string) (*domain.RentalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM solicitacoes_aluguel s WHERE s.id = $1` + lock
	rq, err := scanRequest(r.db.QueryRowContext(ctx, query, id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "solicitacao", ID: id}
	}
	return rq, err
}

func (r *rentalRequestRepository) DecideRequest(ctx context.Context, id int32, status domain.RentalRequestStatus, reason *string) (bool, error) {
	query := `UPDATE solicitacoes_aluguel
	          SET status = $1, motivo_recusa = $2, visto_por_motorista = FALSE, visto_por_proprietario = TRUE
	          WHERE id = $3 AND status = $4`
	logger.DatabaseCall("UPDATE", "solicitacoes_aluguel", "requestID", id, "status", status)
	res, err := r.db.ExecContext(ctx, query, status, reason, id, domain.RequestStatusPending)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return false, err
	}
	return rowsAffected(res)
}

func (r *rentalRequestRepository) MarkRequestSeen(ctx context.Context, id int32, party domain.Party) error {
	col, err := seenColumn(party)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE solicitacoes_aluguel SET %s = TRUE WHERE id = $1`, col)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ErrNotFound{Resource: "solicitacao", ID: id}
	}
	return nil
}

func (r *rentalRequestRepository) ListRequestsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.RentalRequest, error) {
	query := `SELECT ` + requestColumns + `, v.marca, v.modelo, v.placa
	          FROM solicitacoes_aluguel s JOIN veiculos v ON v.id = s.veiculo_id
	          WHERE s.motorista_id = $1`
	if unseenOnly {
		query += ` AND s.visto_por_motorista = FALSE`
	}
	return r.list(ctx, query+` ORDER BY s.criado_em DESC`, driverID)
}

func (r *rentalRequestRepository) ListRequestsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.RentalRequest, error) {
	query := `SELECT ` + requestColumns + `, v.marca, v.modelo, v.placa
	          FROM solicitacoes_aluguel s JOIN veiculos v ON v.id = s.veiculo_id
	          WHERE v.proprietario_id = $1`
	if unseenOnly {
		query += ` AND s.visto_por_proprietario = FALSE`
	}
	return r.list(ctx, query+` ORDER BY s.criado_em DESC`, ownerID)
}

func (r *rentalRequestRepository) ListAllRequests(ctx context.Context) ([]domain.RentalRequest, error) {
	query := `SELECT ` + requestColumns + `, v.marca, v.modelo, v.placa
	          FROM solicitacoes_aluguel s JOIN veiculos v ON v.id = s.veiculo_id
	          ORDER BY s.criado_em DESC`
	return r.list(ctx, query)
}

func (r *rentalRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.RentalRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []domain.RentalRequest{}
	for rows.Next() {
		rq, err := scanRequest(rows, true)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *rq)
	}
	return requests, rows.Err()
}

func (r *rentalRequestRepository) CountUnseenRequests(ctx context.Context, party domain.Party, partyID int32) (int, error) {
	var query string
	switch party {
	case domain.PartyDriver:
		query = `SELECT COUNT(*) FROM solicitacoes_aluguel WHERE motorista_id = $1 AND visto_por_motorista = FALSE`
	case domain.PartyOwner:
		query = `SELECT COUNT(*) FROM solicitacoes_aluguel s JOIN veiculos v ON v.id = s.veiculo_id
		         WHERE v.proprietario_id = $1 AND s.visto_por_proprietario = FALSE`
	default:
		return 0, fmt.Errorf("unknown party %q", party)
	}

	var n int
	err := r.db.QueryRowContext(ctx, query, partyID).Scan(&n)
	return n, err
}

func seenColumn(party domain.Party) (string, error) {
	switch party {
	case domain.PartyDriver:
		return "visto_por_motorista", nil
	case domain.PartyOwner:
		return "visto_por_proprietario", nil
	default:
		return "", fmt.Errorf("unknown party %q", party)
	}
}
