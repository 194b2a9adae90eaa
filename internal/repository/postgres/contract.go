package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/repository"
)

const contractColumns = `c.id, c.aluguel_id, c.solicitacao_id, c.motorista_id, c.veiculo_id, c.status, c.dados_json, c.arquivo_html,
	c.assinatura_data, c.assinatura_ip, c.visto_por_motorista, c.visto_por_proprietario, c.criado_em, c.atualizado_em`

type contractRepository struct {
	db DBTX
}

func NewContractRepository(db DBTX) repository.ContractRepository {
	return &contractRepository{db: db}
}

func scanContract(row scanner, withVehicle bool) (*domain.Contract, error) {
	c := &domain.Contract{}
	var terms []byte
	var signedAt sql.NullTime
	var signatureIP sql.NullString
	dest := []any{&c.ID, &c.RentalID, &c.RequestID, &c.DriverID, &c.VehicleID, &c.Status, &terms, &c.Document,
		&signedAt, &signatureIP, &c.SeenByDriver, &c.SeenByOwner, &c.CreatedAt, &c.UpdatedAt}
	var v domain.VehicleSummary
	if withVehicle {
		dest = append(dest, &v.Marca, &v.Modelo, &v.Placa)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(terms, &c.Terms); err != nil {
		return nil, fmt.Errorf("failed to decode dados_json of contract %d: %w", c.ID, err)
	}
	if signedAt.Valid {
		c.SignedAt = &signedAt.Time
	}
	if signatureIP.Valid {
		c.SignatureIP = &signatureIP.String
	}
	if withVehicle {
		c.Vehicle = &v
	}
	return c, nil
}

func (r *contractRepository) CreateContract(ctx context.Context, c *domain.Contract) error {
	logger.EnterMethod("contractRepository.CreateContract", "rentalID", c.RentalID, "driverID", c.DriverID)

	terms, err := json.Marshal(c.Terms)
	if err != nil {
		logger.ExitMethodWithError("contractRepository.CreateContract", err, "reason", "failed to marshal terms")
		return err
	}

	query := `INSERT INTO contratos (aluguel_id, solicitacao_id, motorista_id, veiculo_id, status, dados_json, arquivo_html,
	                                 visto_por_motorista, visto_por_proprietario, criado_em, atualizado_em)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "contratos", "rentalID", c.RentalID)
	err = r.db.QueryRowContext(ctx, query, c.RentalID, c.RequestID, c.DriverID, c.VehicleID, c.Status, terms, c.Document,
		c.SeenByDriver, c.SeenByOwner, now, now).Scan(&c.ID)
	logger.DatabaseResult("INSERT", 1, err, "contractID", c.ID)
	if err != nil {
		logger.ExitMethodWithError("contractRepository.CreateContract", err)
		return err
	}
	c.CreatedAt, c.UpdatedAt = now, now

	logger.ExitMethod("contractRepository.CreateContract", "contractID", c.ID)
	return nil
}

func (r *contractRepository) GetContract(ctx context.Context, id int32) (*domain.Contract, error) {
	return r.get(ctx, id, "")
}

func (r *contractRepository) GetContractForUpdate(ctx context.Context, id int32) (*domain.Contract, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *contractRepository) get(ctx context.Context, id int32, lock string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contratos c WHERE c.id = $1` + lock
	c, err := scanContract(r.db.QueryRowContext(ctx, query, id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "contrato", ID: id}
	}
	return c, err
}

func (r *contractRepository) UpdateContractTerms(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error) {
	raw, err := json.Marshal(terms)
	if err != nil {
		return false, err
	}
	query := `UPDATE contratos SET dados_json = $1, arquivo_html = $2, atualizado_em = NOW()
	          WHERE id = $3 AND status = $4`
	logger.DatabaseCall("UPDATE", "contratos", "contractID", id, "operation", "edit")
	res, err := r.db.ExecContext(ctx, query, raw, document, id, domain.ContractStatusNegotiating)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return false, err
	}
	return rowsAffected(res)
}

func (r *contractRepository) PublishContract(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error) {
	raw, err := json.Marshal(terms)
	if err != nil {
		return false, err
	}
	query := `UPDATE contratos
	          SET status = $1, dados_json = $2, arquivo_html = $3,
	              visto_por_motorista = FALSE, visto_por_proprietario = TRUE, atualizado_em = NOW()
	          WHERE id = $4 AND status = $5`
	logger.DatabaseCall("UPDATE", "contratos", "contractID", id, "operation", "publish")
	res, err := r.db.ExecContext(ctx, query, domain.ContractStatusReadyForSignature, raw, document, id, domain.ContractStatusNegotiating)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return false, err
	}
	return rowsAffected(res)
}

func (r *contractRepository) SignContract(ctx context.Context, id int32, sig domain.SignatureEvidence) (bool, error) {
	query := `UPDATE contratos
	          SET status = $1, assinatura_data = $2, assinatura_ip = $3,
	              visto_por_motorista = TRUE, visto_por_proprietario = FALSE, atualizado_em = $2
	          WHERE id = $4 AND status IN ($5, $6)`
	logger.DatabaseCall("UPDATE", "contratos", "contractID", id, "operation", "sign")
	res, err := r.db.ExecContext(ctx, query, domain.ContractStatusSigned, sig.At, sig.IP, id,
		domain.ContractStatusNegotiating, domain.ContractStatusReadyForSignature)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return false, err
	}
	return rowsAffected(res)
}

func (r *contractRepository) MarkContractSeen(ctx context.Context, id int32, party domain.Party) error {
	col, err := seenColumn(party)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE contratos SET %s = TRUE WHERE id = $1`, col), id)
	if err != nil {
		return err
	}
	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ErrNotFound{Resource: "contrato", ID: id}
	}
	return nil
}

func (r *contractRepository) ListContractsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + `, v.marca, v.modelo, v.placa
	          FROM contratos c JOIN veiculos v ON v.id = c.veiculo_id
	          WHERE c.motorista_id = $1`
	if unseenOnly {
		query += ` AND c.visto_por_motorista = FALSE`
	}
	return r.list(ctx, query+` ORDER BY c.atualizado_em DESC`, driverID)
}

func (r *contractRepository) ListContractsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + `, v.marca, v.modelo, v.placa
	          FROM contratos c JOIN veiculos v ON v.id = c.veiculo_id
	          WHERE v.proprietario_id = $1`
	if unseenOnly {
		query += ` AND c.visto_por_proprietario = FALSE`
	}
	return r.list(ctx, query+` ORDER BY c.atualizado_em DESC`, ownerID)
}

func (r *contractRepository) ListAllContracts(ctx context.Context) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + `, v.marca, v.modelo, v.placa
	          FROM contratos c JOIN veiculos v ON v.id = c.veiculo_id
	          ORDER BY c.atualizado_em DESC`
	return r.list(ctx, query)
}

func (r *contractRepository) list(ctx context.Context, query string, args ...any) ([]domain.Contract, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := []domain.Contract{}
	for rows.Next() {
		c, err := scanContract(rows, true)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

func (r *contractRepository) CountUnseenContracts(ctx context.Context, party domain.Party, partyID int32) (int, error) {
	var query string
	switch party {
	case domain.PartyDriver:
		query = `SELECT COUNT(*) FROM contratos WHERE motorista_id = $1 AND visto_por_motorista = FALSE`
	case domain.PartyOwner:
		query = `SELECT COUNT(*) FROM contratos c JOIN veiculos v ON v.id = c.veiculo_id
		         WHERE v.proprietario_id = $1 AND c.visto_por_proprietario = FALSE`
	default:
		return 0, fmt.Errorf("unknown party %q", party)
	}

	var n int
	err := r.db.QueryRowContext(ctx, query, partyID).Scan(&n)
	return n, err
}

type contractRevisionRepository struct {
	db DBTX
}

func NewContractRevisionRepository(db DBTX) repository.ContractRevisionRepository {
	return &contractRevisionRepository{db: db}
}

func (r *contractRevisionRepository) CreateRevision(ctx context.Context, rev *domain.ContractRevision) error {
	prev, err := json.Marshal(rev.Previous)
	if err != nil {
		return err
	}
	cur, err := json.Marshal(rev.Current)
	if err != nil {
		return err
	}

	query := `INSERT INTO contrato_revisoes (contrato_id, autor_id, autor_role, acao, dados_json_anterior, dados_json_novo, criado_em)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now().UTC()
	logger.DatabaseCall("INSERT", "contrato_revisoes", "contractID", rev.ContractID, "action", rev.Action)
	if err := r.db.QueryRowContext(ctx, query, rev.ContractID, rev.AuthorID, rev.AuthorRole, rev.Action, prev, cur, now).Scan(&rev.ID); err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return err
	}
	rev.CreatedAt = now
	return nil
}

func (r *contractRevisionRepository) ListRevisions(ctx context.Context, contractID int32) ([]domain.ContractRevision, error) {
	query := `SELECT id, contrato_id, autor_id, autor_role, acao, dados_json_anterior, dados_json_novo, criado_em
	          FROM contrato_revisoes WHERE contrato_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revisions := []domain.ContractRevision{}
	for rows.Next() {
		var rev domain.ContractRevision
		var prev, cur []byte
		if err := rows.Scan(&rev.ID, &rev.ContractID, &rev.AuthorID, &rev.AuthorRole, &rev.Action, &prev, &cur, &rev.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(prev, &rev.Previous); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(cur, &rev.Current); err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}
