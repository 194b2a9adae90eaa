package postgres

import (
	"context"
	"database/sql"
	"errors"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/repository"
)

type vehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	var ownerID sql.NullInt32
	query := `SELECT id, proprietario_id, marca, modelo, ano, placa, renavam, cor, status FROM veiculos WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &ownerID, &v.Marca, &v.Modelo, &v.Ano, &v.Placa, &v.Renavam, &v.Cor, &v.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "veiculo", ID: id}
	}
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		v.OwnerID = &ownerID.Int32
	}
	return v, nil
}

func (r *vehicleRepository) SetVehicleStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE veiculos SET status = $1 WHERE id = $2`, status, id)
	return err
}

type partyRepository struct {
	db DBTX
}

func NewPartyRepository(db DBTX) repository.PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) GetDriver(ctx context.Context, id int32) (*domain.PartyIdentity, error) {
	p := &domain.PartyIdentity{}
	query := `SELECT id, nome, email, cpf, telefone FROM motoristas WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Nome, &p.Email, &p.CPF, &p.Telefone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "motorista", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *partyRepository) GetOwner(ctx context.Context, id int32) (*domain.PartyIdentity, error) {
	p := &domain.PartyIdentity{}
	query := `SELECT id, nome, email, cpf_cnpj, telefone FROM proprietarios WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Nome, &p.Email, &p.CPF, &p.Telefone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "proprietario", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
