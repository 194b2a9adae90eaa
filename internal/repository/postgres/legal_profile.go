package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/repository"
)

var legalColumns = []string{
	"rg", "orgao_expeditor", "uf_rg", "nacionalidade", "estado_civil", "profissao",
	"endereco_logradouro", "endereco_numero", "endereco_bairro", "endereco_cidade", "endereco_uf", "endereco_cep",
}

type legalProfileRepository struct {
	db DBTX
}

func NewLegalProfileRepository(db DBTX) repository.LegalProfileRepository {
	return &legalProfileRepository{db: db}
}

// legalTable returns the table and key column holding profiles for party.
func legalTable(party domain.Party) (table, key string, err error) {
	switch party {
	case domain.PartyDriver:
		return "motoristas_legal", "motorista_id", nil
	case domain.PartyOwner:
		return "proprietarios_legal", "proprietario_id", nil
	default:
		return "", "", fmt.Errorf("unknown party %q", party)
	}
}

func legalValues(p *domain.LegalProfile) []any {
	return []any{
		&p.RG, &p.OrgaoExpeditor, &p.UFRG, &p.Nacionalidade, &p.EstadoCivil, &p.Profissao,
		&p.EnderecoLogradouro, &p.EnderecoNumero, &p.EnderecoBairro, &p.EnderecoCidade, &p.EnderecoUF, &p.EnderecoCEP,
	}
}

func (r *legalProfileRepository) GetLegalProfile(ctx context.Context, party domain.Party, partyID int32) (*domain.LegalProfile, error) {
	table, key, err := legalTable(party)
	if err != nil {
		return nil, err
	}

	p := &domain.LegalProfile{}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, strings.Join(legalColumns, ", "), table, key)
	err = r.db.QueryRowContext(ctx, query, partyID).Scan(legalValues(p)...)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.LegalProfile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *legalProfileRepository) UpsertLegalProfile(ctx context.Context, party domain.Party, partyID int32, p domain.LegalProfile) error {
	logger.EnterMethod("legalProfileRepository.UpsertLegalProfile", "party", party, "partyID", partyID)

	table, key, err := legalTable(party)
	if err != nil {
		logger.ExitMethodWithError("legalProfileRepository.UpsertLegalProfile", err)
		return err
	}

	placeholders := make([]string, len(legalColumns))
	updates := make([]string, len(legalColumns))
	for i, col := range legalColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		updates[i] = fmt.Sprintf("%s = COALESCE(NULLIF(EXCLUDED.%s, ''), t.%s)", col, col, col)
	}

	query := fmt.Sprintf(`INSERT INTO %s AS t (%s, %s, atualizado_em) VALUES ($1, %s, NOW())
	          ON CONFLICT (%s) DO UPDATE SET %s, atualizado_em = NOW()`,
		table, key, strings.Join(legalColumns, ", "), strings.Join(placeholders, ", "),
		key, strings.Join(updates, ", "))

	args := []any{partyID}
	for _, v := range legalValues(&p) {
		args = append(args, strings.TrimSpace(*v.(*string)))
	}

	logger.DatabaseCall("UPSERT", table, "partyID", partyID)
	res, err := r.db.ExecContext(ctx, query, args...)
	var n int64
	if err == nil {
		n, _ = res.RowsAffected()
	}
	logger.DatabaseResult("UPSERT", n, err, "table", table)
	if err != nil {
		logger.ExitMethodWithError("legalProfileRepository.UpsertLegalProfile", err, "partyID", partyID)
		return err
	}

	logger.ExitMethod("legalProfileRepository.UpsertLegalProfile", "partyID", partyID)
	return nil
}
