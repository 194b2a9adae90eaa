// Package contractdoc builds the structured terms snapshot of a rental
// contract and renders the contract document from it.
package contractdoc

import (
	"fmt"
	"strings"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/utils"
)

// Platform is the platform identity and bank details printed on every
// contract. It is loaded from configuration and injected into the Builder.
type Platform struct {
	Name    string
	CNPJ    string
	Bank    string
	Agency  string
	Account string
	PixKey  string
	Forum   string
}

// Party is one contracting party as read from the store.
type Party struct {
	Identity domain.PartyIdentity
	Legal    domain.LegalProfile
}

// Input gathers everything needed for the first snapshot of a contract.
type Input struct {
	Request  domain.RentalRequest
	RentalID int32
	Vehicle  domain.Vehicle
	Owner    Party
	Driver   Party
	Terms    domain.ApprovalTerms
}

type Builder struct {
	platform Platform
	renderer *renderer
}

func NewBuilder(platform Platform) (*Builder, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Builder{platform: platform, renderer: r}, nil
}

// Build assembles the snapshot for a freshly approved request. Day count and
// total are computed from the request's stored dates.
func (b *Builder) Build(in Input) (domain.ContractSnapshot, error) {
	var rate float64
	if in.Terms.DailyRate != nil {
		rate = *in.Terms.DailyRate
	}

	s := domain.ContractSnapshot{
		Aluguel: domain.SnapshotRental{
			ID:             in.RentalID,
			DataInicio:     in.Request.StartDate,
			DataFim:        in.Request.EndDate,
			LocalRetirada:  in.Terms.PickupLocation,
			LocalDevolucao: in.Terms.ReturnLocation,
		},
		Locador:   snapshotParty(in.Owner),
		Motorista: snapshotParty(in.Driver),
		Veiculo: domain.SnapshotVehicle{
			ID:      in.Vehicle.ID,
			Ano:     in.Vehicle.Ano,
			Marca:   in.Vehicle.Marca,
			Modelo:  in.Vehicle.Modelo,
			Placa:   in.Vehicle.Placa,
			Renavam: in.Vehicle.Renavam,
			Cor:     in.Vehicle.Cor,
		},
		Pagamento: domain.SnapshotPayment{
			Forma:       in.Terms.PaymentMethod,
			ValorPorDia: rate,
		},
		Plataforma: domain.SnapshotPlatform{
			Nome:     b.platform.Name,
			CNPJ:     b.platform.CNPJ,
			Banco:    b.platform.Bank,
			Agencia:  b.platform.Agency,
			Conta:    b.platform.Account,
			ChavePix: b.platform.PixKey,
			Foro:     forum(b.platform.Forum, in.Owner.Legal),
		},
	}

	if err := Recompute(&s); err != nil {
		return domain.ContractSnapshot{}, err
	}
	return s, nil
}

// Render produces the contract document for s.
func (b *Builder) Render(s domain.ContractSnapshot) (string, error) {
	return b.renderer.render(s)
}

// Recompute refreshes the derived fields of s from its dates and daily rate.
// Client supplied values for dias and valor_total are never kept.
func Recompute(s *domain.ContractSnapshot) error {
	days, total, err := utils.RentalTotal(s.Aluguel.DataInicio, s.Aluguel.DataFim, s.Pagamento.ValorPorDia)
	if err != nil {
		return err
	}
	s.Aluguel.Dias = days
	s.Aluguel.ValorTotal = total
	return nil
}

func snapshotParty(p Party) domain.SnapshotParty {
	return domain.SnapshotParty{
		ID:           p.Identity.ID,
		Nome:         p.Identity.Nome,
		CPF:          p.Identity.CPF,
		Email:        p.Identity.Email,
		Telefone:     p.Identity.Telefone,
		Endereco:     p.Legal.Address(),
		LegalProfile: p.Legal,
	}
}

// forum returns the configured forum or, when unset, the owner's "city/UF".
func forum(configured string, owner domain.LegalProfile) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return fmt.Sprintf("%s/%s", owner.EnderecoCidade, owner.EnderecoUF)
}
