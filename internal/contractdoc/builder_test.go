package contractdoc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverent-backend/internal/domain"
)

func float(v float64) *float64 { return &v }
func str(v string) *string     { return &v }

func fixtureInput() Input {
	return Input{
		Request: domain.RentalRequest{
			ID:        7,
			DriverID:  20,
			VehicleID: 5,
			StartDate: "2025-01-01",
			EndDate:   "2025-01-02",
		},
		RentalID: 42,
		Vehicle: domain.Vehicle{
			ID:      5,
			Marca:   "Chevrolet",
			Modelo:  "Onix",
			Ano:     2022,
			Placa:   "ABC1D23",
			Renavam: "00123456789",
			Cor:     "prata",
		},
		Owner: Party{
			Identity: domain.PartyIdentity{ID: 10, Nome: "Carlos Proprietario", CPF: "123.456.789-00", Email: "carlos@example.com"},
			Legal: domain.LegalProfile{
				RG: "1234567", OrgaoExpeditor: "SSP", UFRG: "SP",
				Nacionalidade: "brasileira", EstadoCivil: "casado", Profissao: "empresario",
				EnderecoLogradouro: "Rua das Flores", EnderecoNumero: "100", EnderecoBairro: "Centro",
				EnderecoCidade: "Campinas", EnderecoUF: "SP", EnderecoCEP: "13010-000",
			},
		},
		Driver: Party{
			Identity: domain.PartyIdentity{ID: 20, Nome: "Joana Motorista", CPF: "987.654.321-00", Email: "joana@example.com"},
			Legal: domain.LegalProfile{
				RG: "7654321", OrgaoExpeditor: "SSP", UFRG: "RJ",
				Nacionalidade: "brasileira", EstadoCivil: "solteira", Profissao: "motorista de aplicativo",
				EnderecoLogradouro: "Avenida Atlantica", EnderecoNumero: "2000", EnderecoBairro: "Copacabana",
				EnderecoCidade: "Rio de Janeiro", EnderecoUF: "RJ", EnderecoCEP: "22021-001",
			},
		},
		Terms: domain.ApprovalTerms{
			DailyRate:      float(150),
			PaymentMethod:  "pix",
			PickupLocation: "Rua das Flores, 100 - Campinas",
			ReturnLocation: "Rua das Flores, 100 - Campinas",
		},
	}
}

func fixturePlatform() Platform {
	return Platform{
		Name:    "DriveRent Intermediacao Ltda",
		CNPJ:    "12.345.678/0001-90",
		Bank:    "Banco do Brasil",
		Agency:  "0001",
		Account: "12345-6",
		PixKey:  "financeiro@driverent.com.br",
	}
}

func TestBuilder_Build(t *testing.T) {
	b, err := NewBuilder(fixturePlatform())
	require.NoError(t, err)

	t.Run("Snapshot shape", func(t *testing.T) {
		s, err := b.Build(fixtureInput())
		require.NoError(t, err)

		assert.Equal(t, int32(42), s.Aluguel.ID)
		assert.Equal(t, 1, s.Aluguel.Dias)
		assert.Equal(t, 150.0, s.Aluguel.ValorTotal)
		assert.Equal(t, "pix", s.Pagamento.Forma)
		assert.Equal(t, "Carlos Proprietario", s.Locador.Nome)
		assert.Equal(t, "SSP", s.Locador.OrgaoExpeditor)
		assert.Equal(t, "Joana Motorista", s.Motorista.Nome)
		assert.Equal(t, "Campinas/SP", s.Plataforma.Foro)
		assert.Equal(t, "ABC1D23", s.Veiculo.Placa)
	})

	t.Run("Snapshot JSON uses canonical keys", func(t *testing.T) {
		s, err := b.Build(fixtureInput())
		require.NoError(t, err)

		raw, err := json.Marshal(s)
		require.NoError(t, err)
		var m map[string]map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))

		assert.Equal(t, float64(1), m["aluguel"]["dias"])
		assert.Equal(t, float64(150), m["aluguel"]["valor_total"])
		assert.Equal(t, float64(150), m["pagamento"]["valor_por_dia"])
		assert.Equal(t, "casado", m["locador"]["estado_civil"])
		assert.Equal(t, "22021-001", m["motorista"]["endereco_cep"])
	})

	t.Run("Configured forum wins", func(t *testing.T) {
		p := fixturePlatform()
		p.Forum = "Sao Paulo/SP"
		b2, err := NewBuilder(p)
		require.NoError(t, err)

		s, err := b2.Build(fixtureInput())
		require.NoError(t, err)
		assert.Equal(t, "Sao Paulo/SP", s.Plataforma.Foro)
	})

	t.Run("Non-positive rate is unprocessable", func(t *testing.T) {
		in := fixtureInput()
		in.Terms.DailyRate = float(0)
		_, err := b.Build(in)
		var unp *domain.ErrUnprocessable
		assert.True(t, errors.As(err, &unp))
	})

	t.Run("Unparseable dates are unprocessable", func(t *testing.T) {
		in := fixtureInput()
		in.Request.EndDate = "amanha"
		_, err := b.Build(in)
		var unp *domain.ErrUnprocessable
		assert.True(t, errors.As(err, &unp))
	})
}

func TestBuilder_Render(t *testing.T) {
	b, err := NewBuilder(fixturePlatform())
	require.NoError(t, err)

	s, err := b.Build(fixtureInput())
	require.NoError(t, err)

	doc, err := b.Render(s)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "contrato_negociando", []byte(doc))
}

func TestBuilder_RenderEscapesPartyData(t *testing.T) {
	b, err := NewBuilder(fixturePlatform())
	require.NoError(t, err)

	s, err := b.Build(fixtureInput())
	require.NoError(t, err)
	s.Motorista.Nome = "<script>alert(1)</script>"

	doc, err := b.Render(s)
	require.NoError(t, err)
	assert.NotContains(t, doc, "<script>")
	assert.Contains(t, doc, "&lt;script&gt;")
}

func TestRecomputeAfterPatch(t *testing.T) {
	b, err := NewBuilder(fixturePlatform())
	require.NoError(t, err)

	s, err := b.Build(fixtureInput())
	require.NoError(t, err)

	s.Aluguel.Dias = 99
	s.Aluguel.ValorTotal = 1
	s.ApplyEdit(domain.EditPatch{
		Pagamento: &domain.PaymentPatch{ValorPorDia: float(200)},
		Aluguel:   &domain.LocationPatch{LocalDevolucao: str("Aeroporto de Viracopos")},
	})
	require.NoError(t, Recompute(&s))

	assert.Equal(t, 1, s.Aluguel.Dias)
	assert.Equal(t, 200.0, s.Aluguel.ValorTotal)
	assert.Equal(t, "Rua das Flores, 100 - Campinas", s.Aluguel.LocalRetirada)
	assert.Equal(t, "Aeroporto de Viracopos", s.Aluguel.LocalDevolucao)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "R$ 150,00", FormatBRL(150))
	assert.Equal(t, "R$ 1.234,50", FormatBRL(1234.5))
	assert.Equal(t, "R$ 1.600.000,01", FormatBRL(1600000.01))
	assert.Equal(t, "-R$ 12,30", FormatBRL(-12.3))
}
