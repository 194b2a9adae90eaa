package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"driverent-backend/internal/contractdoc"
	"driverent-backend/internal/domain"
	"driverent-backend/internal/metrics"
	"driverent-backend/internal/repository/memory"
	"driverent-backend/internal/service"
	"driverent-backend/internal/storage"
)

const (
	driverID       int32 = 5
	otherDriverID  int32 = 6
	ownerID        int32 = 10
	otherOwnerID   int32 = 11
	adminID        int32 = 1
	vehicleID      int32 = 3
	ownerlessVehID int32 = 4
)

var (
	driver      = domain.Principal{ID: driverID, Role: domain.RoleDriver}
	otherDriver = domain.Principal{ID: otherDriverID, Role: domain.RoleDriver}
	owner       = domain.Principal{ID: ownerID, Role: domain.RoleOwner}
	otherOwner  = domain.Principal{ID: otherOwnerID, Role: domain.RoleOwner}
	admin       = domain.Principal{ID: adminID, Role: domain.RoleAdmin}
)

func rate(v float64) *float64 { return &v }
func text(v string) *string    { return &v }

func completeLegal(city string) *domain.LegalProfile {
	return &domain.LegalProfile{
		RG: "1234567", OrgaoExpeditor: "SSP", UFRG: "SP",
		Nacionalidade: "brasileira", EstadoCivil: "solteiro", Profissao: "autonomo",
		EnderecoLogradouro: "Rua A", EnderecoNumero: "10", EnderecoBairro: "Centro",
		EnderecoCidade: city, EnderecoUF: "SP", EnderecoCEP: "13010-000",
	}
}

func approvalTerms() domain.ApprovalTerms {
	return domain.ApprovalTerms{
		DailyRate:      rate(150),
		PaymentMethod:  "pix",
		PickupLocation: "Garagem Centro",
		ReturnLocation: "Garagem Centro",
		DriverLegal:    completeLegal("Campinas"),
		OwnerLegal:     completeLegal("Sao Paulo"),
	}
}

type fixture struct {
	store     *memory.Store
	email     *MockEmailService
	docs      *storage.LocalStorage
	docsDir   string
	requests  service.RentalRequestService
	contracts service.ContractService
	badges    service.BadgeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithEmail(t, expectAnyEmail)
}

func newFixtureWithEmail(t *testing.T, expect func(*MockEmailService)) *fixture {
	t.Helper()

	store := memory.NewStore()
	owned := ownerID
	store.AddVehicle(domain.Vehicle{ID: vehicleID, OwnerID: &owned, Marca: "Fiat", Modelo: "Argo", Ano: 2023,
		Placa: "XYZ9A87", Renavam: "11122233344", Cor: "branco", Status: domain.VehicleStatusAvailable})
	store.AddVehicle(domain.Vehicle{ID: ownerlessVehID, Marca: "VW", Modelo: "Gol", Ano: 2019,
		Placa: "AAA1B22", Status: domain.VehicleStatusAvailable})
	store.AddDriver(domain.PartyIdentity{ID: driverID, Nome: "Ana Motorista", Email: "ana@example.com", CPF: "111.222.333-44"})
	store.AddDriver(domain.PartyIdentity{ID: otherDriverID, Nome: "Bruno Motorista", Email: "bruno@example.com", CPF: "555.666.777-88"})
	store.AddOwner(domain.PartyIdentity{ID: ownerID, Nome: "Carla Proprietaria", Email: "carla@example.com", CPF: "12.345.678/0001-99"})
	store.AddOwner(domain.PartyIdentity{ID: otherOwnerID, Nome: "Davi Proprietario", Email: "davi@example.com", CPF: "999.888.777-66"})

	builder, err := contractdoc.NewBuilder(contractdoc.Platform{
		Name:    "DriveRent Intermediacao Ltda",
		CNPJ:    "12.345.678/0001-90",
		Bank:    "Banco do Brasil",
		Agency:  "0001",
		Account: "12345-6",
		PixKey:  "financeiro@driverent.com.br",
	})
	require.NoError(t, err)

	docsDir := t.TempDir()
	docs, err := storage.NewLocalStorage(docsDir)
	require.NoError(t, err)

	email := new(MockEmailService)
	expect(email)

	m := metrics.New()
	return &fixture{
		store:     store,
		email:     email,
		docs:      docs,
		docsDir:   docsDir,
		requests:  service.NewRentalRequestService(store.Repositories, store, builder, email, m),
		contracts: service.NewContractService(store.Repositories, store, builder, docs, email, m),
		badges:    service.NewBadgeService(store.Repositories, store.Repositories),
	}
}

// pendingRequest files a request for the owned vehicle covering start..end.
func (f *fixture) pendingRequest(t *testing.T, start, end string) *domain.RentalRequest {
	t.Helper()
	rq, err := f.requests.CreateRequest(context.Background(), driver, vehicleID, start, end)
	require.NoError(t, err)
	return rq
}

// negotiatingContract approves a one-day request and returns the contract id.
func (f *fixture) negotiatingContract(t *testing.T) int32 {
	t.Helper()
	rq := f.pendingRequest(t, "2025-01-01", "2025-01-02")
	res, err := f.requests.ApproveRequest(context.Background(), owner, rq.ID, approvalTerms())
	require.NoError(t, err)
	return res.ContractID
}
