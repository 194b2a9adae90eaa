package service_test

import (
	"context"

	"driverent-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockVehicleRepo
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}
func (m *MockVehicleRepo) SetVehicleStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockRequestRepo struct{ mock.Mock }

func (m *MockRequestRepo) CreateRequest(ctx context.Context, r *domain.RentalRequest) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockRequestRepo) GetRequest(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRequestRepo) GetRequestForUpdate(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRequestRepo) DecideRequest(ctx context.Context, id int32, status domain.RentalRequestStatus, reason *string) (bool, error) {
	args := m.Called(ctx, id, status, reason)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) MarkRequestSeen(ctx context.Context, id int32, party domain.Party) error {
	return m.Called(ctx, id, party).Error(0)
}
func (m *MockRequestRepo) ListRequestsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, driverID, unseenOnly)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockRequestRepo) ListRequestsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, ownerID, unseenOnly)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockRequestRepo) ListAllRequests(ctx context.Context) ([]domain.RentalRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockRequestRepo) CountUnseenRequests(ctx context.Context, party domain.Party, partyID int32) (int, error) {
	args := m.Called(ctx, party, partyID)
	return args.Int(0), args.Error(1)
}

type MockContractRepo struct{ mock.Mock }

func (m *MockContractRepo) CreateContract(ctx context.Context, c *domain.Contract) error {
	return m.Called(ctx, c).Error(0)
}
func (m *MockContractRepo) GetContract(ctx context.Context, id int32) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockContractRepo) GetContractForUpdate(ctx context.Context, id int32) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}
func (m *MockContractRepo) UpdateContractTerms(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error) {
	args := m.Called(ctx, id, terms, document)
	return args.Bool(0), args.Error(1)
}
func (m *MockContractRepo) PublishContract(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error) {
	args := m.Called(ctx, id, terms, document)
	return args.Bool(0), args.Error(1)
}
func (m *MockContractRepo) SignContract(ctx context.Context, id int32, sig domain.SignatureEvidence) (bool, error) {
	args := m.Called(ctx, id, sig)
	return args.Bool(0), args.Error(1)
}
func (m *MockContractRepo) MarkContractSeen(ctx context.Context, id int32, party domain.Party) error {
	return m.Called(ctx, id, party).Error(0)
}
func (m *MockContractRepo) ListContractsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.Contract, error) {
	args := m.Called(ctx, driverID, unseenOnly)
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractRepo) ListContractsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.Contract, error) {
	args := m.Called(ctx, ownerID, unseenOnly)
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractRepo) ListAllContracts(ctx context.Context) ([]domain.Contract, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Contract), args.Error(1)
}
func (m *MockContractRepo) CountUnseenContracts(ctx context.Context, party domain.Party, partyID int32) (int, error) {
	args := m.Called(ctx, party, partyID)
	return args.Int(0), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, driverName, vehicle string) error {
	return m.Called(ctx, ownerEmail, driverName, vehicle).Error(0)
}
func (m *MockEmailService) SendRequestDecisionNotification(ctx context.Context, driverEmail, vehicle string, approved bool, reason string) error {
	return m.Called(ctx, driverEmail, vehicle, approved, reason).Error(0)
}
func (m *MockEmailService) SendContractPublishedNotification(ctx context.Context, driverEmail, vehicle string, contractID int32) error {
	return m.Called(ctx, driverEmail, vehicle, contractID).Error(0)
}
func (m *MockEmailService) SendContractSignedNotification(ctx context.Context, ownerEmail, driverName, vehicle string, contractID int32) error {
	return m.Called(ctx, ownerEmail, driverName, vehicle, contractID).Error(0)
}

// expectAnyEmail accepts every notification without asserting on it.
func expectAnyEmail(m *MockEmailService) {
	m.On("SendRentalRequestNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendRequestDecisionNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendContractPublishedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendContractSignedNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}
