package repository

import (
	"context"

	"driverent-backend/internal/domain"
)

type VehicleRepository interface {
	GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error)
	SetVehicleStatus(ctx context.Context, id int32, status domain.VehicleStatus) error
}

// PartyRepository reads the identity registered by drivers and owners at
// signup. Registration itself is handled elsewhere.
type PartyRepository interface {
	GetDriver(ctx context.Context, id int32) (*domain.PartyIdentity, error)
	GetOwner(ctx context.Context, id int32) (*domain.PartyIdentity, error)
}

type LegalProfileRepository interface {
	// GetLegalProfile returns an empty profile when none is stored yet.
	GetLegalProfile(ctx context.Context, party domain.Party, partyID int32) (*domain.LegalProfile, error)
	// UpsertLegalProfile stores the non-blank fields of p, keeping existing
	// values for blank ones.
	UpsertLegalProfile(ctx context.Context, party domain.Party, partyID int32, p domain.LegalProfile) error
}

type RentalRequestRepository interface {
	CreateRequest(ctx context.Context, r *domain.RentalRequest) error
	GetRequest(ctx context.Context, id int32) (*domain.RentalRequest, error)
	// GetRequestForUpdate locks the row until the surrounding transaction ends.
	GetRequestForUpdate(ctx context.Context, id int32) (*domain.RentalRequest, error)
	// DecideRequest moves a pending request to status, flagging it unseen for
	// the driver and seen for the owner. It returns false when the request
	// was no longer pending.
	DecideRequest(ctx context.Context, id int32, status domain.RentalRequestStatus, reason *string) (bool, error)
	MarkRequestSeen(ctx context.Context, id int32, party domain.Party) error
	ListRequestsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.RentalRequest, error)
	ListRequestsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.RentalRequest, error)
	ListAllRequests(ctx context.Context) ([]domain.RentalRequest, error)
	CountUnseenRequests(ctx context.Context, party domain.Party, partyID int32) (int, error)
}

type RentalRepository interface {
	CreateRental(ctx context.Context, r *domain.Rental) error
	GetRental(ctx context.Context, id int32) (*domain.Rental, error)
	// HasOverlappingRental reports whether an active rental of the vehicle
	// shares a day with [startDate, endDate].
	HasOverlappingRental(ctx context.Context, vehicleID int32, startDate, endDate string) (bool, error)
	SetRentalStatus(ctx context.Context, id int32, status domain.RentalStatus) error
	// UpdateRentalTerms keeps the rental's figures in step with its contract.
	UpdateRentalTerms(ctx context.Context, id int32, dailyRate, total float64) error
	// HasRentalInProgress reports whether the vehicle is out on a rental.
	HasRentalInProgress(ctx context.Context, vehicleID int32) (bool, error)
	// StartDueRentals moves signed rentals starting on or before today to
	// in-progress and returns them.
	StartDueRentals(ctx context.Context, today string) ([]domain.Rental, error)
	// FinishDueRentals moves in-progress rentals that ended before today to
	// finished and returns them.
	FinishDueRentals(ctx context.Context, today string) ([]domain.Rental, error)
}

type ContractRepository interface {
	CreateContract(ctx context.Context, c *domain.Contract) error
	GetContract(ctx context.Context, id int32) (*domain.Contract, error)
	GetContractForUpdate(ctx context.Context, id int32) (*domain.Contract, error)
	// UpdateContractTerms replaces terms and document of a negotiating
	// contract. It returns false when the contract was no longer negotiating.
	UpdateContractTerms(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error)
	// PublishContract stores the final terms, moves the contract to
	// ready-for-signature and flags it unseen for the driver.
	PublishContract(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error)
	// SignContract records the signature on a signable contract and flags it
	// unseen for the owner.
	SignContract(ctx context.Context, id int32, sig domain.SignatureEvidence) (bool, error)
	MarkContractSeen(ctx context.Context, id int32, party domain.Party) error
	ListContractsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.Contract, error)
	ListContractsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.Contract, error)
	ListAllContracts(ctx context.Context) ([]domain.Contract, error)
	CountUnseenContracts(ctx context.Context, party domain.Party, partyID int32) (int, error)
}

type ContractRevisionRepository interface {
	CreateRevision(ctx context.Context, rev *domain.ContractRevision) error
	ListRevisions(ctx context.Context, contractID int32) ([]domain.ContractRevision, error)
}

// Repositories bundles every repository bound to the same connection or
// transaction.
type Repositories struct {
	VehicleRepository
	PartyRepository
	LegalProfileRepository
	RentalRequestRepository
	RentalRepository
	ContractRepository
	ContractRevisionRepository
}

// Transactor runs fn inside a single database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx Repositories) error) error
}
