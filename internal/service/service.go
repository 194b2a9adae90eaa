package service

import (
	"context"

	"driverent-backend/internal/domain"
)

type RentalRequestService interface {
	CreateRequest(ctx context.Context, p domain.Principal, vehicleID int32, startDate, endDate string) (*domain.RentalRequest, error)
	RefuseRequest(ctx context.Context, p domain.Principal, requestID int32, reason string) (*domain.RentalRequest, error)
	ApproveRequest(ctx context.Context, p domain.Principal, requestID int32, terms domain.ApprovalTerms) (*domain.ApprovalResult, error)
	ListMyRequests(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.RentalRequest, error)
	ListReceivedRequests(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.RentalRequest, error)
	MarkRequestRead(ctx context.Context, p domain.Principal, requestID int32, party domain.Party) error
}

type ContractService interface {
	GetContract(ctx context.Context, p domain.Principal, contractID int32) (*domain.Contract, error)
	EditContract(ctx context.Context, p domain.Principal, contractID int32, patch domain.EditPatch) (*domain.Contract, error)
	PublishContract(ctx context.Context, p domain.Principal, contractID int32, patch domain.PublishPatch) (*domain.Contract, error)
	SignContract(ctx context.Context, p domain.Principal, contractID int32, clientIP string) (*domain.Contract, error)
	MarkContractRead(ctx context.Context, p domain.Principal, contractID int32, party domain.Party) error
	ListMyContracts(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.Contract, error)
	ListReceivedContracts(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.Contract, error)
	ListRevisions(ctx context.Context, p domain.Principal, contractID int32) ([]domain.ContractRevision, error)
	// GetDocument returns the rendered contract. Signed contracts are served
	// from the archived copy when one exists.
	GetDocument(ctx context.Context, p domain.Principal, contractID int32) (string, error)
}

type BadgeService interface {
	UnreadCount(ctx context.Context, p domain.Principal) (*domain.UnreadCount, error)
}

// EmailService notifies the counterpart of a workflow step. Callers treat
// delivery as best effort.
type EmailService interface {
	SendRentalRequestNotification(ctx context.Context, ownerEmail, driverName, vehicle string) error
	SendRequestDecisionNotification(ctx context.Context, driverEmail, vehicle string, approved bool, reason string) error
	SendContractPublishedNotification(ctx context.Context, driverEmail, vehicle string, contractID int32) error
	SendContractSignedNotification(ctx context.Context, ownerEmail, driverName, vehicle string, contractID int32) error
}
