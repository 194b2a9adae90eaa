package service

import (
	"context"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/repository"
)

type badgeService struct {
	requests  repository.RentalRequestRepository
	contracts repository.ContractRepository
}

func NewBadgeService(requests repository.RentalRequestRepository, contracts repository.ContractRepository) BadgeService {
	return &badgeService{requests: requests, contracts: contracts}
}

// UnreadCount sums the principal's unseen requests and contracts. Drivers
// count rows they rent; owners and admins count rows on vehicles registered
// to their id. Counts are always read from the store.
func (s *badgeService) UnreadCount(ctx context.Context, p domain.Principal) (*domain.UnreadCount, error) {
	party := p.BadgeParty()

	requests, err := s.requests.CountUnseenRequests(ctx, party, p.ID)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contracts.CountUnseenContracts(ctx, party, p.ID)
	if err != nil {
		return nil, err
	}

	return &domain.UnreadCount{
		Total:     requests + contracts,
		Requests:  requests,
		Contracts: contracts,
	}, nil
}
