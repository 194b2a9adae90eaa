package service

import (
	"context"
	"fmt"
	"strings"

	"driverent-backend/internal/contractdoc"
	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/metrics"
	"driverent-backend/internal/repository"
	"driverent-backend/internal/utils"
)

type rentalRequestService struct {
	repos    repository.Repositories
	tx       repository.Transactor
	builder  *contractdoc.Builder
	emailSvc EmailService
	metrics  *metrics.Metrics
}

func NewRentalRequestService(
	repos repository.Repositories,
	tx repository.Transactor,
	builder *contractdoc.Builder,
	emailSvc EmailService,
	m *metrics.Metrics,
) RentalRequestService {
	return &rentalRequestService{
		repos:    repos,
		tx:       tx,
		builder:  builder,
		emailSvc: emailSvc,
		metrics:  m,
	}
}

func (s *rentalRequestService) CreateRequest(ctx context.Context, p domain.Principal, vehicleID int32, startDate, endDate string) (*domain.RentalRequest, error) {
	logger.EnterMethod("rentalRequestService.CreateRequest", "driverID", p.ID, "vehicleID", vehicleID)

	if !p.IsDriver() {
		return nil, &domain.ErrForbidden{Action: "criar solicitacao", Reason: "apenas motoristas"}
	}
	if vehicleID <= 0 {
		return nil, &domain.ErrValidation{Field: "veiculo_id", Message: "is required"}
	}
	start, err := utils.ParseCalendarDay(startDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "data_inicio", Message: "invalid date"}
	}
	end, err := utils.ParseCalendarDay(endDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "data_fim", Message: "invalid date"}
	}
	if start.After(end) {
		return nil, &domain.ErrValidation{Field: "data_fim", Message: "must not be before data_inicio"}
	}

	vehicle, err := s.repos.GetVehicle(ctx, vehicleID)
	if err != nil {
		logger.ExitMethodWithError("rentalRequestService.CreateRequest", err)
		return nil, err
	}
	if vehicle.Status != domain.VehicleStatusAvailable {
		return nil, &domain.ErrValidation{Field: "veiculo_id", Message: fmt.Sprintf("vehicle is not available (%s)", vehicle.Status)}
	}

	rq := &domain.RentalRequest{
		DriverID:     p.ID,
		VehicleID:    vehicleID,
		StartDate:    utils.FormatCalendarDay(start),
		EndDate:      utils.FormatCalendarDay(end),
		Status:       domain.RequestStatusPending,
		SeenByDriver: true,
		SeenByOwner:  false,
	}
	if err := s.repos.CreateRequest(ctx, rq); err != nil {
		logger.ExitMethodWithError("rentalRequestService.CreateRequest", err)
		return nil, err
	}
	s.metrics.IncTransition("solicitacao", string(rq.Status))

	if vehicle.OwnerID != nil {
		notify(ctx, s.metrics, "solicitacao_criada", func() error {
			owner, err := s.repos.GetOwner(ctx, *vehicle.OwnerID)
			if err != nil {
				return err
			}
			driver, err := s.repos.GetDriver(ctx, p.ID)
			if err != nil {
				return err
			}
			return s.emailSvc.SendRentalRequestNotification(ctx, owner.Email, driver.Nome, vehicleLabel(vehicle))
		})
	}

	logger.ExitMethod("rentalRequestService.CreateRequest", "requestID", rq.ID)
	return rq, nil
}

func (s *rentalRequestService) RefuseRequest(ctx context.Context, p domain.Principal, requestID int32, reason string) (*domain.RentalRequest, error) {
	logger.EnterMethod("rentalRequestService.RefuseRequest", "requestID", requestID, "principal", p.ID)

	rq, err := s.repos.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	vehicle, err := AssertOwnerOrAdmin(ctx, s.repos, p, rq.VehicleID)
	if err != nil {
		return nil, err
	}
	if rq.Status != domain.RequestStatusPending {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("solicitacao %d ja esta %s", rq.ID, rq.Status)}
	}

	reason = strings.TrimSpace(reason)
	var motivo *string
	if r := reason; r != "" {
		motivo = &r
	}
	ok, err := s.repos.DecideRequest(ctx, rq.ID, domain.RequestStatusRefused, motivo)
	if err != nil {
		logger.ExitMethodWithError("rentalRequestService.RefuseRequest", err)
		return nil, err
	}
	if !ok {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("solicitacao %d nao esta mais pendente", rq.ID)}
	}

	rq.Status = domain.RequestStatusRefused
	rq.RefusalReason = motivo
	rq.SeenByDriver = false
	rq.SeenByOwner = true
	s.metrics.IncTransition("solicitacao", string(rq.Status))

	notify(ctx, s.metrics, "solicitacao_recusada", func() error {
		driver, err := s.repos.GetDriver(ctx, rq.DriverID)
		if err != nil {
			return err
		}
		return s.emailSvc.SendRequestDecisionNotification(ctx, driver.Email, vehicleLabel(vehicle), false, reason)
	})

	logger.ExitMethod("rentalRequestService.RefuseRequest", "requestID", rq.ID)
	return rq, nil
}

// ApproveRequest turns a pending request into a rental and a negotiating
// contract in one transaction. Nothing is persisted when any step fails.
func (s *rentalRequestService) ApproveRequest(ctx context.Context, p domain.Principal, requestID int32, terms domain.ApprovalTerms) (*domain.ApprovalResult, error) {
	logger.EnterMethod("rentalRequestService.ApproveRequest", "requestID", requestID, "principal", p.ID)

	if err := terms.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repos.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	vehicle, err := AssertOwnerOrAdmin(ctx, s.repos, p, current.VehicleID)
	if err != nil {
		return nil, err
	}

	var result domain.ApprovalResult
	var driverID int32
	err = s.tx.WithTx(ctx, func(tx repository.Repositories) error {
		rq, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if rq.Status != domain.RequestStatusPending {
			return &domain.ErrConflict{Message: fmt.Sprintf("solicitacao %d ja esta %s", rq.ID, rq.Status)}
		}
		driverID = rq.DriverID

		days, total, err := utils.RentalTotal(rq.StartDate, rq.EndDate, *terms.DailyRate)
		if err != nil {
			return err
		}

		overlap, err := tx.HasOverlappingRental(ctx, rq.VehicleID, rq.StartDate, rq.EndDate)
		if err != nil {
			return err
		}
		if overlap {
			return &domain.ErrConflict{Message: fmt.Sprintf("veiculo %d ja possui aluguel ativo entre %s e %s", rq.VehicleID, rq.StartDate, rq.EndDate)}
		}

		ok, err := tx.DecideRequest(ctx, rq.ID, domain.RequestStatusApproved, nil)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.ErrConflict{Message: fmt.Sprintf("solicitacao %d nao esta mais pendente", rq.ID)}
		}

		rental := &domain.Rental{
			DriverID:    rq.DriverID,
			VehicleID:   rq.VehicleID,
			RequestID:   rq.ID,
			StartDate:   rq.StartDate,
			EndDate:     rq.EndDate,
			DailyRate:   *terms.DailyRate,
			TotalAmount: total,
			Status:      domain.RentalStatusApproved,
		}
		if err := tx.CreateRental(ctx, rental); err != nil {
			return err
		}

		owner, driver, err := loadContractParties(ctx, tx, terms, *vehicle.OwnerID, rq.DriverID)
		if err != nil {
			return err
		}

		snapshot, err := s.builder.Build(contractdoc.Input{
			Request:  *rq,
			RentalID: rental.ID,
			Vehicle:  *vehicle,
			Owner:    owner,
			Driver:   driver,
			Terms:    terms,
		})
		if err != nil {
			return err
		}
		document, err := s.builder.Render(snapshot)
		if err != nil {
			return err
		}

		contract := &domain.Contract{
			RentalID:     rental.ID,
			RequestID:    rq.ID,
			DriverID:     rq.DriverID,
			VehicleID:    rq.VehicleID,
			Status:       domain.ContractStatusNegotiating,
			Terms:        snapshot,
			Document:     document,
			SeenByDriver: true,
			SeenByOwner:  true,
		}
		if err := tx.CreateContract(ctx, contract); err != nil {
			return err
		}

		result = domain.ApprovalResult{RentalID: rental.ID, ContractID: contract.ID}
		logger.FromContext(ctx).Info("Rental request approved",
			"requestID", rq.ID, "rentalID", rental.ID, "contractID", contract.ID, "dias", days, "valorTotal", total)
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalRequestService.ApproveRequest", err, "requestID", requestID)
		return nil, err
	}

	s.metrics.IncTransition("solicitacao", string(domain.RequestStatusApproved))
	s.metrics.IncTransition("contrato", string(domain.ContractStatusNegotiating))

	notify(ctx, s.metrics, "solicitacao_aprovada", func() error {
		driver, err := s.repos.GetDriver(ctx, driverID)
		if err != nil {
			return err
		}
		return s.emailSvc.SendRequestDecisionNotification(ctx, driver.Email, vehicleLabel(vehicle), true, "")
	})

	logger.ExitMethod("rentalRequestService.ApproveRequest", "rentalID", result.RentalID, "contractID", result.ContractID)
	return &result, nil
}

// loadContractParties stores the legal data sent with the approval and reads
// back both parties. Incomplete profiles fail with the missing field names,
// prefixed by the party they belong to.
func loadContractParties(ctx context.Context, tx repository.Repositories, terms domain.ApprovalTerms, ownerID, driverID int32) (owner, driver contractdoc.Party, err error) {
	if terms.DriverLegal != nil {
		if err = tx.UpsertLegalProfile(ctx, domain.PartyDriver, driverID, *terms.DriverLegal); err != nil {
			return
		}
	}
	if terms.OwnerLegal != nil {
		if err = tx.UpsertLegalProfile(ctx, domain.PartyOwner, ownerID, *terms.OwnerLegal); err != nil {
			return
		}
	}

	driverLegal, err := tx.GetLegalProfile(ctx, domain.PartyDriver, driverID)
	if err != nil {
		return
	}
	ownerLegal, err := tx.GetLegalProfile(ctx, domain.PartyOwner, ownerID)
	if err != nil {
		return
	}

	var missing []string
	for _, f := range driverLegal.MissingFields() {
		missing = append(missing, "motorista."+f)
	}
	for _, f := range ownerLegal.MissingFields() {
		missing = append(missing, "proprietario."+f)
	}
	if len(missing) > 0 {
		err = &domain.ErrUnprocessable{Message: "dados legais incompletos", Missing: missing}
		return
	}

	driverIdentity, err := tx.GetDriver(ctx, driverID)
	if err != nil {
		return
	}
	ownerIdentity, err := tx.GetOwner(ctx, ownerID)
	if err != nil {
		return
	}

	owner = contractdoc.Party{Identity: *ownerIdentity, Legal: *ownerLegal}
	driver = contractdoc.Party{Identity: *driverIdentity, Legal: *driverLegal}
	return
}

func (s *rentalRequestService) ListMyRequests(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.RentalRequest, error) {
	if !p.IsDriver() {
		return nil, &domain.ErrForbidden{Action: "listar solicitacoes", Reason: "apenas motoristas"}
	}
	return s.repos.ListRequestsByDriver(ctx, p.ID, unseenOnly)
}

func (s *rentalRequestService) ListReceivedRequests(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.RentalRequest, error) {
	switch {
	case p.IsOwner():
		return s.repos.ListRequestsByOwner(ctx, p.ID, unseenOnly)
	case p.IsAdmin():
		all, err := s.repos.ListAllRequests(ctx)
		if err != nil || !unseenOnly {
			return all, err
		}
		unseen := []domain.RentalRequest{}
		for _, rq := range all {
			if !rq.SeenByOwner {
				unseen = append(unseen, rq)
			}
		}
		return unseen, nil
	default:
		return nil, &domain.ErrForbidden{Action: "listar solicitacoes recebidas", Reason: "apenas proprietario ou admin"}
	}
}

func (s *rentalRequestService) MarkRequestRead(ctx context.Context, p domain.Principal, requestID int32, party domain.Party) error {
	rq, err := s.repos.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := authorizeMarkRead(ctx, s.repos, p, party, rq.DriverID, rq.VehicleID); err != nil {
		return err
	}
	return s.repos.MarkRequestSeen(ctx, rq.ID, party)
}
