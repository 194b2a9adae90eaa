package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"driverent-backend/internal/contractdoc"
	"driverent-backend/internal/domain"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/metrics"
	"driverent-backend/internal/repository"
	"driverent-backend/internal/storage"
)

type contractService struct {
	repos    repository.Repositories
	tx       repository.Transactor
	builder  *contractdoc.Builder
	docs     storage.DocumentStore
	emailSvc EmailService
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewContractService(
	repos repository.Repositories,
	tx repository.Transactor,
	builder *contractdoc.Builder,
	docs storage.DocumentStore,
	emailSvc EmailService,
	m *metrics.Metrics,
) ContractService {
	return &contractService{
		repos:    repos,
		tx:       tx,
		builder:  builder,
		docs:     docs,
		emailSvc: emailSvc,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// authorizeRead lets the contract's driver through and defers everyone else
// to the ownership guard.
func (s *contractService) authorizeRead(ctx context.Context, p domain.Principal, c *domain.Contract) error {
	if p.IsDriver() && p.ID == c.DriverID {
		return nil
	}
	_, err := AssertOwnerOrAdmin(ctx, s.repos, p, c.VehicleID)
	return err
}

func (s *contractService) GetContract(ctx context.Context, p domain.Principal, contractID int32) (*domain.Contract, error) {
	c, err := s.repos.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, p, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *contractService) EditContract(ctx context.Context, p domain.Principal, contractID int32, patch domain.EditPatch) (*domain.Contract, error) {
	logger.EnterMethod("contractService.EditContract", "contractID", contractID, "principal", p.ID)

	c, err := s.repos.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if _, err := AssertOwnerOrAdmin(ctx, s.repos, p, c.VehicleID); err != nil {
		return nil, err
	}

	var updated *domain.Contract
	err = s.tx.WithTx(ctx, func(tx repository.Repositories) error {
		locked, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if !locked.Status.Editable() {
			return notNegotiating(locked)
		}

		next := locked.Terms
		next.ApplyEdit(patch)
		document, err := s.regenerate(&next)
		if err != nil {
			return err
		}

		ok, err := tx.UpdateContractTerms(ctx, locked.ID, next, document)
		if err != nil {
			return err
		}
		if !ok {
			return notNegotiating(locked)
		}
		if err := tx.UpdateRentalTerms(ctx, locked.RentalID, next.Pagamento.ValorPorDia, next.Aluguel.ValorTotal); err != nil {
			return err
		}
		if err := tx.CreateRevision(ctx, &domain.ContractRevision{
			ContractID: locked.ID,
			AuthorID:   p.ID,
			AuthorRole: p.Role,
			Action:     domain.RevisionActionEdit,
			Previous:   locked.Terms,
			Current:    next,
		}); err != nil {
			return err
		}

		locked.Terms = next
		locked.Document = document
		locked.UpdatedAt = s.now()
		updated = locked
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("contractService.EditContract", err, "contractID", contractID)
		return nil, err
	}

	logger.ExitMethod("contractService.EditContract", "contractID", contractID)
	return updated, nil
}

func (s *contractService) PublishContract(ctx context.Context, p domain.Principal, contractID int32, patch domain.PublishPatch) (*domain.Contract, error) {
	logger.EnterMethod("contractService.PublishContract", "contractID", contractID, "principal", p.ID)

	c, err := s.repos.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	vehicle, err := AssertOwnerOrAdmin(ctx, s.repos, p, c.VehicleID)
	if err != nil {
		return nil, err
	}

	var published *domain.Contract
	err = s.tx.WithTx(ctx, func(tx repository.Repositories) error {
		locked, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if !locked.Status.Editable() {
			return notNegotiating(locked)
		}

		next := locked.Terms
		next.ApplyPublish(patch)
		document, err := s.regenerate(&next)
		if err != nil {
			return err
		}

		ok, err := tx.PublishContract(ctx, locked.ID, next, document)
		if err != nil {
			return err
		}
		if !ok {
			return notNegotiating(locked)
		}
		if err := tx.SetRentalStatus(ctx, locked.RentalID, domain.RentalStatusReadyForSignature); err != nil {
			return err
		}
		if err := tx.UpdateRentalTerms(ctx, locked.RentalID, next.Pagamento.ValorPorDia, next.Aluguel.ValorTotal); err != nil {
			return err
		}
		if err := tx.CreateRevision(ctx, &domain.ContractRevision{
			ContractID: locked.ID,
			AuthorID:   p.ID,
			AuthorRole: p.Role,
			Action:     domain.RevisionActionPublish,
			Previous:   locked.Terms,
			Current:    next,
		}); err != nil {
			return err
		}

		locked.Status = domain.ContractStatusReadyForSignature
		locked.Terms = next
		locked.Document = document
		locked.SeenByDriver = false
		locked.SeenByOwner = true
		locked.UpdatedAt = s.now()
		published = locked
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("contractService.PublishContract", err, "contractID", contractID)
		return nil, err
	}

	s.metrics.IncTransition("contrato", string(published.Status))
	notify(ctx, s.metrics, "contrato_publicado", func() error {
		driver, err := s.repos.GetDriver(ctx, published.DriverID)
		if err != nil {
			return err
		}
		return s.emailSvc.SendContractPublishedNotification(ctx, driver.Email, vehicleLabel(vehicle), published.ID)
	})

	logger.ExitMethod("contractService.PublishContract", "contractID", contractID)
	return published, nil
}

// SignContract records the driver's acceptance. Signing straight from
// negotiation is accepted.
func (s *contractService) SignContract(ctx context.Context, p domain.Principal, contractID int32, clientIP string) (*domain.Contract, error) {
	logger.EnterMethod("contractService.SignContract", "contractID", contractID, "principal", p.ID)

	c, err := s.repos.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !p.IsDriver() || p.ID != c.DriverID {
		return nil, &domain.ErrForbidden{Action: "assinar contrato", Reason: "apenas o motorista do contrato"}
	}

	sig := domain.SignatureEvidence{At: s.now(), IP: clientIP}
	var signed *domain.Contract
	err = s.tx.WithTx(ctx, func(tx repository.Repositories) error {
		locked, err := tx.GetContractForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if !locked.Status.Signable() {
			return &domain.ErrConflict{Message: fmt.Sprintf("contrato %d nao pode ser assinado (%s)", locked.ID, locked.Status)}
		}

		ok, err := tx.SignContract(ctx, locked.ID, sig)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.ErrConflict{Message: fmt.Sprintf("contrato %d ja foi assinado", locked.ID)}
		}
		if err := tx.SetRentalStatus(ctx, locked.RentalID, domain.RentalStatusSigned); err != nil {
			return err
		}

		locked.Status = domain.ContractStatusSigned
		locked.SignedAt = &sig.At
		locked.SignatureIP = &sig.IP
		locked.SeenByDriver = true
		locked.SeenByOwner = false
		locked.UpdatedAt = sig.At
		signed = locked
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("contractService.SignContract", err, "contractID", contractID)
		return nil, err
	}

	s.metrics.IncTransition("contrato", string(signed.Status))
	s.archive(ctx, signed)
	notify(ctx, s.metrics, "contrato_assinado", func() error {
		v, err := s.repos.GetVehicle(ctx, signed.VehicleID)
		if err != nil {
			return err
		}
		if v.OwnerID == nil {
			return nil
		}
		owner, err := s.repos.GetOwner(ctx, *v.OwnerID)
		if err != nil {
			return err
		}
		driver, err := s.repos.GetDriver(ctx, signed.DriverID)
		if err != nil {
			return err
		}
		return s.emailSvc.SendContractSignedNotification(ctx, owner.Email, driver.Nome, vehicleLabel(v), signed.ID)
	})

	logger.ExitMethod("contractService.SignContract", "contractID", contractID)
	return signed, nil
}

// archive stores the signed document. The contract row already holds the
// same HTML, so a failure here is logged and not returned.
func (s *contractService) archive(ctx context.Context, c *domain.Contract) {
	if s.docs == nil {
		return
	}
	key := storage.SignedContractKey(c.ID)
	if err := s.docs.SaveFile(ctx, key, strings.NewReader(c.Document)); err != nil {
		logger.FromContext(ctx).Error("Failed to archive signed contract", "contractID", c.ID, "key", key, "error", err)
	}
}

func (s *contractService) regenerate(next *domain.ContractSnapshot) (string, error) {
	if err := contractdoc.Recompute(next); err != nil {
		return "", err
	}
	return s.builder.Render(*next)
}

func notNegotiating(c *domain.Contract) error {
	return &domain.ErrConflict{Message: fmt.Sprintf("contrato %d nao esta em negociacao (%s)", c.ID, c.Status)}
}

func (s *contractService) MarkContractRead(ctx context.Context, p domain.Principal, contractID int32, party domain.Party) error {
	c, err := s.repos.GetContract(ctx, contractID)
	if err != nil {
		return err
	}
	if err := authorizeMarkRead(ctx, s.repos, p, party, c.DriverID, c.VehicleID); err != nil {
		return err
	}
	return s.repos.MarkContractSeen(ctx, c.ID, party)
}

func (s *contractService) ListMyContracts(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.Contract, error) {
	if !p.IsDriver() {
		return nil, &domain.ErrForbidden{Action: "listar contratos", Reason: "apenas motoristas"}
	}
	list, err := s.repos.ListContractsByDriver(ctx, p.ID, unseenOnly)
	return withoutDocuments(list), err
}

func (s *contractService) ListReceivedContracts(ctx context.Context, p domain.Principal, unseenOnly bool) ([]domain.Contract, error) {
	switch {
	case p.IsOwner():
		list, err := s.repos.ListContractsByOwner(ctx, p.ID, unseenOnly)
		return withoutDocuments(list), err
	case p.IsAdmin():
		all, err := s.repos.ListAllContracts(ctx)
		if err != nil {
			return nil, err
		}
		list := []domain.Contract{}
		for _, c := range all {
			if !unseenOnly || !c.SeenByOwner {
				list = append(list, c)
			}
		}
		return withoutDocuments(list), nil
	default:
		return nil, &domain.ErrForbidden{Action: "listar contratos recebidos", Reason: "apenas proprietario ou admin"}
	}
}

// withoutDocuments drops the rendered HTML from listings; it is served by the
// document endpoint.
func withoutDocuments(list []domain.Contract) []domain.Contract {
	for i := range list {
		list[i].Document = ""
	}
	return list
}

func (s *contractService) ListRevisions(ctx context.Context, p domain.Principal, contractID int32) ([]domain.ContractRevision, error) {
	c, err := s.repos.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, p, c); err != nil {
		return nil, err
	}
	return s.repos.ListRevisions(ctx, c.ID)
}

func (s *contractService) GetDocument(ctx context.Context, p domain.Principal, contractID int32) (string, error) {
	c, err := s.GetContract(ctx, p, contractID)
	if err != nil {
		return "", err
	}
	if c.Status != domain.ContractStatusSigned || s.docs == nil {
		return c.Document, nil
	}

	rc, err := s.docs.ReadFile(ctx, storage.SignedContractKey(c.ID))
	if errors.Is(err, storage.ErrNotExist) {
		logger.FromContext(ctx).Warn("Signed contract not archived, serving stored copy", "contractID", c.ID)
		return c.Document, nil
	}
	if err != nil {
		return "", err
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read archived contract %d: %w", c.ID, err)
	}
	return string(body), nil
}
