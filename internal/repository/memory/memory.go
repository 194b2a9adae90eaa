// Package memory is an in-process implementation of the repositories. It
// backs workflow tests and local demos; transactions run on a copy of the
// state that replaces the original only on commit. Calls outside a
// transaction take the store lock, so handlers may use it concurrently.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"driverent-backend/internal/domain"
	"driverent-backend/internal/repository"
	"driverent-backend/internal/utils"
)

type state struct {
	nextID    int32
	vehicles  map[int32]domain.Vehicle
	drivers   map[int32]domain.PartyIdentity
	owners    map[int32]domain.PartyIdentity
	legal     map[domain.Party]map[int32]domain.LegalProfile
	requests  map[int32]domain.RentalRequest
	rentals   map[int32]domain.Rental
	contracts map[int32]domain.Contract
	revisions []domain.ContractRevision
}

func newState() *state {
	return &state{
		vehicles:  map[int32]domain.Vehicle{},
		drivers:   map[int32]domain.PartyIdentity{},
		owners:    map[int32]domain.PartyIdentity{},
		legal:     map[domain.Party]map[int32]domain.LegalProfile{domain.PartyDriver: {}, domain.PartyOwner: {}},
		requests:  map[int32]domain.RentalRequest{},
		rentals:   map[int32]domain.Rental{},
		contracts: map[int32]domain.Contract{},
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range s.drivers {
		c.drivers[k] = v
	}
	for k, v := range s.owners {
		c.owners[k] = v
	}
	for party, profiles := range s.legal {
		for k, v := range profiles {
			c.legal[party][k] = v
		}
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.rentals {
		c.rentals[k] = v
	}
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	c.revisions = append(c.revisions, s.revisions...)
	return c
}

func (s *state) id() int32 {
	s.nextID++
	return s.nextID
}

// Store holds the committed state. The embedded Repositories operate on it
// directly, outside any transaction.
type Store struct {
	mu sync.Mutex
	st *state
	repository.Repositories
}

func NewStore() *Store {
	s := &Store{st: newState()}
	s.Repositories = bind(&repos{
		get:  func() *state { return s.st },
		lock: s.lock,
	})
	return s
}

func bind(r *repos) repository.Repositories {
	return repository.Repositories{
		VehicleRepository:          r,
		PartyRepository:            r,
		LegalProfileRepository:     r,
		RentalRequestRepository:    r,
		RentalRepository:           r,
		ContractRepository:         r,
		ContractRevisionRepository: r,
	}
}

// WithTx serialises transactions and applies fn's writes only when it
// returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	// The store lock is already held for the whole transaction.
	if err := fn(bind(&repos{get: func() *state { return draft }, lock: noLock})); err != nil {
		return err
	}
	s.st = draft
	return nil
}

func (s *Store) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func noLock() func() { return func() {} }

func (s *Store) AddVehicle(v domain.Vehicle) {
	defer s.lock()()
	s.st.vehicles[v.ID] = v
}

func (s *Store) AddDriver(p domain.PartyIdentity) {
	defer s.lock()()
	s.st.drivers[p.ID] = p
}

func (s *Store) AddOwner(p domain.PartyIdentity) {
	defer s.lock()()
	s.st.owners[p.ID] = p
}

func (s *Store) AddRental(r domain.Rental) {
	defer s.lock()()
	if r.ID == 0 {
		r.ID = s.st.id()
	}
	s.st.rentals[r.ID] = r
}

// Counts reports how many requests, rentals and contracts are stored.
func (s *Store) Counts() (requests, rentals, contracts int) {
	defer s.lock()()
	return len(s.st.requests), len(s.st.rentals), len(s.st.contracts)
}

type repos struct {
	get  func() *state
	lock func() func()
}

func (r *repos) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error) {
	defer r.lock()()
	v, ok := r.get().vehicles[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "veiculo", ID: id}
	}
	return &v, nil
}

func (r *repos) SetVehicleStatus(ctx context.Context, id int32, status domain.VehicleStatus) error {
	defer r.lock()()
	st := r.get()
	v, ok := st.vehicles[id]
	if !ok {
		return nil
	}
	v.Status = status
	st.vehicles[id] = v
	return nil
}

func (r *repos) GetDriver(ctx context.Context, id int32) (*domain.PartyIdentity, error) {
	defer r.lock()()
	p, ok := r.get().drivers[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "motorista", ID: id}
	}
	return &p, nil
}

func (r *repos) GetOwner(ctx context.Context, id int32) (*domain.PartyIdentity, error) {
	defer r.lock()()
	p, ok := r.get().owners[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "proprietario", ID: id}
	}
	return &p, nil
}

func (r *repos) GetLegalProfile(ctx context.Context, party domain.Party, partyID int32) (*domain.LegalProfile, error) {
	defer r.lock()()
	p := r.get().legal[party][partyID]
	return &p, nil
}

func (r *repos) UpsertLegalProfile(ctx context.Context, party domain.Party, partyID int32, p domain.LegalProfile) error {
	defer r.lock()()
	st := r.get()
	current := st.legal[party][partyID]
	current.Merge(p)
	st.legal[party][partyID] = current
	return nil
}

func (r *repos) CreateRequest(ctx context.Context, rq *domain.RentalRequest) error {
	defer r.lock()()
	st := r.get()
	rq.ID = st.id()
	rq.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	st.requests[rq.ID] = *rq
	return nil
}

func (r *repos) GetRequest(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	defer r.lock()()
	rq, ok := r.get().requests[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "solicitacao", ID: id}
	}
	return &rq, nil
}

func (r *repos) GetRequestForUpdate(ctx context.Context, id int32) (*domain.RentalRequest, error) {
	return r.GetRequest(ctx, id)
}

func (r *repos) DecideRequest(ctx context.Context, id int32, status domain.RentalRequestStatus, reason *string) (bool, error) {
	defer r.lock()()
	st := r.get()
	rq, ok := st.requests[id]
	if !ok || rq.Status != domain.RequestStatusPending {
		return false, nil
	}
	rq.Status = status
	rq.RefusalReason = reason
	rq.SeenByDriver = false
	rq.SeenByOwner = true
	st.requests[id] = rq
	return true, nil
}

func (r *repos) MarkRequestSeen(ctx context.Context, id int32, party domain.Party) error {
	defer r.lock()()
	st := r.get()
	rq, ok := st.requests[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "solicitacao", ID: id}
	}
	if party == domain.PartyDriver {
		rq.SeenByDriver = true
	} else {
		rq.SeenByOwner = true
	}
	st.requests[id] = rq
	return nil
}

func (r *repos) listRequests(match func(st *state, rq domain.RentalRequest) bool) []domain.RentalRequest {
	st := r.get()
	list := []domain.RentalRequest{}
	for _, rq := range st.requests {
		if match(st, rq) {
			v := st.vehicles[rq.VehicleID]
			rq.Vehicle = &domain.VehicleSummary{Marca: v.Marca, Modelo: v.Modelo, Placa: v.Placa}
			list = append(list, rq)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list
}

func (r *repos) ListRequestsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.RentalRequest, error) {
	defer r.lock()()
	return r.listRequests(func(_ *state, rq domain.RentalRequest) bool {
		return rq.DriverID == driverID && (!unseenOnly || !rq.SeenByDriver)
	}), nil
}

func (r *repos) ListRequestsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.RentalRequest, error) {
	defer r.lock()()
	return r.listRequests(func(st *state, rq domain.RentalRequest) bool {
		return ownedBy(st, rq.VehicleID, ownerID) && (!unseenOnly || !rq.SeenByOwner)
	}), nil
}

func (r *repos) ListAllRequests(ctx context.Context) ([]domain.RentalRequest, error) {
	defer r.lock()()
	return r.listRequests(func(*state, domain.RentalRequest) bool { return true }), nil
}

func (r *repos) CountUnseenRequests(ctx context.Context, party domain.Party, partyID int32) (int, error) {
	defer r.lock()()
	st := r.get()
	n := 0
	for _, rq := range st.requests {
		switch party {
		case domain.PartyDriver:
			if rq.DriverID == partyID && !rq.SeenByDriver {
				n++
			}
		case domain.PartyOwner:
			if ownedBy(st, rq.VehicleID, partyID) && !rq.SeenByOwner {
				n++
			}
		}
	}
	return n, nil
}

func ownedBy(st *state, vehicleID, ownerID int32) bool {
	v, ok := st.vehicles[vehicleID]
	return ok && v.OwnerID != nil && *v.OwnerID == ownerID
}

func (r *repos) CreateRental(ctx context.Context, rt *domain.Rental) error {
	defer r.lock()()
	st := r.get()
	rt.ID = st.id()
	rt.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	st.rentals[rt.ID] = *rt
	return nil
}

func (r *repos) GetRental(ctx context.Context, id int32) (*domain.Rental, error) {
	defer r.lock()()
	rt, ok := r.get().rentals[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "aluguel", ID: id}
	}
	return &rt, nil
}

func (r *repos) HasOverlappingRental(ctx context.Context, vehicleID int32, startDate, endDate string) (bool, error) {
	defer r.lock()()
	for _, rt := range r.get().rentals {
		if rt.VehicleID != vehicleID || !isActive(rt.Status) {
			continue
		}
		if utils.RangesOverlap(rt.StartDate, rt.EndDate, startDate, endDate) {
			return true, nil
		}
	}
	return false, nil
}

func isActive(s domain.RentalStatus) bool {
	for _, a := range domain.ActiveRentalStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (r *repos) SetRentalStatus(ctx context.Context, id int32, status domain.RentalStatus) error {
	defer r.lock()()
	st := r.get()
	rt, ok := st.rentals[id]
	if !ok {
		return nil
	}
	rt.Status = status
	st.rentals[id] = rt
	return nil
}

func (r *repos) UpdateRentalTerms(ctx context.Context, id int32, dailyRate, total float64) error {
	defer r.lock()()
	st := r.get()
	rt, ok := st.rentals[id]
	if !ok {
		return nil
	}
	rt.DailyRate = dailyRate
	rt.TotalAmount = total
	st.rentals[id] = rt
	return nil
}

func (r *repos) HasRentalInProgress(ctx context.Context, vehicleID int32) (bool, error) {
	defer r.lock()()
	for _, rt := range r.get().rentals {
		if rt.VehicleID == vehicleID && rt.Status == domain.RentalStatusInProgress {
			return true, nil
		}
	}
	return false, nil
}

func (r *repos) StartDueRentals(ctx context.Context, today string) ([]domain.Rental, error) {
	defer r.lock()()
	return r.transition(domain.RentalStatusSigned, domain.RentalStatusInProgress, func(rt domain.Rental) bool {
		return rt.StartDate <= today
	}), nil
}

func (r *repos) FinishDueRentals(ctx context.Context, today string) ([]domain.Rental, error) {
	defer r.lock()()
	return r.transition(domain.RentalStatusInProgress, domain.RentalStatusFinished, func(rt domain.Rental) bool {
		return rt.EndDate < today
	}), nil
}

func (r *repos) transition(from, to domain.RentalStatus, due func(domain.Rental) bool) []domain.Rental {
	st := r.get()
	var moved []domain.Rental
	for id, rt := range st.rentals {
		if rt.Status == from && due(rt) {
			rt.Status = to
			st.rentals[id] = rt
			moved = append(moved, rt)
		}
	}
	sort.Slice(moved, func(i, j int) bool { return moved[i].ID < moved[j].ID })
	return moved
}

func (r *repos) CreateContract(ctx context.Context, c *domain.Contract) error {
	defer r.lock()()
	st := r.get()
	now := time.Now().UTC()
	c.ID = st.id()
	c.CreatedAt, c.UpdatedAt = now, now
	st.contracts[c.ID] = *c
	return nil
}

func (r *repos) GetContract(ctx context.Context, id int32) (*domain.Contract, error) {
	defer r.lock()()
	c, ok := r.get().contracts[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "contrato", ID: id}
	}
	return &c, nil
}

func (r *repos) GetContractForUpdate(ctx context.Context, id int32) (*domain.Contract, error) {
	return r.GetContract(ctx, id)
}

func (r *repos) updateContract(id int32, allowed []domain.ContractStatus, apply func(c *domain.Contract)) bool {
	st := r.get()
	c, ok := st.contracts[id]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if c.Status == s {
			apply(&c)
			c.UpdatedAt = time.Now().UTC()
			st.contracts[id] = c
			return true
		}
	}
	return false
}

func (r *repos) UpdateContractTerms(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error) {
	defer r.lock()()
	return r.updateContract(id, []domain.ContractStatus{domain.ContractStatusNegotiating}, func(c *domain.Contract) {
		c.Terms = terms
		c.Document = document
	}), nil
}

func (r *repos) PublishContract(ctx context.Context, id int32, terms domain.ContractSnapshot, document string) (bool, error) {
	defer r.lock()()
	return r.updateContract(id, []domain.ContractStatus{domain.ContractStatusNegotiating}, func(c *domain.Contract) {
		c.Status = domain.ContractStatusReadyForSignature
		c.Terms = terms
		c.Document = document
		c.SeenByDriver = false
		c.SeenByOwner = true
	}), nil
}

func (r *repos) SignContract(ctx context.Context, id int32, sig domain.SignatureEvidence) (bool, error) {
	defer r.lock()()
	allowed := []domain.ContractStatus{domain.ContractStatusNegotiating, domain.ContractStatusReadyForSignature}
	return r.updateContract(id, allowed, func(c *domain.Contract) {
		at, ip := sig.At, sig.IP
		c.Status = domain.ContractStatusSigned
		c.SignedAt = &at
		c.SignatureIP = &ip
		c.SeenByDriver = true
		c.SeenByOwner = false
	}), nil
}

func (r *repos) MarkContractSeen(ctx context.Context, id int32, party domain.Party) error {
	defer r.lock()()
	st := r.get()
	c, ok := st.contracts[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "contrato", ID: id}
	}
	if party == domain.PartyDriver {
		c.SeenByDriver = true
	} else {
		c.SeenByOwner = true
	}
	st.contracts[id] = c
	return nil
}

func (r *repos) listContracts(match func(st *state, c domain.Contract) bool) []domain.Contract {
	st := r.get()
	list := []domain.Contract{}
	for _, c := range st.contracts {
		if match(st, c) {
			v := st.vehicles[c.VehicleID]
			c.Vehicle = &domain.VehicleSummary{Marca: v.Marca, Modelo: v.Modelo, Placa: v.Placa}
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list
}

func (r *repos) ListContractsByDriver(ctx context.Context, driverID int32, unseenOnly bool) ([]domain.Contract, error) {
	defer r.lock()()
	return r.listContracts(func(_ *state, c domain.Contract) bool {
		return c.DriverID == driverID && (!unseenOnly || !c.SeenByDriver)
	}), nil
}

func (r *repos) ListContractsByOwner(ctx context.Context, ownerID int32, unseenOnly bool) ([]domain.Contract, error) {
	defer r.lock()()
	return r.listContracts(func(st *state, c domain.Contract) bool {
		return ownedBy(st, c.VehicleID, ownerID) && (!unseenOnly || !c.SeenByOwner)
	}), nil
}

func (r *repos) ListAllContracts(ctx context.Context) ([]domain.Contract, error) {
	defer r.lock()()
	return r.listContracts(func(*state, domain.Contract) bool { return true }), nil
}

func (r *repos) CountUnseenContracts(ctx context.Context, party domain.Party, partyID int32) (int, error) {
	defer r.lock()()
	st := r.get()
	n := 0
	for _, c := range st.contracts {
		switch party {
		case domain.PartyDriver:
			if c.DriverID == partyID && !c.SeenByDriver {
				n++
			}
		case domain.PartyOwner:
			if ownedBy(st, c.VehicleID, partyID) && !c.SeenByOwner {
				n++
			}
		}
	}
	return n, nil
}

func (r *repos) CreateRevision(ctx context.Context, rev *domain.ContractRevision) error {
	defer r.lock()()
	st := r.get()
	rev.ID = st.id()
	rev.CreatedAt = time.Now().UTC()
	st.revisions = append(st.revisions, *rev)
	return nil
}

func (r *repos) ListRevisions(ctx context.Context, contractID int32) ([]domain.ContractRevision, error) {
	defer r.lock()()
	list := []domain.ContractRevision{}
	for _, rev := range r.get().revisions {
		if rev.ContractID == contractID {
			list = append(list, rev)
		}
	}
	return list, nil
}
