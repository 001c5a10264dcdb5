// Package memory is an in-process Entity Store. A single mutex serializes
// mutations, so each one is atomic with its audit event just like a
// database transaction. Data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]*domain.Client
	taxIDs   map[string]uuid.UUID
	policies map[uuid.UUID]*domain.Policy
	numbers  map[string]uuid.UUID
	claims   map[uuid.UUID]*domain.Claim
	events   []*domain.AuditEvent
	users    map[string]*domain.User

	// failNext, when set, makes the next mutation fail as unavailable.
	failNext error
}

var _ domain.EntityStore = (*Store)(nil)

func New() *Store {
	return &Store{
		clients:  make(map[uuid.UUID]*domain.Client),
		taxIDs:   make(map[string]uuid.UUID),
		policies: make(map[uuid.UUID]*domain.Policy),
		numbers:  make(map[string]uuid.UUID),
		claims:   make(map[uuid.UUID]*domain.Claim),
		users:    make(map[string]*domain.User),
	}
}

// FailNext makes the next mutation return err wrapped in domain.ErrUnavailable
// without applying anything.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Clients() domain.ClientRepository  { return clientRepo{s} }
func (s *Store) Policies() domain.PolicyRepository { return policyRepo{s} }
func (s *Store) Claims() domain.ClaimRepository    { return claimRepo{s} }
func (s *Store) Audit() domain.AuditRepository     { return auditRepo{s} }
func (s *Store) Users() domain.UserRepository      { return userRepo{s} }

// begin takes the write lock and consumes an injected failure. The caller
// must call s.mu.Unlock when err is nil.
func (s *Store) begin(ctx context.Context, caller string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", caller, domain.ErrUnavailable, err)
	}
	s.mu.Lock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		s.mu.Unlock()
		return fmt.Errorf("%s: %w: %w", caller, domain.ErrUnavailable, err)
	}
	return nil
}

// --- Mutations ---

func (s *Store) CreateClient(ctx context.Context, actor domain.Identity, c *domain.Client) (*domain.AuditEvent, error) {
	const caller = "memory.CreateClient"
	if err := s.begin(ctx, caller); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if _, ok := s.taxIDs[c.TaxID]; ok {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrDuplicateIdentifier)
	}

	stored := *c
	s.clients[c.ID] = &stored
	s.taxIDs[c.TaxID] = c.ID

	ev := domain.NewAuditEvent(actor, domain.OpCreateClient, domain.EntityClient, c.ID, c.AuditPayload())
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *Store) UpdateClient(ctx context.Context, actor domain.Identity, taxID string, p domain.ClientPatch) (*domain.Client, *domain.AuditEvent, error) {
	const caller = "memory.UpdateClient"
	if err := s.begin(ctx, caller); err != nil {
		return nil, nil, err
	}
	defer s.mu.Unlock()

	id, ok := s.taxIDs[taxID]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", caller, domain.ErrClientNotFound)
	}

	c := *s.clients[id]
	changes := c.Apply(p)
	if len(changes) == 0 {
		return &c, nil, nil
	}
	c.UpdatedAt = time.Now().UTC()

	stored := c
	s.clients[id] = &stored

	ev := domain.NewAuditEvent(actor, domain.OpUpdateClient, domain.EntityClient, id, domain.ChangesPayload(changes))
	s.events = append(s.events, ev)
	return &c, ev, nil
}

func (s *Store) CreatePolicy(ctx context.Context, actor domain.Identity, p *domain.Policy) (*domain.AuditEvent, error) {
	const caller = "memory.CreatePolicy"
	if err := s.begin(ctx, caller); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if _, ok := s.clients[p.ClientID]; !ok {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrClientNotFound)
	}
	if _, ok := s.numbers[p.Number]; ok {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrPolicyNumberTaken)
	}

	s.policies[p.ID] = clonePolicy(p)
	s.numbers[p.Number] = p.ID

	ev := domain.NewAuditEvent(actor, domain.OpCreatePolicy, domain.EntityPolicy, p.ID, p.AuditPayload())
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *Store) CancelPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, *domain.AuditEvent, error) {
	const caller = "memory.CancelPolicy"
	if err := s.begin(ctx, caller); err != nil {
		return nil, nil, err
	}
	defer s.mu.Unlock()

	id, ok := s.numbers[number]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", caller, domain.ErrPolicyNotFound)
	}
	p := s.policies[id]
	if !p.Status.ValidTransition(domain.PolicyStatusCancelled) {
		return nil, nil, fmt.Errorf("%s: %s: %w", caller, number, domain.ErrAlreadyCancelled)
	}

	old := p.Status
	p.Status = domain.PolicyStatusCancelled
	p.UpdatedAt = time.Now().UTC()

	payload := domain.ChangesPayload(map[string]domain.FieldChange{
		"status": {Old: string(old), New: string(p.Status)},
	})
	payload["number"] = p.Number
	ev := domain.NewAuditEvent(actor, domain.OpCancelPolicy, domain.EntityPolicy, p.ID, payload)
	s.events = append(s.events, ev)
	return clonePolicy(p), ev, nil
}

func (s *Store) CreateClaim(ctx context.Context, actor domain.Identity, number string, c *domain.Claim) (*domain.AuditEvent, error) {
	const caller = "memory.CreateClaim"
	if err := s.begin(ctx, caller); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	id, ok := s.numbers[number]
	if !ok {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrPolicyNotFound)
	}
	if p := s.policies[id]; p.Status != domain.PolicyStatusActive {
		return nil, fmt.Errorf("%s: %s is %s: %w", caller, number, p.Status, domain.ErrPolicyNotActive)
	}

	c.PolicyID = id
	stored := *c
	s.claims[c.ID] = &stored

	ev := domain.NewAuditEvent(actor, domain.OpCreateClaim, domain.EntityClaim, c.ID, c.AuditPayload(number))
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *Store) UpdateClaimStatus(ctx context.Context, actor domain.Identity, id uuid.UUID, status domain.ClaimStatus) (*domain.Claim, *domain.AuditEvent, error) {
	const caller = "memory.UpdateClaimStatus"
	if err := s.begin(ctx, caller); err != nil {
		return nil, nil, err
	}
	defer s.mu.Unlock()

	c, ok := s.claims[id]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", caller, domain.ErrClaimNotFound)
	}
	if !c.Status.ValidTransition(status) {
		return nil, nil, fmt.Errorf("%s: %s -> %s: %w", caller, c.Status, status, domain.ErrInvalidInput)
	}
	if c.Status == status {
		out := *c
		return &out, nil, nil
	}

	old := c.Status
	c.Status = status
	c.UpdatedAt = time.Now().UTC()

	ev := domain.NewAuditEvent(actor, domain.OpUpdateClaimStatus, domain.EntityClaim, id,
		domain.ChangesPayload(map[string]domain.FieldChange{
			"status": {Old: string(old), New: string(status)},
		}))
	s.events = append(s.events, ev)
	out := *c
	return &out, ev, nil
}

func clonePolicy(p *domain.Policy) *domain.Policy {
	out := *p
	if p.Coverage.Vehicle != nil {
		v := *p.Coverage.Vehicle
		out.Coverage.Vehicle = &v
	}
	if p.Coverage.Property != nil {
		pr := *p.Coverage.Property
		out.Coverage.Property = &pr
	}
	if p.Coverage.Beneficiary != nil {
		out.Coverage.Beneficiary = &domain.LifeCover{
			Beneficiaries: slices.Clone(p.Coverage.Beneficiary.Beneficiaries),
		}
	}
	return &out
}
