package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/domain"
)

type clientRepo struct{ s *Store }

func (r clientRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, fmt.Errorf("memory.clients.GetByID: %w", domain.ErrClientNotFound)
	}
	out := *c
	return &out, nil
}

func (r clientRepo) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	r.s.mu.RLock()
	id, ok := r.s.taxIDs[taxID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("memory.clients.GetByTaxID: %w", domain.ErrClientNotFound)
	}
	return r.GetByID(ctx, id)
}

type policyRepo struct{ s *Store }

func (r policyRepo) GetByNumber(_ context.Context, number string) (*domain.Policy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.numbers[number]
	if !ok {
		return nil, fmt.Errorf("memory.policies.GetByNumber: %w", domain.ErrPolicyNotFound)
	}
	return clonePolicy(r.s.policies[id]), nil
}

type claimRepo struct{ s *Store }

func (r claimRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Claim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.claims[id]
	if !ok {
		return nil, fmt.Errorf("memory.claims.GetByID: %w", domain.ErrClaimNotFound)
	}
	out := *c
	return &out, nil
}

// ListByPolicy returns the claims of a policy, newest first.
func (r claimRepo) ListByPolicy(_ context.Context, policyID uuid.UUID) ([]*domain.Claim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Claim
	for _, c := range r.s.claims {
		if c.PolicyID == policyID {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.Claim) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	return out, nil
}

type auditRepo struct{ s *Store }

// ListByEntity returns the audit trail of one entity, oldest first.
func (r auditRepo) ListByEntity(_ context.Context, entity domain.EntityType, id uuid.UUID) ([]*domain.AuditEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.AuditEvent
	for _, ev := range r.s.events {
		if ev.EntityType == entity && ev.EntityID == id {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.Username]; ok {
		return fmt.Errorf("memory.users.Create: %w", domain.ErrUsernameTaken)
	}
	stored := *u
	r.s.users[u.Username] = &stored
	return nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[username]
	if !ok {
		return nil, fmt.Errorf("memory.users.GetByUsername: %w", domain.ErrUserNotFound)
	}
	out := *u
	return &out, nil
}
