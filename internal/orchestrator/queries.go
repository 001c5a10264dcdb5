package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/taxid"
)

// GetClient looks a client up by national identifier in any format.
func (o *Orchestrator) GetClient(ctx context.Context, actor domain.Identity, rawTaxID string) (*domain.Client, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator.GetClient: %w", err)
	}
	digits, err := taxid.Validate(rawTaxID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator.GetClient: %w", err)
	}

	c, err := o.store.Clients().GetByTaxID(ctx, digits)
	if err != nil {
		return nil, fmt.Errorf("orchestrator.GetClient: %w", err)
	}
	return c, nil
}

func (o *Orchestrator) GetPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator.GetPolicy: %w", err)
	}

	p, err := o.store.Policies().GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, fmt.Errorf("orchestrator.GetPolicy: %w", err)
	}
	return p, nil
}

// ListClaims returns the claims filed against a policy, newest first.
func (o *Orchestrator) ListClaims(ctx context.Context, actor domain.Identity, number string) ([]*domain.Claim, error) {
	p, err := o.GetPolicy(ctx, actor, number)
	if err != nil {
		return nil, fmt.Errorf("orchestrator.ListClaims: %w", err)
	}

	claims, err := o.store.Claims().ListByPolicy(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator.ListClaims: %w", err)
	}
	return claims, nil
}

func (o *Orchestrator) GetClaim(ctx context.Context, actor domain.Identity, id uuid.UUID) (*domain.Claim, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator.GetClaim: %w", err)
	}

	c, err := o.store.Claims().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("orchestrator.GetClaim: %w", err)
	}
	return c, nil
}

// AuditTrail returns the committed audit events of one entity. Admin only.
func (o *Orchestrator) AuditTrail(ctx context.Context, actor domain.Identity, entity domain.EntityType, id uuid.UUID) ([]*domain.AuditEvent, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator.AuditTrail: %w", err)
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("orchestrator.AuditTrail: %w", domain.ErrForbidden)
	}

	events, err := o.store.Audit().ListByEntity(ctx, entity, id)
	if err != nil {
		return nil, fmt.Errorf("orchestrator.AuditTrail: %w", err)
	}
	return events, nil
}
