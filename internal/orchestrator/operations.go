package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/taxid"
)

type RegisterClientInput struct {
	TaxID     string
	Name      string
	BirthDate string // YYYY-MM-DD or DD/MM/YYYY
	Phone     string
	Email     string
	Address   string
}

// RegisterClient validates and stores a new client. Admin only.
func (o *Orchestrator) RegisterClient(ctx context.Context, actor domain.Identity, in RegisterClientInput) (*domain.Client, Outcome, error) {
	const op = domain.OpCreateClient
	start := time.Now()

	client, err := o.newClient(actor, in)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.RegisterClient: %w", err))
		return nil, outcome, err
	}

	ev, err := o.store.CreateClient(ctx, actor, client)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.RegisterClient: %w", err))
		return nil, outcome, err
	}

	return client, o.complete(ctx, op, actor, start, ev), nil
}

func (o *Orchestrator) newClient(actor domain.Identity, in RegisterClientInput) (*domain.Client, error) {
	if err := authorize(actor, domain.OpCreateClient); err != nil {
		return nil, err
	}

	digits, err := taxid.Validate(in.TaxID)
	if err != nil {
		return nil, err
	}
	birth, err := domain.ParseDate(in.BirthDate)
	if err != nil {
		return nil, err
	}

	now := o.now().UTC()
	c := &domain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		TaxID:     digits,
		Name:      strings.TrimSpace(in.Name),
		BirthDate: birth,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !birth.Before(domain.DateOf(now).AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("birth date in the future: %w", domain.ErrInvalidDate)
	}

	return c, nil
}

// UpdateClientInput addresses a client by tax id. Nil fields are untouched.
type UpdateClientInput struct {
	TaxID   string
	Phone   *string
	Email   *string
	Address *string
}

// UpdateClient applies the changed contact fields. When nothing changes no
// write happens and the current client is returned with OutcomeSuccess.
func (o *Orchestrator) UpdateClient(ctx context.Context, actor domain.Identity, in UpdateClientInput) (*domain.Client, Outcome, error) {
	const op = domain.OpUpdateClient
	start := time.Now()

	digits, patch, err := prepareClientPatch(actor, in)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.UpdateClient: %w", err))
		return nil, outcome, err
	}

	client, ev, err := o.store.UpdateClient(ctx, actor, digits, patch)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.UpdateClient: %w", err))
		return nil, outcome, err
	}

	return client, o.complete(ctx, op, actor, start, ev), nil
}

func prepareClientPatch(actor domain.Identity, in UpdateClientInput) (string, domain.ClientPatch, error) {
	if err := authorize(actor, domain.OpUpdateClient); err != nil {
		return "", domain.ClientPatch{}, err
	}
	digits, err := taxid.Validate(in.TaxID)
	if err != nil {
		return "", domain.ClientPatch{}, err
	}

	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	patch := domain.ClientPatch{Phone: trim(in.Phone), Email: trim(in.Email), Address: trim(in.Address)}
	if patch.Email != nil {
		if err := domain.ValidateEmail(*patch.Email); err != nil {
			return "", domain.ClientPatch{}, err
		}
	}

	return digits, patch, nil
}

type IssuePolicyInput struct {
	TaxID    string
	Coverage domain.Coverage
	// IssueDate defaults to today when empty.
	IssueDate string
}

// IssuePolicy resolves the client, prices the coverage and commits the
// policy. No store mutation is attempted unless every check passes.
func (o *Orchestrator) IssuePolicy(ctx context.Context, actor domain.Identity, in IssuePolicyInput) (*domain.Policy, Outcome, error) {
	const op = domain.OpCreatePolicy
	start := time.Now()

	policy, err := o.newPolicy(ctx, actor, in)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.IssuePolicy: %w", err))
		return nil, outcome, err
	}

	var ev *domain.AuditEvent
	for attempt := 1; ; attempt++ {
		ev, err = o.store.CreatePolicy(ctx, actor, policy)
		if !errors.Is(err, domain.ErrPolicyNumberTaken) || attempt == maxNumberAttempts {
			break
		}
		policy.Number = domain.NewPolicyNumber()
	}
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.IssuePolicy: %w", err))
		return nil, outcome, err
	}

	return policy, o.complete(ctx, op, actor, start, ev), nil
}

func (o *Orchestrator) newPolicy(ctx context.Context, actor domain.Identity, in IssuePolicyInput) (*domain.Policy, error) {
	if err := authorize(actor, domain.OpCreatePolicy); err != nil {
		return nil, err
	}

	digits, err := taxid.Validate(in.TaxID)
	if err != nil {
		return nil, err
	}
	client, err := o.store.Clients().GetByTaxID(ctx, digits)
	if err != nil {
		return nil, err
	}
	if err := in.Coverage.Validate(); err != nil {
		return nil, err
	}

	now := o.now().UTC()
	issue := domain.DateOf(now)
	if in.IssueDate != "" {
		issue, err = domain.ParseDate(in.IssueDate)
		if err != nil {
			return nil, err
		}
	}

	premium, err := o.premiums.Calculate(in.Coverage)
	if err != nil {
		return nil, err
	}

	return &domain.Policy{
		ID:         uuid.Must(uuid.NewV7()),
		Number:     domain.NewPolicyNumber(),
		ClientID:   client.ID,
		Coverage:   in.Coverage,
		Premium:    premium,
		IssueDate:  issue,
		ExpiryDate: domain.ExpiryFor(issue),
		Status:     domain.PolicyStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CancelPolicy moves an active policy to cancelled.
func (o *Orchestrator) CancelPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, Outcome, error) {
	const op = domain.OpCancelPolicy
	start := time.Now()

	number, err := preparePolicyNumber(actor, op, number)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.CancelPolicy: %w", err))
		return nil, outcome, err
	}

	policy, ev, err := o.store.CancelPolicy(ctx, actor, number)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.CancelPolicy: %w", err))
		return nil, outcome, err
	}

	return policy, o.complete(ctx, op, actor, start, ev), nil
}

func preparePolicyNumber(actor domain.Identity, op domain.Operation, number string) (string, error) {
	if err := authorize(actor, op); err != nil {
		return "", err
	}
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return "", fmt.Errorf("policy number is required: %w", domain.ErrInvalidInput)
	}
	return number, nil
}

type FileClaimInput struct {
	PolicyNumber string
	OccurredOn   string // YYYY-MM-DD or DD/MM/YYYY
	Description  string
}

// FileClaim opens a claim against an active policy.
func (o *Orchestrator) FileClaim(ctx context.Context, actor domain.Identity, in FileClaimInput) (*domain.Claim, Outcome, error) {
	const op = domain.OpCreateClaim
	start := time.Now()

	number, claim, err := o.newClaim(actor, in)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.FileClaim: %w", err))
		return nil, outcome, err
	}

	ev, err := o.store.CreateClaim(ctx, actor, number, claim)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.FileClaim: %w", err))
		return nil, outcome, err
	}

	return claim, o.complete(ctx, op, actor, start, ev), nil
}

func (o *Orchestrator) newClaim(actor domain.Identity, in FileClaimInput) (string, *domain.Claim, error) {
	number, err := preparePolicyNumber(actor, domain.OpCreateClaim, in.PolicyNumber)
	if err != nil {
		return "", nil, err
	}
	occurred, err := domain.ParseDate(in.OccurredOn)
	if err != nil {
		return "", nil, err
	}

	now := o.now().UTC()
	if occurred.After(domain.DateOf(now)) {
		return "", nil, fmt.Errorf("occurrence date in the future: %w", domain.ErrInvalidDate)
	}

	c := &domain.Claim{
		ID:          uuid.Must(uuid.NewV7()),
		OccurredOn:  occurred,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.ClaimStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return "", nil, err
	}

	return number, c, nil
}

// UpdateClaimStatus sets a claim's status. Any known status may follow any
// other; setting the current status is a no-op without an audit event.
func (o *Orchestrator) UpdateClaimStatus(ctx context.Context, actor domain.Identity, id uuid.UUID, status domain.ClaimStatus) (*domain.Claim, Outcome, error) {
	const op = domain.OpUpdateClaimStatus
	start := time.Now()

	if err := authorize(actor, op); err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.UpdateClaimStatus: %w", err))
		return nil, outcome, err
	}
	if !status.Valid() {
		outcome, err := o.fail(op, actor, start,
			fmt.Errorf("orchestrator.UpdateClaimStatus: unknown status %q: %w", status, domain.ErrInvalidInput))
		return nil, outcome, err
	}

	claim, ev, err := o.store.UpdateClaimStatus(ctx, actor, id, status)
	if err != nil {
		outcome, err := o.fail(op, actor, start, fmt.Errorf("orchestrator.UpdateClaimStatus: %w", err))
		return nil, outcome, err
	}

	return claim, o.complete(ctx, op, actor, start, ev), nil
}
