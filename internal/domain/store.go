package domain

import (
	"context"

	"github.com/google/uuid"
)

// EntityStore owns the durable Client, Policy and Claim rows. Every mutating
// method runs as a single transaction that also stages the returned
// AuditEvent, so the entity write and its audit row commit or roll back
// together. Returned errors are either a domain error (nothing written),
// ErrCommitUnknown (the commit acknowledgement was lost) or another
// ErrUnavailable (nothing committed).
type EntityStore interface {
	// CreateClient inserts c. ErrDuplicateIdentifier if c.TaxID exists.
	CreateClient(ctx context.Context, actor Identity, c *Client) (*AuditEvent, error)

	// UpdateClient applies p to the client with taxID and records only the
	// changed fields. The event is nil when nothing changed.
	UpdateClient(ctx context.Context, actor Identity, taxID string, p ClientPatch) (*Client, *AuditEvent, error)

	// CreatePolicy inserts p for an existing client. ErrClientNotFound if
	// p.ClientID does not resolve, ErrPolicyNumberTaken on number collision.
	CreatePolicy(ctx context.Context, actor Identity, p *Policy) (*AuditEvent, error)

	// CancelPolicy moves an active policy to cancelled. ErrAlreadyCancelled
	// if it is not active.
	CancelPolicy(ctx context.Context, actor Identity, number string) (*Policy, *AuditEvent, error)

	// CreateClaim files c against the policy with number. ErrPolicyNotActive
	// if the policy is not active at the moment of filing.
	CreateClaim(ctx context.Context, actor Identity, number string, c *Claim) (*AuditEvent, error)

	// UpdateClaimStatus sets the status of claim id.
	UpdateClaimStatus(ctx context.Context, actor Identity, id uuid.UUID, status ClaimStatus) (*Claim, *AuditEvent, error)

	Clients() ClientRepository
	Policies() PolicyRepository
	Claims() ClaimRepository
	Audit() AuditRepository
}
