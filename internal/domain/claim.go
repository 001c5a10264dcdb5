package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimStatusOpen        ClaimStatus = "open"
	ClaimStatusUnderReview ClaimStatus = "under_review"
	ClaimStatusClosed      ClaimStatus = "closed"
	ClaimStatusRejected    ClaimStatus = "rejected"
)

func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusOpen, ClaimStatusUnderReview, ClaimStatusClosed, ClaimStatusRejected:
		return true
	default:
		return false
	}
}

// ValidTransition checks if a claim status transition is allowed. Claims
// move freely between the four known statuses, including back to open.
func (s ClaimStatus) ValidTransition(to ClaimStatus) bool {
	return s.Valid() && to.Valid()
}

type Claim struct {
	ID          uuid.UUID   `json:"id"`
	PolicyID    uuid.UUID   `json:"policy_id"`
	OccurredOn  time.Time   `json:"occurred_on"`
	Description string      `json:"description"`
	Status      ClaimStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ClaimRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	ListByPolicy(ctx context.Context, policyID uuid.UUID) ([]*Claim, error)
}

// Validate checks the fields a new claim must carry.
func (c *Claim) Validate() error {
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("claim: description is required: %w", ErrInvalidInput)
	}
	if c.OccurredOn.IsZero() {
		return fmt.Errorf("claim: occurrence date is required: %w", ErrInvalidDate)
	}
	return nil
}

// AuditPayload renders the filed claim for a create event.
func (c *Claim) AuditPayload(policyNumber string) map[string]any {
	return map[string]any{
		"policy_number": policyNumber,
		"occurred_on":   c.OccurredOn.Format(time.DateOnly),
		"description":   c.Description,
		"status":        string(c.Status),
	}
}
