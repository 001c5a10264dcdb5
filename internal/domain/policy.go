package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusCancelled PolicyStatus = "cancelled"
)

// ValidTransition checks if a policy status transition is allowed.
// The only edge is active->cancelled; cancelled is terminal.
func (s PolicyStatus) ValidTransition(to PolicyStatus) bool {
	return s == PolicyStatusActive && to == PolicyStatusCancelled
}

type Policy struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	ClientID   uuid.UUID       `json:"client_id"`
	Coverage   Coverage        `json:"coverage"`
	Premium    decimal.Decimal `json:"premium"`
	IssueDate  time.Time       `json:"issue_date"`
	ExpiryDate time.Time       `json:"expiry_date"`
	Status     PolicyStatus    `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PolicyTerm is the validity period of a newly issued policy.
const PolicyTerm = 1 // years

// NewPolicyNumber returns an opaque 8-character policy number.
func NewPolicyNumber() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// ExpiryFor returns the expiry date for a policy issued on issue.
func ExpiryFor(issue time.Time) time.Time {
	return issue.AddDate(PolicyTerm, 0, 0)
}

type PolicyRepository interface {
	GetByNumber(ctx context.Context, number string) (*Policy, error)
}

// AuditPayload renders the issued policy for a create event.
func (p *Policy) AuditPayload() map[string]any {
	return map[string]any{
		"number":      p.Number,
		"client_id":   p.ClientID.String(),
		"coverage":    p.Coverage.AuditPayload(),
		"premium":     p.Premium.StringFixed(2),
		"issue_date":  p.IssueDate.Format(time.DateOnly),
		"expiry_date": p.ExpiryDate.Format(time.DateOnly),
		"status":      string(p.Status),
	}
}
