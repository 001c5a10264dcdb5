package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID `json:"id"`
	TaxID     string    `json:"tax_id"` // normalized 11 digits, unique
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the field-level invariants that do not need the store.
// TaxID is expected to be normalized already.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("client: name is required: %w", ErrInvalidInput)
	}
	if c.BirthDate.IsZero() {
		return fmt.Errorf("client: birth date is required: %w", ErrInvalidDate)
	}
	return ValidateEmail(c.Email)
}

// ValidateEmail accepts an empty value; a non-empty one must contain "@".
func ValidateEmail(email string) error {
	if email != "" && !strings.Contains(email, "@") {
		return fmt.Errorf("client: %q: %w", email, ErrInvalidEmail)
	}
	return nil
}

// ClientPatch carries an update; nil fields are left untouched.
type ClientPatch struct {
	Phone   *string
	Email   *string
	Address *string
}

// FieldChange is one entry of an update audit payload.
type FieldChange struct {
	Old any `json:"old" bson:"old"`
	New any `json:"new" bson:"new"`
}

// Apply mutates c with the fields of p that differ from the current values
// and returns only those differences. An empty map means nothing changed.
func (c *Client) Apply(p ClientPatch) map[string]FieldChange {
	changes := make(map[string]FieldChange)

	set := func(field string, cur *string, next *string) {
		if next == nil || *next == *cur {
			return
		}
		changes[field] = FieldChange{Old: *cur, New: *next}
		*cur = *next
	}

	set("phone", &c.Phone, p.Phone)
	set("email", &c.Email, p.Email)
	set("address", &c.Address, p.Address)

	return changes
}

// ClientRepository is the read side used by lookups.
type ClientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	GetByTaxID(ctx context.Context, taxID string) (*Client, error)
}

// AuditPayload renders the submitted client data for a create event.
func (c *Client) AuditPayload() map[string]any {
	return map[string]any{
		"tax_id":     c.TaxID,
		"name":       c.Name,
		"birth_date": c.BirthDate.Format(time.DateOnly),
		"phone":      c.Phone,
		"email":      c.Email,
		"address":    c.Address,
	}
}
