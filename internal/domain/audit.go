package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Operation names a mutating operation in audit records.
type Operation string

const (
	OpCreateClient      Operation = "CREATE_CLIENT"
	OpUpdateClient      Operation = "UPDATE_CLIENT"
	OpCreatePolicy      Operation = "CREATE_POLICY"
	OpCancelPolicy      Operation = "CANCEL_POLICY"
	OpCreateClaim       Operation = "CREATE_CLAIM"
	OpUpdateClaimStatus Operation = "UPDATE_CLAIM_STATUS"
)

var operations = []Operation{
	OpCreateClient, OpUpdateClient, OpCreatePolicy, OpCancelPolicy, OpCreateClaim, OpUpdateClaimStatus,
}

// ParseOperation accepts an operation name in any case.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(operations, op) {
		return "", fmt.Errorf("operation %q: %w", s, ErrInvalidInput)
	}
	return op, nil
}

type EntityType string

const (
	EntityClient EntityType = "client"
	EntityPolicy EntityType = "policy"
	EntityClaim  EntityType = "claim"
)

// AuditEvent is an append-only record of one committed mutation. For creates
// Payload holds the submitted data; for updates it maps field -> FieldChange.
type AuditEvent struct {
	ID         uuid.UUID      `json:"id"`
	Actor      string         `json:"actor"`
	ActorRole  Role           `json:"actor_role"`
	Operation  Operation      `json:"operation"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Payload    map[string]any `json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewAuditEvent stamps an event for actor.
func NewAuditEvent(actor Identity, op Operation, entity EntityType, entityID uuid.UUID, payload map[string]any) *AuditEvent {
	if payload == nil {
		payload = map[string]any{}
	}
	return &AuditEvent{
		ID:         uuid.New(),
		Actor:      actor.Username,
		ActorRole:  actor.Role,
		Operation:  op,
		EntityType: entity,
		EntityID:   entityID,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}

// ChangesPayload converts a field diff into an audit payload.
func ChangesPayload(changes map[string]FieldChange) map[string]any {
	out := make(map[string]any, len(changes))
	for k, v := range changes {
		out[k] = v
	}
	return out
}

// AuditRepository reads the audit rows staged by the entity store.
type AuditRepository interface {
	ListByEntity(ctx context.Context, entity EntityType, id uuid.UUID) ([]*AuditEvent, error)
}

// AuditRecorder appends a best-effort copy of an event to a secondary store
// that is independent of the entity store's transactions.
type AuditRecorder interface {
	Record(ctx context.Context, ev *AuditEvent) error
}
