package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/seguro/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// insertAudit stages ev inside tx; it commits or rolls back with the entity change.
func insertAudit(ctx context.Context, tx pgx.Tx, ev *domain.AuditEvent, caller string) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("%s: marshal audit payload: %w", caller, err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO audit_events (id, actor, actor_role, operation, entity_type, entity_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.Actor, ev.ActorRole, ev.Operation, ev.EntityType, ev.EntityID, payload, ev.CreatedAt,
	)
	if err != nil {
		return mapError(caller+": audit", err)
	}

	return nil
}

// ListByEntity returns the audit trail of one entity, oldest first.
func (r *AuditRepo) ListByEntity(ctx context.Context, entity domain.EntityType, id uuid.UUID) ([]*domain.AuditEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, actor, actor_role, operation, entity_type, entity_id, payload, created_at
		 FROM audit_events WHERE entity_type = $1 AND entity_id = $2
		 ORDER BY created_at, id`,
		entity, id,
	)
	if err != nil {
		return nil, mapError("auditRepo.ListByEntity", err)
	}
	defer rows.Close()

	return scanAuditEvents(rows, "auditRepo.ListByEntity")
}

func scanAuditEvents(rows pgx.Rows, caller string) ([]*domain.AuditEvent, error) {
	var events []*domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		var payload []byte

		if err := rows.Scan(
			&e.ID, &e.Actor, &e.ActorRole, &e.Operation,
			&e.EntityType, &e.EntityID, &payload, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("%s: unmarshal payload: %w", caller, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return events, nil
}
