package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/seguro/internal/domain"
)

const claimColumns = `id, policy_id, occurred_on, description, status, created_at, updated_at`

type ClaimRepo struct {
	pool *pgxpool.Pool
}

func NewClaimRepo(pool *pgxpool.Pool) *ClaimRepo {
	return &ClaimRepo{pool: pool}
}

func (r *ClaimRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id)
	return scanClaim(row, "claimRepo.GetByID")
}

// ListByPolicy returns the claims of a policy, newest first.
func (r *ClaimRepo) ListByPolicy(ctx context.Context, policyID uuid.UUID) ([]*domain.Claim, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE policy_id = $1
		 ORDER BY created_at DESC, id DESC`,
		policyID,
	)
	if err != nil {
		return nil, mapError("claimRepo.ListByPolicy", err)
	}
	defer rows.Close()

	var claims []*domain.Claim
	for rows.Next() {
		var c domain.Claim
		err = rows.Scan(&c.ID, &c.PolicyID, &c.OccurredOn, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("claimRepo.ListByPolicy: scan: %w", err)
		}
		claims = append(claims, &c)
	}
	err = rows.Err()
	if err != nil {
		return nil, mapError("claimRepo.ListByPolicy: rows", err)
	}

	return claims, nil
}

func scanClaim(row pgx.Row, caller string) (*domain.Claim, error) {
	var c domain.Claim
	err := row.Scan(&c.ID, &c.PolicyID, &c.OccurredOn, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrClaimNotFound)
	}
	if err != nil {
		return nil, mapError(caller, err)
	}
	return &c, nil
}

// --- Mutations ---

func (s *Store) CreateClaim(ctx context.Context, actor domain.Identity, number string, c *domain.Claim) (*domain.AuditEvent, error) {
	const caller = "postgres.CreateClaim"

	var ev *domain.AuditEvent
	err := s.withTx(ctx, caller, func(tx pgx.Tx) error {
		var status domain.PolicyStatus
		// FOR SHARE blocks a concurrent cancellation until this claim commits.
		err := tx.QueryRow(ctx,
			`SELECT id, status FROM policies WHERE number = $1 FOR SHARE`, number,
		).Scan(&c.PolicyID, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %s: %w", caller, number, domain.ErrPolicyNotFound)
		}
		if err != nil {
			return mapError(caller, err)
		}
		if status != domain.PolicyStatusActive {
			return fmt.Errorf("%s: %s is %s: %w", caller, number, status, domain.ErrPolicyNotActive)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO claims (`+claimColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.PolicyID, c.OccurredOn, c.Description, c.Status, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return mapError(caller, err)
		}

		ev = domain.NewAuditEvent(actor, domain.OpCreateClaim, domain.EntityClaim, c.ID, c.AuditPayload(number))
		return insertAudit(ctx, tx, ev, caller)
	})
	if err != nil {
		return nil, err
	}

	return ev, nil
}

func (s *Store) UpdateClaimStatus(ctx context.Context, actor domain.Identity, id uuid.UUID, status domain.ClaimStatus) (*domain.Claim, *domain.AuditEvent, error) {
	const caller = "postgres.UpdateClaimStatus"

	var (
		claim *domain.Claim
		ev    *domain.AuditEvent
	)
	err := s.withTx(ctx, caller, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1 FOR UPDATE`, id)
		c, err := scanClaim(row, caller)
		if err != nil {
			return err
		}
		if !c.Status.ValidTransition(status) {
			return fmt.Errorf("%s: %s -> %s: %w", caller, c.Status, status, domain.ErrInvalidInput)
		}
		if c.Status == status {
			claim = c
			return nil
		}

		old := c.Status
		c.Status = status
		err = tx.QueryRow(ctx,
			`UPDATE claims SET status = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`,
			c.Status, c.ID,
		).Scan(&c.UpdatedAt)
		if err != nil {
			return mapError(caller, err)
		}

		ev = domain.NewAuditEvent(actor, domain.OpUpdateClaimStatus, domain.EntityClaim, c.ID,
			domain.ChangesPayload(map[string]domain.FieldChange{
				"status": {Old: string(old), New: string(status)},
			}))
		if err := insertAudit(ctx, tx, ev, caller); err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return claim, ev, nil
}
