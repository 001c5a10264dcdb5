package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gosuda/seguro/internal/domain"
)

// premium travels as text so NUMERIC values never pass through a float.
const policyColumns = `id, number, client_id, coverage, premium::text, issue_date, expiry_date, status, created_at, updated_at`

type PolicyRepo struct {
	pool *pgxpool.Pool
}

func NewPolicyRepo(pool *pgxpool.Pool) *PolicyRepo {
	return &PolicyRepo{pool: pool}
}

func (r *PolicyRepo) GetByNumber(ctx context.Context, number string) (*domain.Policy, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+policyColumns+` FROM policies WHERE number = $1`, number)
	return scanPolicy(row, "policyRepo.GetByNumber")
}

func scanPolicy(row pgx.Row, caller string) (*domain.Policy, error) {
	var (
		p        domain.Policy
		coverage []byte
		premium  string
	)
	err := row.Scan(&p.ID, &p.Number, &p.ClientID, &coverage, &premium,
		&p.IssueDate, &p.ExpiryDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrPolicyNotFound)
	}
	if err != nil {
		return nil, mapError(caller, err)
	}

	if err := json.Unmarshal(coverage, &p.Coverage); err != nil {
		return nil, fmt.Errorf("%s: unmarshal coverage: %w", caller, err)
	}
	p.Premium, err = decimal.NewFromString(premium)
	if err != nil {
		return nil, fmt.Errorf("%s: parse premium: %w", caller, err)
	}

	return &p, nil
}

// --- Mutations ---

func (s *Store) CreatePolicy(ctx context.Context, actor domain.Identity, p *domain.Policy) (*domain.AuditEvent, error) {
	const caller = "postgres.CreatePolicy"

	coverage, err := json.Marshal(p.Coverage)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal coverage: %w", caller, err)
	}

	ev := domain.NewAuditEvent(actor, domain.OpCreatePolicy, domain.EntityPolicy, p.ID, p.AuditPayload())

	err = s.withTx(ctx, caller, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO policies (id, number, client_id, class, coverage, premium, issue_date, expiry_date, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8, $9, $10, $11)`,
			p.ID, p.Number, p.ClientID, p.Coverage.Class, coverage, p.Premium.StringFixed(2),
			p.IssueDate, p.ExpiryDate, p.Status, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return mapError(caller, err)
		}
		return insertAudit(ctx, tx, ev, caller)
	})
	if err != nil {
		return nil, err
	}

	return ev, nil
}

func (s *Store) CancelPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, *domain.AuditEvent, error) {
	const caller = "postgres.CancelPolicy"

	var (
		policy *domain.Policy
		ev     *domain.AuditEvent
	)
	err := s.withTx(ctx, caller, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+policyColumns+` FROM policies WHERE number = $1 FOR UPDATE`, number)
		p, err := scanPolicy(row, caller)
		if err != nil {
			return err
		}
		if !p.Status.ValidTransition(domain.PolicyStatusCancelled) {
			return fmt.Errorf("%s: %s: %w", caller, number, domain.ErrAlreadyCancelled)
		}

		old := p.Status
		p.Status = domain.PolicyStatusCancelled
		err = tx.QueryRow(ctx,
			`UPDATE policies SET status = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`,
			p.Status, p.ID,
		).Scan(&p.UpdatedAt)
		if err != nil {
			return mapError(caller, err)
		}

		payload := domain.ChangesPayload(map[string]domain.FieldChange{
			"status": {Old: string(old), New: string(p.Status)},
		})
		payload["number"] = p.Number
		ev = domain.NewAuditEvent(actor, domain.OpCancelPolicy, domain.EntityPolicy, p.ID, payload)
		if err := insertAudit(ctx, tx, ev, caller); err != nil {
			return err
		}
		policy = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return policy, ev, nil
}
