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

const clientColumns = `id, tax_id, name, birth_date, phone, email, address, created_at, updated_at`

type ClientRepo struct {
	pool *pgxpool.Pool
}

func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

func (r *ClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row, "clientRepo.GetByID")
}

func (r *ClientRepo) GetByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE tax_id = $1`, taxID)
	return scanClient(row, "clientRepo.GetByTaxID")
}

func scanClient(row pgx.Row, caller string) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(&c.ID, &c.TaxID, &c.Name, &c.BirthDate, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrClientNotFound)
	}
	if err != nil {
		return nil, mapError(caller, err)
	}
	return &c, nil
}

// --- Mutations ---

func (s *Store) CreateClient(ctx context.Context, actor domain.Identity, c *domain.Client) (*domain.AuditEvent, error) {
	const caller = "postgres.CreateClient"

	ev := domain.NewAuditEvent(actor, domain.OpCreateClient, domain.EntityClient, c.ID, c.AuditPayload())

	err := s.withTx(ctx, caller, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO clients (`+clientColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.TaxID, c.Name, c.BirthDate, c.Phone, c.Email, c.Address, c.CreatedAt, c.UpdatedAt,
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

func (s *Store) UpdateClient(ctx context.Context, actor domain.Identity, taxID string, p domain.ClientPatch) (*domain.Client, *domain.AuditEvent, error) {
	const caller = "postgres.UpdateClient"

	var (
		client *domain.Client
		ev     *domain.AuditEvent
	)
	err := s.withTx(ctx, caller, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE tax_id = $1 FOR UPDATE`, taxID)
		c, err := scanClient(row, caller)
		if err != nil {
			return err
		}

		changes := c.Apply(p)
		if len(changes) == 0 {
			client = c
			return nil
		}

		err = tx.QueryRow(ctx,
			`UPDATE clients SET phone = $1, email = $2, address = $3, updated_at = now()
			 WHERE id = $4 RETURNING updated_at`,
			c.Phone, c.Email, c.Address, c.ID,
		).Scan(&c.UpdatedAt)
		if err != nil {
			return mapError(caller, err)
		}

		ev = domain.NewAuditEvent(actor, domain.OpUpdateClient, domain.EntityClient, c.ID, domain.ChangesPayload(changes))
		if err := insertAudit(ctx, tx, ev, caller); err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return client, ev, nil
}
