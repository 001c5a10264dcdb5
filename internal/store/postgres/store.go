package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/seguro/internal/domain"
)

// Store is the PostgreSQL Entity Store. Every mutation runs in its own
// transaction together with the insert of its audit_events row.
type Store struct {
	pool     *pgxpool.Pool
	clients  *ClientRepo
	policies *PolicyRepo
	claims   *ClaimRepo
	audit    *AuditRepo
	users    *UserRepo
	reports  *ReportRepo
}

var _ domain.EntityStore = (*Store)(nil)

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool. The caller keeps ownership of pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		clients:  NewClientRepo(pool),
		policies: NewPolicyRepo(pool),
		claims:   NewClaimRepo(pool),
		audit:    NewAuditRepo(pool),
		users:    NewUserRepo(pool),
		reports:  NewReportRepo(pool),
	}
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Ping: %w: %w", domain.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Clients() domain.ClientRepository  { return s.clients }
func (s *Store) Policies() domain.PolicyRepository { return s.policies }
func (s *Store) Claims() domain.ClaimRepository    { return s.claims }
func (s *Store) Audit() domain.AuditRepository     { return s.audit }
func (s *Store) Users() domain.UserRepository      { return s.users }
func (s *Store) Reports() *ReportRepo              { return s.reports }

// withTx runs fn inside a transaction and commits it if fn returns nil. The
// transaction is always released: rollback after commit is a no-op.
func (s *Store) withTx(ctx context.Context, caller string, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("%s: begin: %w: %w", caller, domain.ErrUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return commitError(caller, err)
	}
	return nil
}

// commitError classifies a failed commit. A server-reported error, a commit
// of an aborted transaction, or a failure before the request was sent leaves
// nothing committed. Any other failure leaves the outcome unknown.
func commitError(caller string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		return mapError(caller+": commit", err)
	case errors.Is(err, pgx.ErrTxCommitRollback), pgconn.SafeToRetry(err):
		return fmt.Errorf("%s: commit: %w: %w", caller, domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: commit: %w: %w", caller, domain.ErrCommitUnknown, err)
	}
}

// Constraint names declared in schema.sql.
const (
	constraintClientTaxID    = "clients_tax_id_key"
	constraintPolicyNumber   = "policies_number_key"
	constraintUsername       = "users_username_key"
	constraintPolicyClientFK = "policies_client_id_fkey"
	constraintClaimPolicyFK  = "claims_policy_id_fkey"
)

// mapError translates a driver error into the domain taxonomy. Errors not
// recognized as a constraint violation are infrastructure failures.
func mapError(caller string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case constraintClientTaxID:
				return fmt.Errorf("%s: %w", caller, domain.ErrDuplicateIdentifier)
			case constraintPolicyNumber:
				return fmt.Errorf("%s: %w", caller, domain.ErrPolicyNumberTaken)
			case constraintUsername:
				return fmt.Errorf("%s: %w", caller, domain.ErrUsernameTaken)
			}
			return fmt.Errorf("%s: %w: %s", caller, domain.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			switch pgErr.ConstraintName {
			case constraintPolicyClientFK:
				return fmt.Errorf("%s: %w", caller, domain.ErrClientNotFound)
			case constraintClaimPolicyFK:
				return fmt.Errorf("%s: %w", caller, domain.ErrPolicyNotFound)
			}
			return fmt.Errorf("%s: %w: %s", caller, domain.ErrNotFound, pgErr.ConstraintName)
		case "23514", "23502": // check_violation, not_null_violation
			return fmt.Errorf("%s: %w: %s", caller, domain.ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w: %w", caller, domain.ErrUnavailable, err)
}
