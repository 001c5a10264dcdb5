package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gosuda/seguro/internal/report"
)

// ReportRepo answers the aggregate queries of report.Source.
type ReportRepo struct {
	pool *pgxpool.Pool
}

var _ report.Source = (*ReportRepo)(nil)

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) PremiumByClient(ctx context.Context) ([]report.PremiumTotal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.tax_id, c.name, SUM(p.premium)::text
		 FROM clients c JOIN policies p ON p.client_id = c.id
		 WHERE p.status = 'active'
		 GROUP BY c.id, c.tax_id, c.name`,
	)
	if err != nil {
		return nil, mapError("reportRepo.PremiumByClient", err)
	}
	defer rows.Close()

	var out []report.PremiumTotal
	for rows.Next() {
		var (
			t     report.PremiumTotal
			total string
		)
		if err := rows.Scan(&t.ClientID, &t.TaxID, &t.Name, &total); err != nil {
			return nil, fmt.Errorf("reportRepo.PremiumByClient: scan: %w", err)
		}
		t.Total, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("reportRepo.PremiumByClient: parse total: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("reportRepo.PremiumByClient: rows", err)
	}

	return out, nil
}

func (r *ReportRepo) PoliciesByClass(ctx context.Context) ([]report.ClassCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT class, COUNT(*) FROM policies WHERE status = 'active' GROUP BY class`,
	)
	if err != nil {
		return nil, mapError("reportRepo.PoliciesByClass", err)
	}
	defer rows.Close()

	var out []report.ClassCount
	for rows.Next() {
		var c report.ClassCount
		if err := rows.Scan(&c.Class, &c.Count); err != nil {
			return nil, fmt.Errorf("reportRepo.PoliciesByClass: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("reportRepo.PoliciesByClass: rows", err)
	}

	return out, nil
}

func (r *ReportRepo) ClaimsByStatus(ctx context.Context) ([]report.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
	if err != nil {
		return nil, mapError("reportRepo.ClaimsByStatus", err)
	}
	defer rows.Close()

	var out []report.StatusCount
	for rows.Next() {
		var c report.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("reportRepo.ClaimsByStatus: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("reportRepo.ClaimsByStatus: rows", err)
	}

	return out, nil
}

func (r *ReportRepo) ActivePoliciesByClient(ctx context.Context) ([]report.ClientRank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.tax_id, c.name, COUNT(p.id)
		 FROM clients c JOIN policies p ON p.client_id = c.id
		 WHERE p.status = 'active'
		 GROUP BY c.id, c.tax_id, c.name
		 ORDER BY COUNT(p.id) DESC, c.id`,
	)
	if err != nil {
		return nil, mapError("reportRepo.ActivePoliciesByClient", err)
	}
	defer rows.Close()

	var out []report.ClientRank
	for rows.Next() {
		var c report.ClientRank
		if err := rows.Scan(&c.ClientID, &c.TaxID, &c.Name, &c.ActivePolicies); err != nil {
			return nil, fmt.Errorf("reportRepo.ActivePoliciesByClient: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("reportRepo.ActivePoliciesByClient: rows", err)
	}

	return out, nil
}
