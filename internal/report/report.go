// Package report aggregates read-only views over active policies and claims.
// Monetary totals are exact decimals.
package report

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gosuda/seguro/internal/domain"
)

// PremiumTotal is the summed premium of a client's active policies.
type PremiumTotal struct {
	ClientID uuid.UUID       `json:"client_id"`
	TaxID    string          `json:"tax_id"`
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
}

type ClassCount struct {
	Class domain.InsuranceClass `json:"class"`
	Count int64                 `json:"count"`
}

type StatusCount struct {
	Status domain.ClaimStatus `json:"status"`
	Count  int64              `json:"count"`
}

// ClientRank is one row of the active-policy ranking.
type ClientRank struct {
	ClientID       uuid.UUID `json:"client_id"`
	TaxID          string    `json:"tax_id"`
	Name           string    `json:"name"`
	ActivePolicies int64     `json:"active_policies"`
}

// Summary bundles every report computed from one request.
type Summary struct {
	PremiumByClient []PremiumTotal  `json:"premium_by_client"`
	TotalPremium    decimal.Decimal `json:"total_premium"`
	PoliciesByClass []ClassCount    `json:"policies_by_class"`
	ClaimsByStatus  []StatusCount   `json:"claims_by_status"`
	ClientRanking   []ClientRank    `json:"client_ranking"`
}

// Source is the read side of an entity store. Implementations return rows
// in any order; only clients with at least one active policy appear in
// PremiumByClient and ActivePoliciesByClient.
type Source interface {
	PremiumByClient(ctx context.Context) ([]PremiumTotal, error)
	PoliciesByClass(ctx context.Context) ([]ClassCount, error)
	ClaimsByStatus(ctx context.Context) ([]StatusCount, error)
	ActivePoliciesByClient(ctx context.Context) ([]ClientRank, error)
}

// Aggregator orders Source rows deterministically and builds summaries.
type Aggregator struct {
	src Source
}

func New(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// PremiumByClient returns premium totals ordered by client id.
func (a *Aggregator) PremiumByClient(ctx context.Context) ([]PremiumTotal, error) {
	rows, err := a.src.PremiumByClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("report.PremiumByClient: %w", err)
	}
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	slices.SortFunc(rows, func(x, y PremiumTotal) int {
		return compareUUID(x.ClientID, y.ClientID)
	})
	return rows, nil
}

// PoliciesByClass returns active policy counts ordered by class name.
func (a *Aggregator) PoliciesByClass(ctx context.Context) ([]ClassCount, error) {
	rows, err := a.src.PoliciesByClass(ctx)
	if err != nil {
		return nil, fmt.Errorf("report.PoliciesByClass: %w", err)
	}
	slices.SortFunc(rows, func(x, y ClassCount) int {
		return strings.Compare(string(x.Class), string(y.Class))
	})
	return rows, nil
}

// ClaimsByStatus returns claim counts over all claims ordered by status name.
func (a *Aggregator) ClaimsByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := a.src.ClaimsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("report.ClaimsByStatus: %w", err)
	}
	slices.SortFunc(rows, func(x, y StatusCount) int {
		return strings.Compare(string(x.Status), string(y.Status))
	})
	return rows, nil
}

// ClientRanking returns clients by active policy count, descending. Ties are
// broken by client id ascending.
func (a *Aggregator) ClientRanking(ctx context.Context) ([]ClientRank, error) {
	rows, err := a.src.ActivePoliciesByClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("report.ClientRanking: %w", err)
	}
	slices.SortFunc(rows, func(x, y ClientRank) int {
		if x.ActivePolicies != y.ActivePolicies {
			if x.ActivePolicies > y.ActivePolicies {
				return -1
			}
			return 1
		}
		return compareUUID(x.ClientID, y.ClientID)
	})
	return rows, nil
}

// Summary runs every report concurrently. The first error cancels the rest.
func (a *Aggregator) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := a.PremiumByClient(gctx)
		if err != nil {
			return err
		}
		s.PremiumByClient = rows
		s.TotalPremium = TotalPremium(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := a.PoliciesByClass(gctx)
		s.PoliciesByClass = rows
		return err
	})
	g.Go(func() error {
		rows, err := a.ClaimsByStatus(gctx)
		s.ClaimsByStatus = rows
		return err
	})
	g.Go(func() error {
		rows, err := a.ClientRanking(gctx)
		s.ClientRanking = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("report.Summary: %w", err)
	}
	return &s, nil
}

// TotalPremium sums rows exactly.
func TotalPremium(rows []PremiumTotal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	return total.Round(2)
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
