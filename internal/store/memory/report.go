package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/report"
)

var _ report.Source = (*Store)(nil)

func (s *Store) PremiumByClient(context.Context) ([]report.PremiumTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, p := range s.policies {
		if p.Status == domain.PolicyStatusActive {
			totals[p.ClientID] = totals[p.ClientID].Add(p.Premium)
		}
	}

	out := make([]report.PremiumTotal, 0, len(totals))
	for id, total := range totals {
		c := s.clients[id]
		out = append(out, report.PremiumTotal{ClientID: id, TaxID: c.TaxID, Name: c.Name, Total: total})
	}
	return out, nil
}

func (s *Store) PoliciesByClass(context.Context) ([]report.ClassCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.InsuranceClass]int64)
	for _, p := range s.policies {
		if p.Status == domain.PolicyStatusActive {
			counts[p.Coverage.Class]++
		}
	}

	out := make([]report.ClassCount, 0, len(counts))
	for class, n := range counts {
		out = append(out, report.ClassCount{Class: class, Count: n})
	}
	return out, nil
}

func (s *Store) ClaimsByStatus(context.Context) ([]report.StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.ClaimStatus]int64)
	for _, c := range s.claims {
		counts[c.Status]++
	}

	out := make([]report.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, report.StatusCount{Status: status, Count: n})
	}
	return out, nil
}

func (s *Store) ActivePoliciesByClient(context.Context) ([]report.ClientRank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[uuid.UUID]int64)
	for _, p := range s.policies {
		if p.Status == domain.PolicyStatusActive {
			counts[p.ClientID]++
		}
	}

	out := make([]report.ClientRank, 0, len(counts))
	for id, n := range counts {
		c := s.clients[id]
		out = append(out, report.ClientRank{ClientID: id, TaxID: c.TaxID, Name: c.Name, ActivePolicies: n})
	}
	return out, nil
}
