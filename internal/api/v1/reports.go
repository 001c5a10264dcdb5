package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/report"
	"github.com/gosuda/seguro/internal/taxid"
)

type PremiumTotalView struct {
	ClientID uuid.UUID `json:"client_id"`
	TaxID    string    `json:"tax_id"`
	Name     string    `json:"name"`
	Total    string    `json:"total" example:"1500.00"`
}

type ClientRankView struct {
	ClientID       uuid.UUID `json:"client_id"`
	TaxID          string    `json:"tax_id"`
	Name           string    `json:"name"`
	ActivePolicies int64     `json:"active_policies"`
}

type SummaryView struct {
	PremiumByClient []PremiumTotalView   `json:"premium_by_client"`
	TotalPremium    string               `json:"total_premium"`
	PoliciesByClass []report.ClassCount  `json:"policies_by_class"`
	ClaimsByStatus  []report.StatusCount `json:"claims_by_status"`
	ClientRanking   []ClientRankView     `json:"client_ranking"`
}

type ReportInput struct{}

type PremiumByClientOutput struct {
	Body []PremiumTotalView
}

type PoliciesByClassOutput struct {
	Body []report.ClassCount
}

type ClaimsByStatusOutput struct {
	Body []report.StatusCount
}

type ClientRankingOutput struct {
	Body []ClientRankView
}

type SummaryOutput struct {
	Body SummaryView
}

func premiumViews(rows []report.PremiumTotal) []PremiumTotalView {
	out := make([]PremiumTotalView, 0, len(rows))
	for _, r := range rows {
		out = append(out, PremiumTotalView{
			ClientID: r.ClientID,
			TaxID:    taxid.Format(r.TaxID),
			Name:     r.Name,
			Total:    r.Total.StringFixed(2),
		})
	}
	return out
}

func rankViews(rows []report.ClientRank) []ClientRankView {
	out := make([]ClientRankView, 0, len(rows))
	for _, r := range rows {
		out = append(out, ClientRankView{
			ClientID:       r.ClientID,
			TaxID:          taxid.Format(r.TaxID),
			Name:           r.Name,
			ActivePolicies: r.ActivePolicies,
		})
	}
	return out
}

// nonNil keeps empty reports rendering as [] instead of null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

// requireIdentity rejects report reads without a valid caller.
func requireIdentity(ctx context.Context) error {
	if err := actor(ctx).Validate(); err != nil {
		return toHTTPError("report", err)
	}
	return nil
}

func RegisterReportRoutes(api huma.API, reports Reports) {
	huma.Register(api, huma.Operation{
		OperationID: "report-premium-by-client",
		Method:      http.MethodGet,
		Path:        "/reports/premium-by-client",
		Summary:     "Total premium of active policies per client",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, _ *ReportInput) (*PremiumByClientOutput, error) {
		if err := requireIdentity(ctx); err != nil {
			return nil, err
		}
		rows, err := reports.PremiumByClient(ctx)
		if err != nil {
			return nil, toHTTPError("report-premium-by-client", err)
		}
		return &PremiumByClientOutput{Body: premiumViews(rows)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "report-policies-by-class",
		Method:      http.MethodGet,
		Path:        "/reports/policies-by-class",
		Summary:     "Active policy count per insurance class",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, _ *ReportInput) (*PoliciesByClassOutput, error) {
		if err := requireIdentity(ctx); err != nil {
			return nil, err
		}
		rows, err := reports.PoliciesByClass(ctx)
		if err != nil {
			return nil, toHTTPError("report-policies-by-class", err)
		}
		return &PoliciesByClassOutput{Body: nonNil(rows)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "report-claims-by-status",
		Method:      http.MethodGet,
		Path:        "/reports/claims-by-status",
		Summary:     "Claim count per status",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, _ *ReportInput) (*ClaimsByStatusOutput, error) {
		if err := requireIdentity(ctx); err != nil {
			return nil, err
		}
		rows, err := reports.ClaimsByStatus(ctx)
		if err != nil {
			return nil, toHTTPError("report-claims-by-status", err)
		}
		return &ClaimsByStatusOutput{Body: nonNil(rows)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "report-client-ranking",
		Method:      http.MethodGet,
		Path:        "/reports/client-ranking",
		Summary:     "Clients ranked by number of active policies",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, _ *ReportInput) (*ClientRankingOutput, error) {
		if err := requireIdentity(ctx); err != nil {
			return nil, err
		}
		rows, err := reports.ClientRanking(ctx)
		if err != nil {
			return nil, toHTTPError("report-client-ranking", err)
		}
		return &ClientRankingOutput{Body: rankViews(rows)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "report-summary",
		Method:      http.MethodGet,
		Path:        "/reports/summary",
		Summary:     "All reports in one response",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, _ *ReportInput) (*SummaryOutput, error) {
		if err := requireIdentity(ctx); err != nil {
			return nil, err
		}
		s, err := reports.Summary(ctx)
		if err != nil {
			return nil, toHTTPError("report-summary", err)
		}
		return &SummaryOutput{Body: SummaryView{
			PremiumByClient: premiumViews(s.PremiumByClient),
			TotalPremium:    s.TotalPremium.StringFixed(2),
			PoliciesByClass: nonNil(s.PoliciesByClass),
			ClaimsByStatus:  nonNil(s.ClaimsByStatus),
			ClientRanking:   rankViews(s.ClientRanking),
		}}, nil
	})
}
