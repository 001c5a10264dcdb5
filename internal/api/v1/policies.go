package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/seguro/internal/orchestrator"
)

type IssuePolicyInput struct {
	Body struct {
		TaxID     string       `json:"tax_id" minLength:"11" maxLength:"14" doc:"Policyholder national identifier"`
		Coverage  CoverageBody `json:"coverage"`
		IssueDate string       `json:"issue_date,omitempty" doc:"Defaults to today"`
	}
}

type PolicyOutput struct {
	Body struct {
		Policy PolicyView `json:"policy"`
		MutationStatus
	}
}

type PolicyNumberInput struct {
	Number string `path:"number" minLength:"1" maxLength:"16" doc:"Policy number"`
}

type GetPolicyOutput struct {
	Body PolicyView
}

func RegisterPolicyRoutes(api huma.API, svc Insurance) {
	huma.Register(api, huma.Operation{
		OperationID:   "issue-policy",
		Method:        http.MethodPost,
		Path:          "/policies",
		Summary:       "Issue a policy",
		Description:   "Prices the coverage and issues an active policy valid for one year.",
		Tags:          []string{"Policies"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *IssuePolicyInput) (*PolicyOutput, error) {
		coverage, err := input.Body.Coverage.toDomain()
		if err != nil {
			return nil, toHTTPError("issue-policy", err)
		}

		p, outcome, err := svc.IssuePolicy(ctx, actor(ctx), orchestrator.IssuePolicyInput{
			TaxID:     input.Body.TaxID,
			Coverage:  coverage,
			IssueDate: input.Body.IssueDate,
		})
		if err != nil {
			return nil, toHTTPError("issue-policy", err)
		}

		out := &PolicyOutput{}
		out.Body.Policy = policyView(p)
		out.Body.MutationStatus = mutationStatus(outcome)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-policy",
		Method:      http.MethodGet,
		Path:        "/policies/{number}",
		Summary:     "Get a policy by number",
		Tags:        []string{"Policies"},
	}, func(ctx context.Context, input *PolicyNumberInput) (*GetPolicyOutput, error) {
		p, err := svc.GetPolicy(ctx, actor(ctx), input.Number)
		if err != nil {
			return nil, toHTTPError("get-policy", err)
		}
		return &GetPolicyOutput{Body: policyView(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-policy",
		Method:      http.MethodPost,
		Path:        "/policies/{number}/cancel",
		Summary:     "Cancel an active policy",
		Tags:        []string{"Policies"},
	}, func(ctx context.Context, input *PolicyNumberInput) (*PolicyOutput, error) {
		p, outcome, err := svc.CancelPolicy(ctx, actor(ctx), input.Number)
		if err != nil {
			return nil, toHTTPError("cancel-policy", err)
		}

		out := &PolicyOutput{}
		out.Body.Policy = policyView(p)
		out.Body.MutationStatus = mutationStatus(outcome)
		return out, nil
	})
}
