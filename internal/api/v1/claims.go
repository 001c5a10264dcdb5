package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/orchestrator"
)

type FileClaimInput struct {
	Number string `path:"number" minLength:"1" maxLength:"16" doc:"Policy number"`
	Body   struct {
		OccurredOn  string `json:"occurred_on" example:"2026-06-01" doc:"YYYY-MM-DD or DD/MM/YYYY"`
		Description string `json:"description" minLength:"1" maxLength:"2000"`
	}
}

type ClaimOutput struct {
	Body struct {
		Claim ClaimView `json:"claim"`
		MutationStatus
	}
}

type ListClaimsOutput struct {
	Body []ClaimView
}

type GetClaimInput struct {
	ID uuid.UUID `path:"id" doc:"Claim ID"`
}

type GetClaimOutput struct {
	Body ClaimView
}

type UpdateClaimStatusInput struct {
	ID   uuid.UUID `path:"id" doc:"Claim ID"`
	Body struct {
		Status domain.ClaimStatus `json:"status" enum:"open,under_review,closed,rejected"`
	}
}

func RegisterClaimRoutes(api huma.API, svc Insurance) {
	huma.Register(api, huma.Operation{
		OperationID:   "file-claim",
		Method:        http.MethodPost,
		Path:          "/policies/{number}/claims",
		Summary:       "File a claim against an active policy",
		Tags:          []string{"Claims"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *FileClaimInput) (*ClaimOutput, error) {
		c, outcome, err := svc.FileClaim(ctx, actor(ctx), orchestrator.FileClaimInput{
			PolicyNumber: input.Number,
			OccurredOn:   input.Body.OccurredOn,
			Description:  input.Body.Description,
		})
		if err != nil {
			return nil, toHTTPError("file-claim", err)
		}

		out := &ClaimOutput{}
		out.Body.Claim = claimView(c)
		out.Body.MutationStatus = mutationStatus(outcome)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-claims",
		Method:      http.MethodGet,
		Path:        "/policies/{number}/claims",
		Summary:     "List the claims of a policy, newest first",
		Tags:        []string{"Claims"},
	}, func(ctx context.Context, input *PolicyNumberInput) (*ListClaimsOutput, error) {
		claims, err := svc.ListClaims(ctx, actor(ctx), input.Number)
		if err != nil {
			return nil, toHTTPError("list-claims", err)
		}
		return &ListClaimsOutput{Body: claimViews(claims)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-claim",
		Method:      http.MethodGet,
		Path:        "/claims/{id}",
		Summary:     "Get a claim by ID",
		Tags:        []string{"Claims"},
	}, func(ctx context.Context, input *GetClaimInput) (*GetClaimOutput, error) {
		c, err := svc.GetClaim(ctx, actor(ctx), input.ID)
		if err != nil {
			return nil, toHTTPError("get-claim", err)
		}
		return &GetClaimOutput{Body: claimView(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-claim-status",
		Method:      http.MethodPatch,
		Path:        "/claims/{id}/status",
		Summary:     "Change a claim's status",
		Tags:        []string{"Claims"},
	}, func(ctx context.Context, input *UpdateClaimStatusInput) (*ClaimOutput, error) {
		c, outcome, err := svc.UpdateClaimStatus(ctx, actor(ctx), input.ID, input.Body.Status)
		if err != nil {
			return nil, toHTTPError("update-claim-status", err)
		}

		out := &ClaimOutput{}
		out.Body.Claim = claimView(c)
		out.Body.MutationStatus = mutationStatus(outcome)
		return out, nil
	})
}
