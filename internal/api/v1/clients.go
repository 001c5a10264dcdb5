package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/seguro/internal/orchestrator"
)

type RegisterClientInput struct {
	Body struct {
		TaxID     string `json:"tax_id" minLength:"11" maxLength:"14" example:"529.982.247-25" doc:"National identifier, formatted or digits only"`
		Name      string `json:"name" minLength:"1" maxLength:"255"`
		BirthDate string `json:"birth_date" example:"1990-03-07" doc:"YYYY-MM-DD or DD/MM/YYYY"`
		Phone     string `json:"phone,omitempty" maxLength:"32"`
		Email     string `json:"email,omitempty" maxLength:"255"`
		Address   string `json:"address,omitempty" maxLength:"500"`
	}
}

type ClientOutput struct {
	Body struct {
		Client ClientView `json:"client"`
		MutationStatus
	}
}

type GetClientInput struct {
	TaxID string `path:"tax_id" doc:"National identifier"`
}

type GetClientOutput struct {
	Body ClientView
}

type UpdateClientInput struct {
	TaxID string `path:"tax_id" doc:"National identifier"`
	Body  struct {
		Phone   *string `json:"phone,omitempty" maxLength:"32"`
		Email   *string `json:"email,omitempty" maxLength:"255"`
		Address *string `json:"address,omitempty" maxLength:"500"`
	}
}

func RegisterClientRoutes(api huma.API, svc Insurance) {
	huma.Register(api, huma.Operation{
		OperationID:   "register-client",
		Method:        http.MethodPost,
		Path:          "/clients",
		Summary:       "Register a client",
		Description:   "Admin only.",
		Tags:          []string{"Clients"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterClientInput) (*ClientOutput, error) {
		c, outcome, err := svc.RegisterClient(ctx, actor(ctx), orchestrator.RegisterClientInput{
			TaxID:     input.Body.TaxID,
			Name:      input.Body.Name,
			BirthDate: input.Body.BirthDate,
			Phone:     input.Body.Phone,
			Email:     input.Body.Email,
			Address:   input.Body.Address,
		})
		if err != nil {
			return nil, toHTTPError("register-client", err)
		}

		out := &ClientOutput{}
		out.Body.Client = clientView(c)
		out.Body.MutationStatus = mutationStatus(outcome)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-client",
		Method:      http.MethodGet,
		Path:        "/clients/{tax_id}",
		Summary:     "Get a client by national identifier",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *GetClientInput) (*GetClientOutput, error) {
		c, err := svc.GetClient(ctx, actor(ctx), input.TaxID)
		if err != nil {
			return nil, toHTTPError("get-client", err)
		}
		return &GetClientOutput{Body: clientView(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-client",
		Method:      http.MethodPatch,
		Path:        "/clients/{tax_id}",
		Summary:     "Update client contact data",
		Description: "Admin only. Omitted fields are left untouched; unchanged values are not audited.",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *UpdateClientInput) (*ClientOutput, error) {
		c, outcome, err := svc.UpdateClient(ctx, actor(ctx), orchestrator.UpdateClientInput{
			TaxID:   input.TaxID,
			Phone:   input.Body.Phone,
			Email:   input.Body.Email,
			Address: input.Body.Address,
		})
		if err != nil {
			return nil, toHTTPError("update-client", err)
		}

		out := &ClientOutput{}
		out.Body.Client = clientView(c)
		out.Body.MutationStatus = mutationStatus(outcome)
		return out, nil
	})
}
