package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/domain"
)

type LoginInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" maxLength:"64" doc:"Username"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type TokenOutput struct {
	Body struct {
		AccessToken  string      `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string      `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
		Username     string      `json:"username"`
		Role         domain.Role `json:"role"`
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type CreateUserInput struct {
	Body struct {
		Username string      `json:"username" minLength:"1" maxLength:"64"`
		Password string      `json:"password" minLength:"8" maxLength:"128"` //nolint:gosec // G117: credential DTO
		Role     domain.Role `json:"role" enum:"admin,standard"`
	}
}

type UserView struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

type CreateUserOutput struct {
	Body UserView
}

// RegisterAuthRoutes mounts the unauthenticated login and refresh endpoints.
func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with username and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*TokenOutput, error) {
		tokens, err := authSvc.Login(ctx, input.Body.Username, input.Body.Password)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return nil, huma.Error401Unauthorized("invalid username or password")
			}
			return nil, toHTTPError("login", err)
		}

		out := &TokenOutput{}
		out.Body.AccessToken = tokens.AccessToken
		out.Body.RefreshToken = tokens.RefreshToken
		out.Body.Username = tokens.Identity.Username
		out.Body.Role = tokens.Identity.Role
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Exchange a refresh token for a new token pair",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*TokenOutput, error) {
		tokens, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return nil, huma.Error401Unauthorized("invalid or expired refresh token")
			}
			return nil, toHTTPError("refresh-token", err)
		}

		out := &TokenOutput{}
		out.Body.AccessToken = tokens.AccessToken
		out.Body.RefreshToken = tokens.RefreshToken
		out.Body.Username = tokens.Identity.Username
		out.Body.Role = tokens.Identity.Role
		return out, nil
	})
}

// RegisterUserRoutes mounts user administration. Admin only.
func RegisterUserRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Create a user account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
		u, err := authSvc.CreateUser(ctx, actor(ctx), input.Body.Username, input.Body.Password, input.Body.Role)
		if err != nil {
			return nil, toHTTPError("create-user", err)
		}

		return &CreateUserOutput{Body: UserView{
			ID:        u.ID,
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		}}, nil
	})
}
