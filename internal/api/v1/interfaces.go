package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/auth"
	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/orchestrator"
	"github.com/gosuda/seguro/internal/report"
)

// Insurance abstracts the orchestrated operations for handler testing.
// *orchestrator.Orchestrator satisfies this interface.
type Insurance interface {
	RegisterClient(ctx context.Context, actor domain.Identity, in orchestrator.RegisterClientInput) (*domain.Client, orchestrator.Outcome, error)
	UpdateClient(ctx context.Context, actor domain.Identity, in orchestrator.UpdateClientInput) (*domain.Client, orchestrator.Outcome, error)
	GetClient(ctx context.Context, actor domain.Identity, taxID string) (*domain.Client, error)

	IssuePolicy(ctx context.Context, actor domain.Identity, in orchestrator.IssuePolicyInput) (*domain.Policy, orchestrator.Outcome, error)
	CancelPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, orchestrator.Outcome, error)
	GetPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, error)

	FileClaim(ctx context.Context, actor domain.Identity, in orchestrator.FileClaimInput) (*domain.Claim, orchestrator.Outcome, error)
	UpdateClaimStatus(ctx context.Context, actor domain.Identity, id uuid.UUID, status domain.ClaimStatus) (*domain.Claim, orchestrator.Outcome, error)
	ListClaims(ctx context.Context, actor domain.Identity, number string) ([]*domain.Claim, error)
	GetClaim(ctx context.Context, actor domain.Identity, id uuid.UUID) (*domain.Claim, error)

	AuditTrail(ctx context.Context, actor domain.Identity, entity domain.EntityType, id uuid.UUID) ([]*domain.AuditEvent, error)
}

// Reports abstracts the report aggregator for handler testing.
// *report.Aggregator satisfies this interface.
type Reports interface {
	PremiumByClient(ctx context.Context) ([]report.PremiumTotal, error)
	PoliciesByClass(ctx context.Context) ([]report.ClassCount, error)
	ClaimsByStatus(ctx context.Context) ([]report.StatusCount, error)
	ClientRanking(ctx context.Context) ([]report.ClientRank, error)
	Summary(ctx context.Context) (*report.Summary, error)
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*auth.Tokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*auth.Tokens, error)
	CreateUser(ctx context.Context, actor domain.Identity, username, password string, role domain.Role) (*domain.User, error)
}
