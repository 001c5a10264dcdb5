package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/auth"
	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/orchestrator"
	"github.com/gosuda/seguro/internal/report"
	"github.com/gosuda/seguro/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the caller identity into context for *Ctx calls
// ---------------------------------------------------------------------------

func adminCtx() context.Context {
	return middleware.WithIdentity(context.Background(), domain.Identity{Username: "root", Role: domain.RoleAdmin})
}

func standardCtx() context.Context {
	return middleware.WithIdentity(context.Background(), domain.Identity{Username: "ana", Role: domain.RoleStandard})
}

// ---------------------------------------------------------------------------
// Mock Insurance
// ---------------------------------------------------------------------------

type mockInsurance struct {
	registerClientFunc    func(ctx context.Context, actor domain.Identity, in orchestrator.RegisterClientInput) (*domain.Client, orchestrator.Outcome, error)
	updateClientFunc      func(ctx context.Context, actor domain.Identity, in orchestrator.UpdateClientInput) (*domain.Client, orchestrator.Outcome, error)
	getClientFunc         func(ctx context.Context, actor domain.Identity, taxID string) (*domain.Client, error)
	issuePolicyFunc       func(ctx context.Context, actor domain.Identity, in orchestrator.IssuePolicyInput) (*domain.Policy, orchestrator.Outcome, error)
	cancelPolicyFunc      func(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, orchestrator.Outcome, error)
	getPolicyFunc         func(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, error)
	fileClaimFunc         func(ctx context.Context, actor domain.Identity, in orchestrator.FileClaimInput) (*domain.Claim, orchestrator.Outcome, error)
	updateClaimStatusFunc func(ctx context.Context, actor domain.Identity, id uuid.UUID, status domain.ClaimStatus) (*domain.Claim, orchestrator.Outcome, error)
	listClaimsFunc        func(ctx context.Context, actor domain.Identity, number string) ([]*domain.Claim, error)
	getClaimFunc          func(ctx context.Context, actor domain.Identity, id uuid.UUID) (*domain.Claim, error)
	auditTrailFunc        func(ctx context.Context, actor domain.Identity, entity domain.EntityType, id uuid.UUID) ([]*domain.AuditEvent, error)
}

func (m *mockInsurance) RegisterClient(ctx context.Context, actor domain.Identity, in orchestrator.RegisterClientInput) (*domain.Client, orchestrator.Outcome, error) {
	return m.registerClientFunc(ctx, actor, in)
}

func (m *mockInsurance) UpdateClient(ctx context.Context, actor domain.Identity, in orchestrator.UpdateClientInput) (*domain.Client, orchestrator.Outcome, error) {
	return m.updateClientFunc(ctx, actor, in)
}

func (m *mockInsurance) GetClient(ctx context.Context, actor domain.Identity, taxID string) (*domain.Client, error) {
	return m.getClientFunc(ctx, actor, taxID)
}

func (m *mockInsurance) IssuePolicy(ctx context.Context, actor domain.Identity, in orchestrator.IssuePolicyInput) (*domain.Policy, orchestrator.Outcome, error) {
	return m.issuePolicyFunc(ctx, actor, in)
}

func (m *mockInsurance) CancelPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, orchestrator.Outcome, error) {
	return m.cancelPolicyFunc(ctx, actor, number)
}

func (m *mockInsurance) GetPolicy(ctx context.Context, actor domain.Identity, number string) (*domain.Policy, error) {
	return m.getPolicyFunc(ctx, actor, number)
}

func (m *mockInsurance) FileClaim(ctx context.Context, actor domain.Identity, in orchestrator.FileClaimInput) (*domain.Claim, orchestrator.Outcome, error) {
	return m.fileClaimFunc(ctx, actor, in)
}

func (m *mockInsurance) UpdateClaimStatus(ctx context.Context, actor domain.Identity, id uuid.UUID, status domain.ClaimStatus) (*domain.Claim, orchestrator.Outcome, error) {
	return m.updateClaimStatusFunc(ctx, actor, id, status)
}

func (m *mockInsurance) ListClaims(ctx context.Context, actor domain.Identity, number string) ([]*domain.Claim, error) {
	return m.listClaimsFunc(ctx, actor, number)
}

func (m *mockInsurance) GetClaim(ctx context.Context, actor domain.Identity, id uuid.UUID) (*domain.Claim, error) {
	return m.getClaimFunc(ctx, actor, id)
}

func (m *mockInsurance) AuditTrail(ctx context.Context, actor domain.Identity, entity domain.EntityType, id uuid.UUID) ([]*domain.AuditEvent, error) {
	return m.auditTrailFunc(ctx, actor, entity, id)
}

// ---------------------------------------------------------------------------
// Mock Reports
// ---------------------------------------------------------------------------

type mockReports struct {
	premiumByClientFunc func(ctx context.Context) ([]report.PremiumTotal, error)
	policiesByClassFunc func(ctx context.Context) ([]report.ClassCount, error)
	claimsByStatusFunc  func(ctx context.Context) ([]report.StatusCount, error)
	clientRankingFunc   func(ctx context.Context) ([]report.ClientRank, error)
	summaryFunc         func(ctx context.Context) (*report.Summary, error)
}

func (m *mockReports) PremiumByClient(ctx context.Context) ([]report.PremiumTotal, error) {
	return m.premiumByClientFunc(ctx)
}

func (m *mockReports) PoliciesByClass(ctx context.Context) ([]report.ClassCount, error) {
	return m.policiesByClassFunc(ctx)
}

func (m *mockReports) ClaimsByStatus(ctx context.Context) ([]report.StatusCount, error) {
	return m.claimsByStatusFunc(ctx)
}

func (m *mockReports) ClientRanking(ctx context.Context) ([]report.ClientRank, error) {
	return m.clientRankingFunc(ctx)
}

func (m *mockReports) Summary(ctx context.Context) (*report.Summary, error) {
	return m.summaryFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	loginFunc      func(ctx context.Context, username, password string) (*auth.Tokens, error)
	refreshFunc    func(ctx context.Context, refreshToken string) (*auth.Tokens, error)
	createUserFunc func(ctx context.Context, actor domain.Identity, username, password string, role domain.Role) (*domain.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*auth.Tokens, error) {
	return m.loginFunc(ctx, username, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*auth.Tokens, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func (m *mockAuthService) CreateUser(ctx context.Context, actor domain.Identity, username, password string, role domain.Role) (*domain.User, error) {
	return m.createUserFunc(ctx, actor, username, password, role)
}
