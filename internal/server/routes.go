package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/gosuda/seguro/internal/api/v1"
)

func registerAuthRoutes(api huma.API, deps Deps) {
	v1.RegisterAuthRoutes(api, deps.Auth)
}

func registerAPIRoutes(api huma.API, deps Deps) {
	v1.RegisterClientRoutes(api, deps.Insurance)
	v1.RegisterPolicyRoutes(api, deps.Insurance)
	v1.RegisterClaimRoutes(api, deps.Insurance)
	v1.RegisterReportRoutes(api, deps.Reports)
}

func registerAdminRoutes(api huma.API, deps Deps) {
	v1.RegisterUserRoutes(api, deps.Auth)
	v1.RegisterAuditRoutes(api, deps.Insurance)
}
