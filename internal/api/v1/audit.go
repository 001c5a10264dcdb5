package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/seguro/internal/domain"
)

type AuditTrailInput struct {
	Entity domain.EntityType `path:"entity" enum:"client,policy,claim"`
	ID     uuid.UUID         `path:"id"`
}

type AuditEventView struct {
	ID        uuid.UUID        `json:"id"`
	Actor     string           `json:"actor"`
	ActorRole domain.Role      `json:"actor_role"`
	Operation domain.Operation `json:"operation"`
	Payload   map[string]any   `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}

type AuditTrailOutput struct {
	Body []AuditEventView
}

// RegisterAuditRoutes exposes the primary audit rows of an entity. Admin only.
func RegisterAuditRoutes(api huma.API, svc Insurance) {
	huma.Register(api, huma.Operation{
		OperationID: "audit-trail",
		Method:      http.MethodGet,
		Path:        "/audit/{entity}/{id}",
		Summary:     "Audit trail of an entity, oldest first",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *AuditTrailInput) (*AuditTrailOutput, error) {
		events, err := svc.AuditTrail(ctx, actor(ctx), input.Entity, input.ID)
		if err != nil {
			return nil, toHTTPError("audit-trail", err)
		}

		out := make([]AuditEventView, 0, len(events))
		for _, ev := range events {
			out = append(out, AuditEventView{
				ID:        ev.ID,
				Actor:     ev.Actor,
				ActorRole: ev.ActorRole,
				Operation: ev.Operation,
				Payload:   ev.Payload,
				CreatedAt: ev.CreatedAt,
			})
		}
		return &AuditTrailOutput{Body: out}, nil
	})
}
