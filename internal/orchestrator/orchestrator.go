// Package orchestrator is the service layer over the entity store. Each
// mutating call validates its input, commits the entity change together with
// its audit row, then mirrors selected audit events to a secondary store and
// reports one of three outcomes.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/metrics"
)

// Outcome is the combined result of the primary commit and the secondary
// audit write.
type Outcome string

const (
	// OutcomeSuccess: the entity change committed and, when mirrored, the
	// secondary audit write succeeded.
	OutcomeSuccess Outcome = "success"
	// OutcomePartialSuccess: the entity change committed but the secondary
	// audit write failed. Retrying the call would repeat the mutation.
	OutcomePartialSuccess Outcome = "partial_success"
	// OutcomeFailure: nothing was committed. Always paired with an error.
	OutcomeFailure Outcome = "failure"
)

// AuditDegraded reports whether the secondary audit trail is incomplete.
func (o Outcome) AuditDegraded() bool { return o == OutcomePartialSuccess }

// DefaultMirrorOps are the operations copied to the secondary store when no
// list is configured.
var DefaultMirrorOps = []domain.Operation{domain.OpCreatePolicy, domain.OpCancelPolicy}

// DefaultAuditTimeout bounds the secondary write.
const DefaultAuditTimeout = 5 * time.Second

// maxNumberAttempts bounds policy number regeneration on collision.
const maxNumberAttempts = 3

// PremiumCalculator prices a coverage.
type PremiumCalculator interface {
	Calculate(c domain.Coverage) (decimal.Decimal, error)
}

// Alerter is told when a committed mutation could not be mirrored.
type Alerter interface {
	AuditDegraded(ctx context.Context, ev *domain.AuditEvent, cause error) error
}

// requiredRole lists operations restricted to administrators. Every other
// operation is open to any authenticated identity.
var requiredRole = map[domain.Operation]domain.Role{
	domain.OpCreateClient: domain.RoleAdmin,
	domain.OpUpdateClient: domain.RoleAdmin,
}

type Orchestrator struct {
	store        domain.EntityStore
	premiums     PremiumCalculator
	recorder     domain.AuditRecorder
	alerter      Alerter
	metrics      *metrics.Metrics
	mirror       map[domain.Operation]bool
	auditTimeout time.Duration
	now          func() time.Time
}

type Option func(*Orchestrator)

// WithRecorder enables the secondary audit write. Without it every committed
// operation reports OutcomeSuccess.
func WithRecorder(r domain.AuditRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

func WithAlerter(a Alerter) Option {
	return func(o *Orchestrator) { o.alerter = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithMirrorOps replaces the set of operations copied to the recorder.
func WithMirrorOps(ops []domain.Operation) Option {
	return func(o *Orchestrator) {
		o.mirror = make(map[domain.Operation]bool, len(ops))
		for _, op := range ops {
			o.mirror[op] = true
		}
	}
}

func WithAuditTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.auditTimeout = d
		}
	}
}

// WithClock sets the source of issue and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(store domain.EntityStore, premiums PremiumCalculator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		premiums:     premiums,
		auditTimeout: DefaultAuditTimeout,
		now:          time.Now,
	}
	WithMirrorOps(DefaultMirrorOps)(o)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// authorize checks the identity before any work is done.
func authorize(actor domain.Identity, op domain.Operation) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if role, ok := requiredRole[op]; ok && actor.Role != role {
		return fmt.Errorf("%s requires role %s: %w", op, role, domain.ErrForbidden)
	}
	return nil
}

// fail records a failed operation. Business rejections log at info level,
// infrastructure failures at error level with the full cause.
func (o *Orchestrator) fail(op domain.Operation, actor domain.Identity, start time.Time, err error) (Outcome, error) {
	o.metrics.ObserveOperation(string(op), string(OutcomeFailure), start)

	var ev *zerolog.Event
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
		ev = log.Info()
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		ev = log.Warn()
	default:
		ev = log.Error()
	}
	ev.Str("op", string(op)).
		Str("actor", actor.Username).
		Str("outcome", string(OutcomeFailure)).
		Err(err).
		Msg("orchestrator: operation rejected")

	return OutcomeFailure, err
}

// complete runs after a successful commit. It mirrors ev when configured and
// never turns the committed result into a failure.
func (o *Orchestrator) complete(ctx context.Context, op domain.Operation, actor domain.Identity, start time.Time, ev *domain.AuditEvent) Outcome {
	outcome := OutcomeSuccess
	if ev != nil && o.recorder != nil && o.mirror[ev.Operation] {
		if err := o.record(ctx, ev); err != nil {
			outcome = OutcomePartialSuccess
			o.degraded(ctx, ev, err)
		}
	}

	o.metrics.ObserveOperation(string(op), string(outcome), start)

	l := log.Info().
		Str("op", string(op)).
		Str("actor", actor.Username).
		Str("outcome", string(outcome))
	if ev != nil {
		l = l.Str("entity", string(ev.EntityType)).Str("entity_id", ev.EntityID.String())
	}
	l.Msg("orchestrator: operation committed")

	return outcome
}

// record performs the secondary write strictly after commit. It is detached
// from caller cancellation and bounded by the audit timeout. A panicking
// recorder is treated as a failed write.
func (o *Orchestrator) record(ctx context.Context, ev *domain.AuditEvent) (err error) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.auditTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("orchestrator.record: recorder panic: %v", r)
		}
	}()

	return o.recorder.Record(actx, ev)
}

func (o *Orchestrator) degraded(ctx context.Context, ev *domain.AuditEvent, cause error) {
	o.metrics.IncrementAuditDegraded(string(ev.Operation))

	log.Warn().
		Str("op", string(ev.Operation)).
		Str("audit_event_id", ev.ID.String()).
		Str("entity", string(ev.EntityType)).
		Str("entity_id", ev.EntityID.String()).
		Err(cause).
		Msg("orchestrator: audit degraded, secondary write failed after commit")

	if o.alerter == nil {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.auditTimeout)
	defer cancel()
	if err := o.alerter.AuditDegraded(actx, ev, cause); err != nil {
		log.Error().Err(err).Str("audit_event_id", ev.ID.String()).Msg("orchestrator: degraded-audit alert failed")
	}
}
