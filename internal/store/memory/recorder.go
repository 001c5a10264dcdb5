package memory

import (
	"context"
	"sync"

	"github.com/gosuda/seguro/internal/domain"
)

// Recorder keeps secondary audit events in process. It is the audit sink for
// the memory:// URI and for local development.
type Recorder struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
}

var _ domain.AuditRecorder = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(ctx context.Context, ev *domain.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *ev
	r.events = append(r.events, &cp)
	return nil
}

// Events returns a snapshot of everything recorded so far.
func (r *Recorder) Events() []*domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}
