// Package notify delivers workflow notifications. Every transition that
// changes a progress item's completion or verification state emits one Event;
// emitters fan the event out to in-app storage and optional chat platforms.
package notify

import "context"

// Kind identifies the transition that produced an event.
type Kind string

const (
	KindAssignmentCreated Kind = "assignment_created"
	KindItemCompleted     Kind = "item_completed"
	KindItemUncompleted   Kind = "item_uncompleted"
	KindItemApproved      Kind = "item_approved"
	KindItemRejected      Kind = "item_rejected"
	KindOverdueDigest     Kind = "overdue_digest"
)

// Event is a single workflow notification addressed to one user.
type Event struct {
	TargetUserID string
	Kind         Kind
	AssignmentID string
	ItemID       string
	ActorID      string
	NewState     string
	Note         string
}

// Emitter delivers events to one destination.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Fanout delivers each event to every emitter. Delivery is best-effort past
// the first emitter: later failures do not mask earlier successes, and the
// first error encountered is returned.
type Fanout []Emitter

// Emit sends ev to all emitters in order.
func (f Fanout) Emit(ctx context.Context, ev Event) error {
	var first error
	for _, e := range f {
		if err := e.Emit(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard is an Emitter that drops all events, for callers that opt out of
// notifications.
type Discard struct{}

// Emit drops the event.
func (Discard) Emit(ctx context.Context, ev Event) error { return nil }
