package events

import "time"

// Kind names an event type. Kinds are dot-namespaced ("task_state.completed",
// "response.clip_recorded") so receivers can filter on a prefix.
type Kind string

// Event is one observation from a running assessment: its kind plus the time
// it was observed. Concrete event types carry the payload.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base is the envelope every event embeds. Construct it with NewBase so the
// observation time is stamped exactly once, at emission.
type Base struct {
	kind       Kind
	observedAt time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, observedAt: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

// Timestamp is when the event was emitted, not when the underlying device
// activity happened.
func (b Base) Timestamp() time.Time {
	return b.observedAt
}
