package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// PaymentEvent remembers processed webhook deliveries so a replayed event
// credits nothing.
type PaymentEvent struct {
	ent.Schema
}

func (PaymentEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(128).
			NotEmpty().
			Immutable().
			Comment("Provider event id"),
		field.String("kind").
			Comment("Event type, e.g. BILLING_PAID"),
		field.Time("received_at").
			Default(time.Now).
			Immutable(),
	}
}
