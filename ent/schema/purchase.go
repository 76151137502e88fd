package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Purchase records credits bought through the payment provider.
type Purchase struct {
	ent.Schema
}

func (Purchase) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(36).
			NotEmpty().
			Immutable(),
		field.Int("user_id"),
		field.Int("amount_cents").
			NonNegative(),
		field.Int("credits").
			Positive(),
		field.Enum("status").
			Values("PENDING", "COMPLETED").
			Default("COMPLETED"),
		field.String("billing_id").
			Default("").
			Comment("Provider billing id"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (Purchase) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("purchases").
			Field("user_id").
			Unique().
			Required(),
	}
}

func (Purchase) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
	}
}
