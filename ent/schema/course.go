package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Course is a certification subject.
type Course struct {
	ent.Schema
}

func (Course) Fields() []ent.Field {
	return []ent.Field{
		field.String("title").
			NotEmpty().
			Unique(),
		field.Text("description").
			Default(""),
		field.Int("price_cents").
			Default(0).
			NonNegative(),
		field.Int("duration_hours").
			Default(0).
			NonNegative().
			Comment("Nominal workload printed on the certificate"),
		field.Bool("published").
			Default(true),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (Course) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("modules", CourseModule.Type),
		edge.To("certificates", Certificate.Type),
	}
}
