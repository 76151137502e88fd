package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Certificate is issued when a learner passes an exam and spends a credit.
type Certificate struct {
	ent.Schema
}

func (Certificate) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(36).
			NotEmpty().
			Immutable().
			Comment("UUID"),
		field.String("code").
			MaxLen(16).
			Unique().
			Immutable().
			Comment("Public verification code"),
		field.Int("user_id"),
		field.Int("course_id"),
		field.String("attempt_id").
			MaxLen(36).
			Immutable().
			Comment("Exam attempt that earned the certificate"),
		field.Int("score").
			Default(0),
		field.Time("issued_at").
			Default(time.Now).
			Immutable(),
	}
}

func (Certificate) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("certificates").
			Field("user_id").
			Unique().
			Required(),
		edge.From("course", Course.Type).
			Ref("certificates").
			Field("course_id").
			Unique().
			Required(),
	}
}

func (Certificate) Indexes() []ent.Index {
	return []ent.Index{
		// One certificate per attempt; a repeated request returns it.
		index.Fields("user_id", "course_id", "attempt_id").
			Unique(),
		index.Fields("issued_at"),
	}
}
