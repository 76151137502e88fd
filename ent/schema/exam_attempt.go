package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExamAttempt is a finished exam. Attempts in progress live in memory only.
type ExamAttempt struct {
	ent.Schema
}

func (ExamAttempt) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			MaxLen(36).
			NotEmpty().
			Immutable(),
		field.Int("user_id"),
		field.Int("course_id"),
		field.Int("correct_count").
			Min(0),
		field.Bool("passed"),
		field.Bool("timed_out").
			Default(false),
		field.String("source").
			Default("template").
			Comment("Where the questions came from: ai, template"),
		field.Time("submitted_at").
			Default(time.Now).
			Immutable(),
	}
}

func (ExamAttempt) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("attempts").
			Field("user_id").
			Unique().
			Required(),
	}
}

func (ExamAttempt) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "course_id"),
	}
}
