package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CourseModule is one line of a course syllabus, listed on the
// certificate back page.
type CourseModule struct {
	ent.Schema
}

func (CourseModule) Fields() []ent.Field {
	return []ent.Field{
		field.Int("course_id"),
		field.Int("position").
			Default(0),
		field.String("title").
			NotEmpty(),
	}
}

func (CourseModule) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("course", Course.Type).
			Ref("modules").
			Field("course_id").
			Unique().
			Required().
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (CourseModule) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("course_id", "position"),
	}
}
