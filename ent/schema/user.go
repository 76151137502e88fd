package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// User is a learner or an administrator.
type User struct {
	ent.Schema
}

func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			NotEmpty(),
		field.String("email").
			Unique().
			Comment("Login identifier, stored lowercased"),
		field.String("cpf").
			Default("").
			Comment("Brazilian taxpayer id printed on certificates"),
		field.String("password_hash").
			Sensitive(),
		field.Enum("role").
			Values("STUDENT", "ADMIN").
			Default("STUDENT"),
		field.Int("credits").
			Default(0).
			NonNegative().
			Comment("Certificates the user can still issue"),
		field.String("plan").
			Default("").
			Comment("Plan chosen at registration: basic, pro, premium"),
		field.Time("accepted_terms_at").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (User) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("certificates", Certificate.Type),
		edge.To("purchases", Purchase.Type),
		edge.To("attempts", ExamAttempt.Type),
	}
}
