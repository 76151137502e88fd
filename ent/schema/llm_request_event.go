package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// SequencedMixin stamps log rows with the store-wide event sequence and
// the time they were written.
type SequencedMixin struct {
	mixin.Schema
}

func (SequencedMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").Unique().Immutable(),
		field.Time("timestamp").Default(time.Now).Immutable(),
	}
}

func (SequencedMixin) Indexes() []ent.Index {
	return []ent.Index{index.Fields("sequence"), index.Fields("timestamp")}
}

// LLMRequestEvent is one call to an exam-generation model, kept for the
// llm list, view and stats commands.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{SequencedMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider"),
		field.String("model").Comment("Model id reported in the reply"),
		field.String("purpose"),
		field.Int("input_tokens").Default(0),
		field.Int("output_tokens").Default(0),
		field.Int64("latency_ms").Default(0),
		field.Bool("success"),
		field.String("error_message").Default(""),
		field.Text("request_body").Default("").Comment("System prompt, user prompt and schema"),
		field.Text("response_body").Default(""),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("provider"),
		index.Fields("purpose"),
		index.Fields("success"),
	}
}
