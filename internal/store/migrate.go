package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/entc/gen"
	"entgo.io/ent/entc/load"

	entschema "github.com/abhisek/certifica/ent/schema"
)

// entities are the ent schemas backing the store, in table creation order.
var entities = []ent.Interface{
	entschema.User{},
	entschema.Course{},
	entschema.CourseModule{},
	entschema.Certificate{},
	entschema.Purchase{},
	entschema.PaymentEvent{},
	entschema.ExamAttempt{},
	entschema.LLMRequestEvent{},
}

// Tables resolves the SQL tables of the ent schemas: columns, unique
// constraints, indexes and foreign keys. The graph is built once.
var Tables = sync.OnceValues(func() ([]*schema.Table, error) {
	return tablesOf(entities...)
})

// tablesOf runs the schemas through the same graph entc builds at
// generation time and returns its tables.
func tablesOf(entities ...ent.Interface) ([]*schema.Table, error) {
	schemas := make([]*load.Schema, 0, len(entities))
	for _, e := range entities {
		buf, err := load.MarshalSchema(e)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		s, err := load.UnmarshalSchema(buf)
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema: %w", err)
		}
		schemas = append(schemas, s)
	}
	storage, err := gen.NewStorage("sql")
	if err != nil {
		return nil, err
	}
	graph, err := gen.NewGraph(&gen.Config{
		Schema:  "github.com/abhisek/certifica/ent/schema",
		Package: "github.com/abhisek/certifica/ent",
		Storage: storage,
	}, schemas...)
	if err != nil {
		return nil, fmt.Errorf("load ent graph: %w", err)
	}
	return graph.Tables()
}

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
