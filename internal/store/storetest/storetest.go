// Package storetest opens throwaway stores for tests in other packages.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/certifica/internal/store"
)

// Open returns an in-memory SQLite store private to t, closed on cleanup.
func Open(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(context.Background(), store.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// User creates a student with the given balance.
func User(t testing.TB, s *store.Store, email string, credits int) store.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), store.NewUser{
		Name:         "Maria Silva",
		Email:        email,
		CPF:          "123.456.789-00",
		PasswordHash: "x",
		Role:         store.RoleStudent,
		Credits:      credits,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// Course creates a course with two modules.
func Course(t testing.TB, s *store.Store, title string) store.Course {
	t.Helper()
	c, err := s.Courses().Create(context.Background(), store.NewCourse{
		Title:         title,
		Description:   "Certificação profissional em " + title + ".",
		PriceCents:    9990,
		DurationHours: 60,
		Modules:       []string{"Fundamentos", "Prática"},
	})
	if err != nil {
		t.Fatalf("create course %s: %v", title, err)
	}
	return c
}
