package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/certifica/internal/store"
	"github.com/abhisek/certifica/internal/store/storetest"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s := storetest.Open(t)
	svc := NewService(s.Users(), Config{
		Secret:      []byte("test-secret"),
		TTL:         time.Hour,
		AdminEmails: []string{"Admin@Example.com"},
		BcryptCost:  bcrypt.MinCost,
	}, nil, nil)
	return svc, s
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:          "Maria Silva",
		Email:         "Maria@Example.com",
		CPF:           "123.456.789-00",
		Password:      "secret1",
		Plan:          "pro",
		AcceptedTerms: true,
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)

	u, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", u.Email)
	assert.Equal(t, store.RoleStudent, u.Role)
	assert.Equal(t, 3, u.Credits)
	assert.Equal(t, "pro", u.Plan)
	require.NotNil(t, u.AcceptedTermsAt)
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func TestRegister_DefaultPlanAndAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	in := validInput()
	in.Email = "admin@example.com"
	in.Plan = ""

	u, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, store.RoleAdmin, u.Role)
	assert.Equal(t, 1, u.Credits)
}

func TestRegister_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"terms", func(in *RegisterInput) { in.AcceptedTerms = false }, ErrTermsNotAccepted},
		{"missing name", func(in *RegisterInput) { in.Name = " " }, ErrMissingFields},
		{"missing cpf", func(in *RegisterInput) { in.CPF = "  " }, ErrMissingFields},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, ErrInvalidEmail},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, ErrWeakPassword},
		{"unknown plan", func(in *RegisterInput) { in.Plan = "gold" }, ErrUnknownPlan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Register(ctx, validInput())
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	token, got, err := svc.Login(ctx, "MARIA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, store.RoleStudent, claims.Role)
	assert.Equal(t, "maria@example.com", claims.Email)

	_, _, err = svc.Login(ctx, "maria@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParse_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	u := store.User{ID: 1, Role: store.RoleStudent, Email: "a@b.com"}

	token, err := svc.Issue(u)
	require.NoError(t, err)

	other := NewService(nil, Config{Secret: []byte("other")}, nil, nil)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired token")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = other.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	svc, _ := newTestService(t)
	student, err := svc.Issue(store.User{ID: 5, Role: store.RoleStudent})
	require.NoError(t, err)
	admin, err := svc.Issue(store.User{ID: 6, Role: store.RoleAdmin})
	require.NoError(t, err)

	var seen *Claims
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	learner := svc.Middleware(ok)
	adminOnly := svc.Middleware(RequireAdmin(ok))

	do := func(h http.Handler, token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(learner, ""))
	assert.Equal(t, http.StatusUnauthorized, do(learner, "garbage"))
	assert.Equal(t, http.StatusNoContent, do(learner, student))
	require.NotNil(t, seen)
	assert.Equal(t, 5, seen.UserID)

	req := httptest.NewRequest(http.MethodGet, "/?token="+student, nil)
	rec := httptest.NewRecorder()
	learner.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, "query token")

	assert.Equal(t, http.StatusForbidden, do(adminOnly, student))
	assert.Equal(t, http.StatusNoContent, do(adminOnly, admin))
}
