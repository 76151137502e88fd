// Package auth registers and logs in users and issues the bearer tokens
// the HTTP API accepts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/certifica/internal/events"
	"github.com/abhisek/certifica/internal/payment"
	"github.com/abhisek/certifica/internal/store"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTermsNotAccepted   = errors.New("terms and policies must be accepted")
	ErrMissingFields      = errors.New("name, email, CPF and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must have at least %d characters", MinPasswordLength)
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Config holds the token and password settings.
type Config struct {
	Secret []byte
	TTL    time.Duration

	// AdminEmails registers these addresses with the ADMIN role.
	AdminEmails []string

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service implements registration, login and token handling.
type Service struct {
	users     store.UserRepo
	cfg       Config
	admins    map[string]bool
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService returns a Service. publisher may be nil.
func NewService(users store.UserRepo, cfg Config, publisher events.Publisher, logger *slog.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &Service{users: users, cfg: cfg, admins: admins, publisher: publisher, logger: logger, now: time.Now}
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CPF           string `json:"cpf"`
	Password      string `json:"password"`
	Plan          string `json:"plan"`
	AcceptedTerms bool   `json:"acceptedTerms"`
}

// Register creates a student account holding the credits of the chosen
// plan. A taken email yields store.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	if !in.AcceptedTerms {
		return store.User{}, ErrTermsNotAccepted
	}
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	cpf := strings.TrimSpace(in.CPF)
	if name == "" || email == "" || cpf == "" || in.Password == "" {
		return store.User{}, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return store.User{}, ErrInvalidEmail
	}
	if len(in.Password) < MinPasswordLength {
		return store.User{}, ErrWeakPassword
	}
	plan, ok := payment.LookupPlan(in.Plan)
	if !ok {
		return store.User{}, fmt.Errorf("%w: %q", ErrUnknownPlan, in.Plan)
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return store.User{}, err
	}

	role := store.RoleStudent
	if s.admins[email] {
		role = store.RoleAdmin
	}
	accepted := s.now().UTC()

	u, err := s.users.Create(ctx, store.NewUser{
		Name:            name,
		Email:           email,
		CPF:             cpf,
		PasswordHash:    hash,
		Role:            role,
		Credits:         plan.Credits,
		Plan:            plan.ID,
		AcceptedTermsAt: &accepted,
	})
	if err != nil {
		return store.User{}, err
	}

	s.logger.Info("user registered", "user", u.ID, "plan", plan.ID, "role", role)
	events.Emit(ctx, s.publisher, s.logger, events.New(events.UserRegistered, map[string]any{
		"userId":  u.ID,
		"email":   u.Email,
		"plan":    plan.ID,
		"credits": plan.Credits,
	}))
	return u, nil
}

// Login checks the password and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, store.User, error) {
	u, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", store.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", store.User{}, ErrInvalidCredentials
	}
	token, err := s.Issue(u)
	if err != nil {
		return "", store.User{}, err
	}
	return token, u, nil
}

// HashPassword returns the bcrypt hash of password.
func (s *Service) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
