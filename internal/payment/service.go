package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/abhisek/certifica/internal/events"
	"github.com/abhisek/certifica/internal/store"
)

// Result is the outcome of handling one webhook event.
type Result struct {
	Ignored   bool   `json:"ignored,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	UserID    int    `json:"userId,omitempty"`
	Credits   int    `json:"credits,omitempty"`
	Balance   int    `json:"balance,omitempty"`
}

// Service credits users for paid billings.
type Service struct {
	purchases store.PurchaseRepo
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService returns a Service. publisher may be nil.
func NewService(purchases store.PurchaseRepo, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{purchases: purchases, publisher: publisher, logger: logger}
}

// Handle applies a parsed webhook event. Events that are not payments, do
// not match a plan, or name an unknown customer are ignored without error
// so the provider does not retry them.
func (s *Service) Handle(ctx context.Context, e Event) (Result, error) {
	log := s.logger.With("event", e.ID, "kind", e.Kind)

	if !e.Paid() {
		log.Debug("ignoring webhook event")
		return Result{Ignored: true, Reason: "event kind"}, nil
	}
	credits := CreditsFor(e.BillingID, e.AmountCents)
	if credits == 0 || e.Email == "" {
		log.Warn("paid billing matches no plan or customer",
			"billing", e.BillingID, "amount", e.AmountCents, "email", e.Email)
		return Result{Ignored: true, Reason: "no matching plan"}, nil
	}

	out, err := s.purchases.ApplyPayment(ctx, store.PaymentParams{
		EventID:     e.ID,
		Kind:        e.Kind,
		Email:       e.Email,
		BillingID:   e.BillingID,
		AmountCents: e.AmountCents,
		Credits:     credits,
		PurchaseID:  uuid.NewString(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("apply payment %s: %w", e.ID, err)
	}

	switch {
	case out.UnknownUser:
		log.Warn("paid billing for unknown user, skipping", "email", e.Email)
		return Result{Ignored: true, Reason: "unknown user"}, nil
	case out.Duplicate:
		log.Info("replayed webhook event ignored")
		return Result{Duplicate: true, UserID: out.UserID}, nil
	}

	log.Info("credits added", "user", out.UserID, "credits", credits, "balance", out.Balance)
	events.Emit(ctx, s.publisher, s.logger, events.New(events.CreditsAdded, map[string]any{
		"userId":    out.UserID,
		"credits":   credits,
		"balance":   out.Balance,
		"billingId": e.BillingID,
	}))
	return Result{UserID: out.UserID, Credits: credits, Balance: out.Balance}, nil
}
