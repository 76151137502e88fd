package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/certifica/internal/events"
	"github.com/abhisek/certifica/internal/store"
	"github.com/abhisek/certifica/internal/store/storetest"
)

func TestLookupPlan(t *testing.T) {
	p, ok := LookupPlan("PRO")
	require.True(t, ok)
	assert.Equal(t, 3, p.Credits)
	assert.Equal(t, "R$ 99,90", p.Price())

	p, ok = LookupPlan("")
	require.True(t, ok)
	assert.Equal(t, "basic", p.ID)
	assert.Equal(t, 1, p.Credits)

	_, ok = LookupPlan("gold")
	assert.False(t, ok)
}

func TestCreditsFor(t *testing.T) {
	tests := []struct {
		name    string
		billing string
		amount  int
		want    int
	}{
		{"basic billing", "bill_KDrq203TKKzn0TZSm3AQGYQb", 0, 1},
		{"pro billing", "bill_ThpKLHjrY41WQFafuyPBM0JP", 0, 3},
		{"premium billing", "bill_43UTPSXAKfesAMN6USx4jp3E", 0, 5},
		{"billing wins over amount", "bill_43UTPSXAKfesAMN6USx4jp3E", 4990, 5},
		{"unknown billing falls back to amount", "bill_other", 9990, 3},
		{"amount only", "", 14990, 5},
		{"nothing matches", "bill_other", 1234, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CreditsFor(tt.billing, tt.amount))
		})
	}
}

func TestParseEvent(t *testing.T) {
	t.Run("nested billing", func(t *testing.T) {
		e, err := ParseEvent([]byte(`{
			"id": "log_1",
			"event": "BILLING_PAID",
			"data": {"billing": {"id": "bill_ThpKLHjrY41WQFafuyPBM0JP", "amount": 9990,
				"customer": {"metadata": {"email": "Maria@Example.com"}}}}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "log_1", e.ID)
		assert.True(t, e.Paid())
		assert.Equal(t, "bill_ThpKLHjrY41WQFafuyPBM0JP", e.BillingID)
		assert.Equal(t, 9990, e.AmountCents)
		assert.Equal(t, "maria@example.com", e.Email)
	})

	t.Run("flat shape", func(t *testing.T) {
		e, err := ParseEvent([]byte(`{
			"eventId": "evt_9",
			"type": "BILLING_PAID",
			"data": {"billingId": "bill_x", "amount": 4990, "customer": {"email": "joao@example.com"}}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "evt_9", e.ID)
		assert.Equal(t, "bill_x", e.BillingID)
		assert.Equal(t, 4990, e.AmountCents)
		assert.Equal(t, "joao@example.com", e.Email)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"type": "BILLING_PAID", "data": {}}`))
		assert.ErrorIs(t, err, ErrMissingID)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"log_1"}`)
	sig := Sign("s3cret", body)

	assert.NoError(t, VerifySignature("s3cret", body, sig))
	assert.NoError(t, VerifySignature("s3cret", body, "sha256="+sig))
	assert.NoError(t, VerifySignature("", body, ""), "empty secret disables checks")
	assert.ErrorIs(t, VerifySignature("s3cret", body, ""), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature("s3cret", body, "zz"), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature("other", body, sig), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature("s3cret", []byte(`{"id":"log_2"}`), sig), ErrBadSignature)
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func paidEvent(id, email string) Event {
	return Event{ID: id, Kind: EventBillingPaid, BillingID: "bill_ThpKLHjrY41WQFafuyPBM0JP", AmountCents: 9990, Email: email}
}

func TestService_Handle(t *testing.T) {
	s := storetest.Open(t)
	u := storetest.User(t, s, "maria@example.com", 1)
	pub := &recordingPublisher{}
	svc := NewService(s.Purchases(), pub, nil)
	ctx := context.Background()

	res, err := svc.Handle(ctx, paidEvent("log_1", "maria@example.com"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
	assert.Equal(t, 3, res.Credits)
	assert.Equal(t, 4, res.Balance)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.CreditsAdded, pub.events[0].Type)

	again, err := svc.Handle(ctx, paidEvent("log_1", "maria@example.com"))
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Len(t, pub.events, 1, "replay publishes nothing")

	got, err := s.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Credits)

	purchases, err := s.Purchases().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, store.PurchaseCompleted, purchases[0].Status)
}

func TestService_Ignored(t *testing.T) {
	s := storetest.Open(t)
	storetest.User(t, s, "maria@example.com", 0)
	svc := NewService(s.Purchases(), nil, nil)
	ctx := context.Background()

	res, err := svc.Handle(ctx, Event{ID: "e1", Kind: "BILLING_CREATED"})
	require.NoError(t, err)
	assert.True(t, res.Ignored)

	res, err = svc.Handle(ctx, Event{ID: "e2", Kind: EventBillingPaid, AmountCents: 1, Email: "maria@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, "no matching plan", res.Reason)

	res, err = svc.Handle(ctx, paidEvent("e3", "ghost@example.com"))
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, "unknown user", res.Reason)
}

type failingPurchases struct{ store.PurchaseRepo }

func (failingPurchases) ApplyPayment(context.Context, store.PaymentParams) (store.PaymentOutcome, error) {
	return store.PaymentOutcome{}, errors.New("db down")
}

func TestService_StoreError(t *testing.T) {
	svc := NewService(failingPurchases{}, nil, nil)
	_, err := svc.Handle(context.Background(), paidEvent("e1", "a@b.com"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
