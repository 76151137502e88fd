package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventBillingPaid is the only webhook event that moves credits.
const EventBillingPaid = "BILLING_PAID"

// SignatureHeader carries the hex HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Webhook-Signature"

var (
	ErrBadSignature = errors.New("invalid webhook signature")
	ErrMissingID    = errors.New("webhook event has no id")
)

// Event is a normalized payment-provider webhook.
type Event struct {
	ID          string
	Kind        string
	BillingID   string
	AmountCents int
	Email       string
}

// Paid reports whether the event confirms a payment.
func (e Event) Paid() bool { return e.Kind == EventBillingPaid }

type customer struct {
	Email    string `json:"email"`
	Metadata struct {
		Email string `json:"email"`
	} `json:"metadata"`
}

func (c *customer) email() string {
	if c == nil {
		return ""
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Metadata.Email
}

type rawEvent struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`
	Event   string `json:"event"`
	Type    string `json:"type"`
	Data    struct {
		Billing *struct {
			ID       string    `json:"id"`
			Amount   int       `json:"amount"`
			Customer *customer `json:"customer"`
		} `json:"billing"`
		BillingID string    `json:"billingId"`
		Amount    int       `json:"amount"`
		Customer  *customer `json:"customer"`
	} `json:"data"`
}

// ParseEvent decodes a webhook body. Both the nested data.billing shape
// and the flat data.billingId shape are accepted.
func ParseEvent(body []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return Event{}, fmt.Errorf("decode webhook: %w", err)
	}

	e := Event{
		ID:   firstNonEmpty(raw.ID, raw.EventID),
		Kind: firstNonEmpty(raw.Event, raw.Type),
	}
	if b := raw.Data.Billing; b != nil {
		e.BillingID = b.ID
		e.AmountCents = b.Amount
		e.Email = b.Customer.email()
	}
	if e.BillingID == "" {
		e.BillingID = raw.Data.BillingID
	}
	if e.AmountCents == 0 {
		e.AmountCents = raw.Data.Amount
	}
	if e.Email == "" {
		e.Email = raw.Data.Customer.email()
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))

	if e.ID == "" {
		return Event{}, ErrMissingID
	}
	return e, nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against body. An empty secret disables
// verification.
func VerifySignature(secret string, body []byte, signature string) error {
	if secret == "" {
		return nil
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
