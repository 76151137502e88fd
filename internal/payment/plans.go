// Package payment knows the credit plans and turns payment-provider
// webhooks into credited purchases.
package payment

import (
	"fmt"
	"strings"
)

// Plan is a credit package sold on the site.
type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Credits    int    `json:"credits"`
	PriceCents int    `json:"priceCents"`
	BillingID  string `json:"billingId"`
}

// Price formats the plan price in reais, e.g. "R$ 49,90".
func (p Plan) Price() string {
	return fmt.Sprintf("R$ %d,%02d", p.PriceCents/100, p.PriceCents%100)
}

// DefaultPlan is used when a registration names no plan.
const DefaultPlan = "basic"

var plans = []Plan{
	{ID: "basic", Name: "Básico", Credits: 1, PriceCents: 4990, BillingID: "bill_KDrq203TKKzn0TZSm3AQGYQb"},
	{ID: "pro", Name: "Profissional", Credits: 3, PriceCents: 9990, BillingID: "bill_ThpKLHjrY41WQFafuyPBM0JP"},
	{ID: "premium", Name: "Premium", Credits: 5, PriceCents: 14990, BillingID: "bill_43UTPSXAKfesAMN6USx4jp3E"},
}

// Plans returns the plans in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// LookupPlan finds a plan by id, case-insensitively. An empty id yields
// DefaultPlan.
func LookupPlan(id string) (Plan, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		id = DefaultPlan
	}
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// CreditsFor maps a paid billing to credits: by billing id first, then by
// amount in cents. Zero means the payment matches no plan.
func CreditsFor(billingID string, amountCents int) int {
	if billingID != "" {
		for _, p := range plans {
			if p.BillingID == billingID {
				return p.Credits
			}
		}
	}
	for _, p := range plans {
		if p.PriceCents == amountCents {
			return p.Credits
		}
	}
	return 0
}
