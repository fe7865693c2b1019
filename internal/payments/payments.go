package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// EventPaymentSucceeded is the only event type that triggers a state
// transition; everything else received on the webhook is acknowledged and
// ignored.
const EventPaymentSucceeded = "payment_intent.succeeded"

// Intent is the local view of a gateway payment intent. The workflow treats
// it as opaque and correlates carts and orders to it by ID only.
type Intent struct {
	ID           string
	ClientSecret string
}

type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error)
}

// StripeGateway talks to the real Stripe API.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// MinorUnits converts a decimal price to the gateway's minor unit (cents).
// The gateway bills in minor units; passing a decimal amount through
// unconverted charges 100x too little.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type Event struct {
	Type     string
	IntentID string
}

// VerifyEvent checks the webhook payload against its signature header and
// returns the parsed event. Callers must not process the payload when an
// error is returned.
func VerifyEvent(payload []byte, sigHeader, endpointSecret string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, endpointSecret)
	if err != nil {
		return Event{}, fmt.Errorf("verify webhook event: %w", err)
	}

	out := Event{Type: string(ev.Type)}
	if out.Type == EventPaymentSucceeded {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return Event{}, fmt.Errorf("decode payment intent payload: %w", err)
		}
		out.IntentID = pi.ID
	}
	return out, nil
}
