// Package payments talks to the card processor. Controllers depend on the
// Gateway interface; StripeGateway is the production implementation.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// CartPayment tags intents created before an order exists.
const CartPayment = "cart-payment"

const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
)

var (
	ErrNotFound         = errors.New("payment not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Intent is the processor-neutral view of a payment intent. Amount is in
// major units (rupees, dollars).
type Intent struct {
	ID           string
	ClientSecret string
	Amount       decimal.Decimal
	Currency     string
	Status       string
	Created      time.Time
	Metadata     map[string]string
}

func (i *Intent) Succeeded() bool {
	return i.Status == string(stripe.PaymentIntentStatusSucceeded)
}

// OrderID is the order the intent was created for, or "" for cart payments.
func (i *Intent) OrderID() string {
	id := i.Metadata["orderId"]
	if id == CartPayment {
		return ""
	}
	return id
}

type CreateParams struct {
	Amount   decimal.Decimal
	Currency string
	UserID   uint
	OrderID  string
}

// Event is a verified webhook delivery.
type Event struct {
	ID     string
	Type   string
	Intent *Intent
}

type Gateway interface {
	CreateIntent(ctx context.Context, p CreateParams) (*Intent, error)
	Retrieve(ctx context.Context, id string) (*Intent, error)
	// FindByOrder returns the most recent intent tagged with orderID.
	FindByOrder(ctx context.Context, orderID string) (*Intent, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway builds a gateway against the live Stripe API. Pass
// backends to point it elsewhere (tests); nil uses Stripe's defaults.
func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

// minorUnits converts 12.345 rupees into 1235 paise.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       decimal.New(pi.Amount, -2),
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Created:      time.Unix(pi.Created, 0).UTC(),
		Metadata:     pi.Metadata,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, p CreateParams) (*Intent, error) {
	orderID := p.OrderID
	if orderID == "" {
		orderID = CartPayment
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(p.Amount)),
		Currency: stripe.String(p.Currency),
	}
	params.Context = ctx
	params.AddMetadata("userId", fmt.Sprint(p.UserID))
	params.AddMetadata("orderId", orderID)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) Retrieve(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) FindByOrder(ctx context.Context, orderID string) (*Intent, error) {
	params := &stripe.PaymentIntentSearchParams{}
	params.Query = fmt.Sprintf("metadata['orderId']:'%s'", orderID)
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := g.api.PaymentIntents.Search(params)
	if !it.Next() {
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("search payment intents: %w", err)
		}
		return nil, ErrNotFound
	}
	return fromStripe(it.PaymentIntent()), nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if out.Type == EventSucceeded || out.Type == EventFailed {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.Intent = fromStripe(&pi)
	}
	return out, nil
}
