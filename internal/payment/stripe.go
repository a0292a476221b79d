// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider talks to Stripe Checkout.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProvider returns a provider using secretKey for API calls and
// webhookSecret for event verification. backends may be nil to use
// Stripe's default endpoints.
func NewStripeProvider(secretKey, webhookSecret string, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

// CreateCheckoutSession opens a one-time card payment session.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, sp SessionParams) (*Session, error) {
	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if sp.PriceRef != "" {
		item.Price = stripe.String(sp.PriceRef)
	} else {
		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(sp.Currency),
			UnitAmount: stripe.Int64(sp.AmountCents),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name:        stripe.String(sp.ProductName),
				Description: stripe.String(sp.Description),
			},
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          []*stripe.CheckoutSessionLineItemParams{item},
		SuccessURL:         stripe.String(sp.SuccessURL),
		CancelURL:          stripe.String(sp.CancelURL),
	}
	params.Context = ctx
	if sp.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(sp.CustomerEmail)
	}
	for k, v := range sp.Metadata {
		params.AddMetadata(k, v)
	}
	switch {
	case sp.Coupon != "":
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(sp.Coupon)}}
	case sp.PromotionCode != "":
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{PromotionCode: stripe.String(sp.PromotionCode)}}
	}

	cs, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return sessionFrom(cs), nil
}

// LookupPromotionCode finds an active promotion code by its customer-facing code.
func (p *StripeProvider) LookupPromotionCode(ctx context.Context, code string) (string, bool, error) {
	params := &stripe.PromotionCodeListParams{
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := p.api.PromotionCodes.List(params)
	if it.Next() {
		return it.PromotionCode().ID, true, nil
	}
	if err := it.Err(); err != nil {
		return "", false, fmt.Errorf("list promotion codes: %w", err)
	}
	return "", false, nil
}

// LookupPrice fetches a price by id.
func (p *StripeProvider) LookupPrice(ctx context.Context, ref string) (int64, string, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	pr, err := p.api.Prices.Get(ref, params)
	if err != nil {
		return 0, "", fmt.Errorf("get price %s: %w", ref, err)
	}
	return pr.UnitAmount, string(pr.Currency), nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
func (p *StripeProvider) ConstructEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Type == EventCheckoutCompleted || ev.Type == EventCheckoutExpired {
		if ev.Data == nil {
			return out, nil
		}
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = sessionFrom(&cs)
	}
	return out, nil
}

func sessionFrom(cs *stripe.CheckoutSession) *Session {
	s := &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		AmountTotal:   cs.AmountTotal,
		CustomerEmail: cs.CustomerEmail,
		PaymentStatus: string(cs.PaymentStatus),
		Metadata:      cs.Metadata,
	}
	if s.CustomerEmail == "" && cs.CustomerDetails != nil {
		s.CustomerEmail = cs.CustomerDetails.Email
	}
	if s.Metadata == nil {
		s.Metadata = map[string]string{}
	}
	return s
}
