package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"twiller-backend/internal/domain"
)

type CheckoutSession struct {
	ID  string
	URL string
}

type SessionStatus struct {
	ID   string
	Paid bool
}

// Provider abstracts the payment collaborator so usecases can be tested
// without hitting Stripe.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, plan domain.SubscriptionPlan, email, clientURL string) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

type StripeProvider struct{}

func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, plan domain.SubscriptionPlan, email, clientURL string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("inr"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Twiller %s Subscription", plan.Name)),
					},
					UnitAmount: stripe.Int64(int64(plan.Price) * 100), // paise
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(fmt.Sprintf("%s/subscriptions?success=true&session_id={CHECKOUT_SESSION_ID}&planName=%s", clientURL, plan.Name)),
		CancelURL:     stripe.String(fmt.Sprintf("%s/subscriptions?canceled=true", clientURL)),
		CustomerEmail: stripe.String(email),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, err
	}
	return &SessionStatus{
		ID:   s.ID,
		Paid: s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}
