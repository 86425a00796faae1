package checkout

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/inyourvase/flowershop/lib/myerrors"
)

// PaymentAuthorization is the slice of a gateway payment intent this service
// cares about.
type PaymentAuthorization struct {
	ID           string
	ClientSecret string
	Status       string
}

//go:generate mockgen -source=payer.go -package checkout -destination payer_mock.go Payer
type Payer interface {
	UseAPIKey(key string)
	CreatePaymentIntent(c context.Context, amountInCents int64, currency string, description string) (PaymentAuthorization, error)
	CancelPaymentIntent(c context.Context, paymentIntentID string) error
	GetPaymentIntent(c context.Context, paymentIntentID string) (PaymentAuthorization, error)
}

type stripePayer struct{}

func NewPayer() Payer {
	return &stripePayer{}
}

func (p *stripePayer) UseAPIKey(apiKey string) {
	stripe.Key = apiKey
}

func (p *stripePayer) CreatePaymentIntent(c context.Context, amountInCents int64, currency string, description string) (PaymentAuthorization, error) {
	intent, err := paymentintent.New(&stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: c,
		},
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String(description),
	})
	if err != nil {
		return PaymentAuthorization{}, myerrors.NewUnavailableError(fmt.Errorf("error creating payment intent: %s", err))
	}

	return toAuthorization(intent), nil
}

func (p *stripePayer) CancelPaymentIntent(c context.Context, paymentIntentID string) error {
	_, err := paymentintent.Cancel(paymentIntentID, &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{
			Context: c,
		},
	})
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error cancelling payment intent %s: %s", paymentIntentID, err))
	}

	return nil
}

func (p *stripePayer) GetPaymentIntent(c context.Context, paymentIntentID string) (PaymentAuthorization, error) {
	intent, err := paymentintent.Get(paymentIntentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: c,
		},
	})
	if err != nil {
		return PaymentAuthorization{}, myerrors.NewUnavailableError(fmt.Errorf("error fetching payment intent %s: %s", paymentIntentID, err))
	}

	return toAuthorization(intent), nil
}

func toAuthorization(intent *stripe.PaymentIntent) PaymentAuthorization {
	return PaymentAuthorization{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}
}
