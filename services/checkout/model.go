package checkout

import (
	"errors"
	"fmt"
	"time"
)

const (
	currency = "cad"

	// Stripe refuses card charges below 50 cents CAD.
	minimumChargeInCents = 50
)

var (
	// ErrWrongStep means the requested transition is not valid from the
	// session's current step.
	ErrWrongStep = errors.New("transition not allowed from current step")

	// ErrPaymentNotCompleted means the gateway reports the authorization as
	// not (yet) succeeded. The session stays at the payment step so the
	// guest can retry with another card.
	ErrPaymentNotCompleted = errors.New("payment not completed")

	ErrCartEmpty         = errors.New("cart is empty")
	ErrTotalBelowMinimum = errors.New("order total below minimum charge")
)

type CheckoutStep int

const (
	CheckoutStepStart CheckoutStep = iota
	CheckoutStepSenderInfo
	CheckoutStepRecipientInfo
	CheckoutStepPayment
	CheckoutStepComplete
)

func (s CheckoutStep) String() string {
	switch s {
	case CheckoutStepStart:
		return "start"
	case CheckoutStepSenderInfo:
		return "sender_info"
	case CheckoutStepRecipientInfo:
		return "recipient_info"
	case CheckoutStepPayment:
		return "payment"
	case CheckoutStepComplete:
		return "complete"
	}
	return "unknown"
}

type SessionStatus int

const (
	SessionStatusActive SessionStatus = iota
	SessionStatusSucceeded
)

type SenderInfo struct {
	Name        string `form:"name"`
	Phone       string `form:"phone"`
	Email       string `form:"email"`
	Address     string `form:"address"`
	ContactPref string `form:"contactPref"`
	PostalCode  string `form:"postalCode"`
}

func (s SenderInfo) validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing sender name")
	}
	if s.Phone == "" {
		return fmt.Errorf("missing sender phone")
	}

	return nil
}

type RecipientInfo struct {
	FirstName    string `form:"firstName"`
	LastName     string `form:"lastName"`
	Address      string `form:"address"`
	PostalCode   string `form:"postalCode"`
	City         string `form:"city"`
	Country      string `form:"country"`
	Phone        string `form:"phone"`
	Instructions string `form:"instructions"`
}

func (r RecipientInfo) validate() error {
	missing := []string{}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"address", r.Address},
		{"postalCode", r.PostalCode},
		{"city", r.City},
		{"country", r.Country},
		{"phone", r.Phone},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing recipient fields: %v", missing)
	}

	return nil
}

// CheckoutSession walks a guest through the checkout steps. FrozenTotal is
// the amount the payment authorization was created for; it never drifts from
// the intent's amount.
type CheckoutSession struct {
	UID             string
	GuestUID        string
	Step            CheckoutStep
	Sender          SenderInfo
	Recipient       RecipientInfo
	PaymentIntentID string
	ClientSecret    string
	FrozenTotal     int64
	Status          SessionStatus
	CreatedAt       time.Time
	LastModified    *time.Time
}
