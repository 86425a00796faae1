package checkout

import (
	"context"
	"fmt"

	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/mylog"
	"github.com/inyourvase/flowershop/services/checkoutevents"
)

func (s *service) startCheckout(c context.Context, guestUID string) (CheckoutSession, error) {
	s.logger.Log(c, guestUID, mylog.SeverityInfo, "Start checkout for guest %s", guestUID)

	_, itemCount, err := s.cartTotaler.CartTotal(c, guestUID)
	if err != nil {
		return CheckoutSession{}, err
	}
	if itemCount == 0 {
		return CheckoutSession{}, myerrors.NewInvalidInputError(fmt.Errorf("%w: guest %s", ErrCartEmpty, guestUID))
	}

	session := CheckoutSession{
		UID:       s.uuider.Create(),
		GuestUID:  guestUID,
		Step:      CheckoutStepSenderInfo,
		Status:    SessionStatusActive,
		CreatedAt: s.nower.Now(),
	}

	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		return s.putOrFail(c, session)
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return session, nil
}

func (s *service) getSession(c context.Context, sessionUID string) (CheckoutSession, error) {
	session, found, err := s.sessionStore.Get(c, sessionUID)
	if err != nil {
		return CheckoutSession{}, myerrors.NewInternalError(err)
	}
	if !found {
		return CheckoutSession{}, myerrors.NewNotFoundError(fmt.Errorf("checkout session with uid %s not found", sessionUID))
	}

	return session, nil
}

func (s *service) submitSender(c context.Context, sessionUID string, sender SenderInfo) (CheckoutSession, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Sender info submitted on session %s", sessionUID)

	err := sender.validate()
	if err != nil {
		return CheckoutSession{}, myerrors.NewInvalidInputError(err)
	}

	now := s.nower.Now()

	var session CheckoutSession
	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		session, err = s.getSession(c, sessionUID)
		if err != nil {
			return err
		}
		if session.Step != CheckoutStepSenderInfo {
			return myerrors.NewConflictError(fmt.Errorf("%w: sender info at step %s", ErrWrongStep, session.Step))
		}

		session.Sender = sender
		session.Step = CheckoutStepRecipientInfo
		session.LastModified = &now

		return s.putOrFail(c, session)
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return session, nil
}

// submitRecipient moves the session into the payment step: the cart total is
// recomputed server-side, frozen, and bound to exactly one payment intent.
// Re-entry with an unchanged total reuses the existing intent; a changed
// total cancels the old intent (best-effort) and creates a fresh one.
func (s *service) submitRecipient(c context.Context, sessionUID string, recipient RecipientInfo) (CheckoutSession, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Recipient info submitted on session %s", sessionUID)

	err := recipient.validate()
	if err != nil {
		return CheckoutSession{}, myerrors.NewInvalidInputError(err)
	}

	now := s.nower.Now()

	var session CheckoutSession
	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		session, err = s.getSession(c, sessionUID)
		if err != nil {
			return err
		}
		if session.Step != CheckoutStepRecipientInfo && session.Step != CheckoutStepPayment {
			return myerrors.NewConflictError(fmt.Errorf("%w: recipient info at step %s", ErrWrongStep, session.Step))
		}

		totalInCents, _, err := s.cartTotaler.CartTotal(c, session.GuestUID)
		if err != nil {
			return err
		}
		if totalInCents < minimumChargeInCents {
			return myerrors.NewInvalidInputError(fmt.Errorf("%w: %d cents", ErrTotalBelowMinimum, totalInCents))
		}

		session.Recipient = recipient

		if session.PaymentIntentID == "" || session.FrozenTotal != totalInCents {
			err = s.createIntent(c, &session, totalInCents)
			if err != nil {
				return err
			}
		}

		session.Step = CheckoutStepPayment
		session.LastModified = &now

		return s.putOrFail(c, session)
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return session, nil
}

func (s *service) createIntent(c context.Context, session *CheckoutSession, totalInCents int64) error {
	if session.PaymentIntentID != "" {
		// The old intent no longer matches the cart. Its cancellation is
		// best-effort: an orphaned unconfirmed intent lapses on its own.
		err := s.payer.CancelPaymentIntent(c, session.PaymentIntentID)
		if err != nil {
			s.logger.Log(c, session.UID, mylog.SeverityWarn, "Error cancelling stale payment intent %s: %s", session.PaymentIntentID, err)
		}
	}

	authorization, err := s.payer.CreatePaymentIntent(c, totalInCents, currency, fmt.Sprintf("Flower order %s", session.UID))
	if err != nil {
		return err
	}

	session.PaymentIntentID = authorization.ID
	session.ClientSecret = authorization.ClientSecret
	session.FrozenTotal = totalInCents

	return s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
		SessionUID:    session.UID,
		GuestUID:      session.GuestUID,
		AmountInCents: totalInCents,
		Currency:      currency,
	})
}

func (s *service) stepBack(c context.Context, sessionUID string) (CheckoutSession, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Step back on session %s", sessionUID)

	now := s.nower.Now()

	var session CheckoutSession
	var err error
	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		session, err = s.getSession(c, sessionUID)
		if err != nil {
			return err
		}

		// Going back never discards entered data or the payment intent.
		switch session.Step {
		case CheckoutStepPayment:
			session.Step = CheckoutStepRecipientInfo
		case CheckoutStepRecipientInfo:
			session.Step = CheckoutStepSenderInfo
		default:
			return myerrors.NewConflictError(fmt.Errorf("%w: back at step %s", ErrWrongStep, session.Step))
		}
		session.LastModified = &now

		return s.putOrFail(c, session)
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return session, nil
}

// confirmPayment asks the gateway for the authoritative intent status. Only
// "succeeded" completes the session; anything else keeps it at the payment
// step so the guest can retry.
func (s *service) confirmPayment(c context.Context, sessionUID string) (CheckoutSession, error) {
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Confirm payment on session %s", sessionUID)

	now := s.nower.Now()

	var session CheckoutSession
	var err error
	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		session, err = s.getSession(c, sessionUID)
		if err != nil {
			return err
		}
		if session.Step == CheckoutStepComplete {
			return nil
		}
		if session.Step != CheckoutStepPayment || session.PaymentIntentID == "" {
			return myerrors.NewConflictError(fmt.Errorf("%w: confirm at step %s", ErrWrongStep, session.Step))
		}

		authorization, err := s.payer.GetPaymentIntent(c, session.PaymentIntentID)
		if err != nil {
			return err
		}

		if authorization.Status != "succeeded" {
			return myerrors.NewPaymentRequiredError(fmt.Errorf("%w: gateway reports %s", ErrPaymentNotCompleted, authorization.Status))
		}

		session.Step = CheckoutStepComplete
		session.Status = SessionStatusSucceeded
		session.LastModified = &now

		err = s.putOrFail(c, session)
		if err != nil {
			return err
		}

		return s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			SessionUID: session.UID,
			GuestUID:   session.GuestUID,
			Status:     authorization.Status,
			Success:    true,
		})
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return session, nil
}

func (s *service) putOrFail(c context.Context, session CheckoutSession) error {
	err := s.sessionStore.Put(c, session.UID, session)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}
