package cart

import (
	"context"
	"fmt"

	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/myhttp"
	"github.com/inyourvase/flowershop/lib/mylog"
	"github.com/inyourvase/flowershop/services/checkoutevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/cart/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	return nil
}

// OnCheckoutCompleted clears the guest's cart after a successful payment.
func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	s.logger.Log(c, event.GuestUID, mylog.SeverityInfo, "Webhook: checkout %s for guest %s completed (%s) -> %v", event.SessionUID, event.GuestUID, event.Status, event.Success)

	if !event.Success {
		return nil
	}

	now := s.nower.Now()

	return s.cartStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent
		cart, found, err := s.cartStore.Get(c, event.GuestUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found || len(cart.Items) == 0 {
			return nil
		}

		cart.Items = []CartItem{}
		cart.DeliveryMode = nil
		cart.LastModified = &now

		return s.putOrFail(c, cart)
	})
}
