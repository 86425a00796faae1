package cart

import (
	"context"
	"fmt"

	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/mylog"
)

func (s *service) getCart(c context.Context, guestUID string) (Cart, error) {
	s.logger.Log(c, guestUID, mylog.SeverityInfo, "Fetch cart of guest %s", guestUID)

	cart, found, err := s.cartStore.Get(c, guestUID)
	if err != nil {
		return Cart{}, myerrors.NewInternalError(err)
	}
	if !found {
		// An absent cart is just an empty one
		return Cart{
			GuestUID:  guestUID,
			Items:     []CartItem{},
			CreatedAt: s.nower.Now(),
		}, nil
	}

	return cart, nil
}

// replaceItems overwrites the whole cart. An empty list clears the cart and
// resets its delivery mode.
func (s *service) replaceItems(c context.Context, guestUID string, items []CartItem) (Cart, error) {
	s.logger.Log(c, guestUID, mylog.SeverityInfo, "Replace cart of guest %s with %d items", guestUID, len(items))

	normalized := make([]CartItem, 0, len(items))
	for i, item := range items {
		err := item.validate()
		if err != nil {
			return Cart{}, myerrors.NewInvalidInputError(fmt.Errorf("item %d: %s", i, err))
		}
		normalized = append(normalized, item.normalize())
	}

	now := s.nower.Now()

	var cart Cart
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		existing, found, err := s.cartStore.Get(c, guestUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		cart = Cart{
			GuestUID:     guestUID,
			Items:        normalized,
			CreatedAt:    now,
			LastModified: &now,
		}
		if found {
			cart.CreatedAt = existing.CreatedAt
		}
		if len(normalized) > 0 {
			isDelivery := normalized[0].IsDelivery
			cart.DeliveryMode = &isDelivery
		}

		return s.putOrFail(c, cart)
	})
	if err != nil {
		return Cart{}, err
	}

	return cart, nil
}

// appendItem adds one item, guarding the single-delivery-mode invariant. On
// rejection the stored cart is untouched.
func (s *service) appendItem(c context.Context, guestUID string, item CartItem) (Cart, error) {
	s.logger.Log(c, guestUID, mylog.SeverityInfo, "Append item %s to cart of guest %s", item.ProductID, guestUID)

	err := item.validate()
	if err != nil {
		return Cart{}, myerrors.NewInvalidInputError(err)
	}
	item = item.normalize()

	now := s.nower.Now()

	var cart Cart
	err = s.cartStore.RunInTransaction(c, func(c context.Context) error {
		existing, found, err := s.cartStore.Get(c, guestUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			existing = Cart{
				GuestUID:  guestUID,
				CreatedAt: now,
			}
		}

		if existing.DeliveryMode != nil && *existing.DeliveryMode != item.IsDelivery {
			return myerrors.NewConflictError(fmt.Errorf("%w: guest %s", ErrDeliveryModeConflict, guestUID))
		}

		existing.Items = append(existing.Items, item)
		if existing.DeliveryMode == nil {
			isDelivery := item.IsDelivery
			existing.DeliveryMode = &isDelivery
		}
		existing.LastModified = &now

		cart = existing

		return s.putOrFail(c, cart)
	})
	if err != nil {
		return Cart{}, err
	}

	return cart, nil
}

func (s *service) putOrFail(c context.Context, cart Cart) error {
	err := s.cartStore.Put(c, cart.GuestUID, cart)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}
