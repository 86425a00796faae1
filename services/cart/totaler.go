package cart

import (
	"context"

	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/mystore"
)

// Totaler lets the checkout service recompute a guest's total without
// handing it the cart store.
type Totaler struct {
	cartStore mystore.Store[Cart]
}

func NewTotaler(store mystore.Store[Cart]) *Totaler {
	return &Totaler{
		cartStore: store,
	}
}

func (t *Totaler) CartTotal(c context.Context, guestUID string) (int64, int, error) {
	cart, found, err := t.cartStore.Get(c, guestUID)
	if err != nil {
		return 0, 0, myerrors.NewInternalError(err)
	}
	if !found {
		return 0, 0, nil
	}

	return int64(cart.Total()), len(cart.Items), nil
}
