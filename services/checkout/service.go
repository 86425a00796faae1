package checkout

import (
	"context"

	"github.com/inyourvase/flowershop/lib/mylog"
	"github.com/inyourvase/flowershop/lib/mypublisher"
	"github.com/inyourvase/flowershop/lib/mypubsub"
	"github.com/inyourvase/flowershop/lib/mystore"
	"github.com/inyourvase/flowershop/lib/mytime"
	"github.com/inyourvase/flowershop/lib/myuuid"
)

//go:generate mockgen -source=service.go -package checkout -destination carttotaler_mock.go CartTotaler

// CartTotaler recomputes what the guest's cart costs right now. The session
// never trusts a client-supplied amount.
type CartTotaler interface {
	CartTotal(c context.Context, guestUID string) (totalInCents int64, itemCount int, err error)
}

type service struct {
	sessionStore mystore.Store[CheckoutSession]
	cartTotaler  CartTotaler
	payer        Payer
	publisher    mypublisher.Publisher
	pubsub       mypubsub.PubSub
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(store mystore.Store[CheckoutSession], cartTotaler CartTotaler, payer Payer, publisher mypublisher.Publisher, pubsub mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		sessionStore: store,
		cartTotaler:  cartTotaler,
		payer:        payer,
		publisher:    publisher,
		pubsub:       pubsub,
		nower:        nower,
		uuider:       uuider,
		logger:       logger,
	}
}
