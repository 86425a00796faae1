package cart

import (
	"github.com/inyourvase/flowershop/lib/mylog"
	"github.com/inyourvase/flowershop/lib/mypubsub"
	"github.com/inyourvase/flowershop/lib/mystore"
	"github.com/inyourvase/flowershop/lib/mytime"
)

type service struct {
	cartStore mystore.Store[Cart]
	pubsub    mypubsub.PubSub
	nower     mytime.Nower
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(store mystore.Store[Cart], pubsub mypubsub.PubSub, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		cartStore: store,
		pubsub:    pubsub,
		nower:     nower,
		logger:    logger,
	}
}
