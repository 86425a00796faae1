package checkout

import (
	"context"
	"fmt"

	"github.com/inyourvase/flowershop/services/checkoutevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}
