package pricing

import (
	"context"
	"fmt"

	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/mylog"
)

func (s *service) getQuote(c context.Context, rawAddress string) (Quote, error) {
	if rawAddress == "" {
		return Quote{}, myerrors.NewInvalidInputError(fmt.Errorf("destination address is required"))
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Quote requested for address %q", rawAddress)

	distanceKm, err := s.resolver.resolve(c, rawAddress)
	if err != nil {
		return Quote{}, err
	}

	tiers, err := s.tierSource.ListTiers(c)
	if err != nil {
		return Quote{}, err
	}

	costInCents, matched, err := priceDelivery(tiers, distanceKm)
	if err != nil {
		return Quote{}, myerrors.NewInvalidInputError(fmt.Errorf("%w: %.1f km", ErrOutOfArea, distanceKm))
	}
	if !matched {
		s.logger.Log(c, "", mylog.SeverityWarn, "No tier matched %.1f km, tier table has a hole: fell back to first tier", distanceKm)
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Quote: %.1f km -> %d cents", distanceKm, costInCents)

	return Quote{
		DistanceInKm: distanceKm,
		CostInCents:  costInCents,
	}, nil
}
