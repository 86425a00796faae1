package pricing

import (
	"github.com/inyourvase/flowershop/lib/mycache"
	"github.com/inyourvase/flowershop/lib/mylog"
)

type service struct {
	tierSource TierSource
	resolver   *distanceResolver
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(tierSource TierSource, origin string, api DistanceMatrixAPI, cache mycache.Cache, logger mylog.Logger) *service {
	return &service{
		tierSource: tierSource,
		resolver:   newDistanceResolver(origin, api, cache, logger),
		logger:     logger,
	}
}
