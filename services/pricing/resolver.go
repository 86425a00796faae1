package pricing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/inyourvase/flowershop/lib/mycache"
	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/mylog"
)

var (
	// ErrInvalidDestination means the collaborator could not make sense of
	// the destination (or reported a zero distance, which is treated the
	// same because a malformed query looks identical).
	ErrInvalidDestination = errors.New("invalid destination address")

	// ErrServiceUnavailable means the distance collaborator could not be
	// reached. Retryable by the caller, never retried here.
	ErrServiceUnavailable = errors.New("distance service unavailable")
)

const (
	regionQualifier  = ", BC"
	distanceCacheTTL = 15 * time.Minute
)

var postalCodeRegexp = regexp.MustCompile(`[A-Za-z0-9]{3}\s?[A-Za-z0-9]{3}`)

// normalizeDestination extracts the first postal-code-shaped substring and
// appends the region qualifier. Addresses without such a substring are used
// verbatim as the query term, which can produce confusing collaborator
// failures for unusual address shapes.
func normalizeDestination(rawAddress string) string {
	term := rawAddress
	if match := postalCodeRegexp.FindString(rawAddress); match != "" {
		if len(match) == 6 {
			match = match[:3] + " " + match[3:]
		}
		term = match
	}

	return term + regionQualifier
}

type distanceResolver struct {
	origin string
	api    DistanceMatrixAPI
	cache  mycache.Cache
	logger mylog.Logger
}

func newDistanceResolver(origin string, api DistanceMatrixAPI, cache mycache.Cache, logger mylog.Logger) *distanceResolver {
	return &distanceResolver{
		origin: origin,
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// resolve turns a free-text address into a driving distance in kilometers.
// Successful resolutions are memoized per normalized destination: the
// computation is pure given the same query string.
func (r *distanceResolver) resolve(c context.Context, rawAddress string) (float64, error) {
	destination := normalizeDestination(rawAddress)
	cacheKey := "distance:" + destination

	cached, found, err := r.cache.Get(c, cacheKey)
	if err != nil {
		r.logger.Log(c, "", mylog.SeverityWarn, "Error reading distance cache: %s", err)
	}
	if found {
		distanceKm, err := strconv.ParseFloat(string(cached), 64)
		if err == nil {
			return distanceKm, nil
		}
	}

	result, err := r.api.QueryDistance(c, r.origin, destination)
	if err != nil {
		return 0, myerrors.NewUnavailableError(fmt.Errorf("%w: %s", ErrServiceUnavailable, err))
	}

	if result.Status != "OK" || result.ElementStatus != "OK" {
		return 0, myerrors.NewInvalidInputError(fmt.Errorf("%w: status %s/%s", ErrInvalidDestination, result.Status, result.ElementStatus))
	}

	if result.DistanceMeters == 0 {
		// A genuine zero-distance result cannot be told apart from a
		// malformed query, so it is rejected.
		return 0, myerrors.NewInvalidInputError(fmt.Errorf("%w: distance returned as zero", ErrInvalidDestination))
	}

	distanceKm := float64(result.DistanceMeters) / 1000

	err = r.cache.Set(c, cacheKey, []byte(strconv.FormatFloat(distanceKm, 'f', -1, 64)), distanceCacheTTL)
	if err != nil {
		r.logger.Log(c, "", mylog.SeverityWarn, "Error writing distance cache: %s", err)
	}

	return distanceKm, nil
}
