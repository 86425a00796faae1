package pricing

import "errors"

// ErrOutOfArea means the destination lies beyond the outermost tier.
// Deterministic and non-retryable.
var ErrOutOfArea = errors.New("address is outside the delivery area")

// priceDelivery resolves a distance to a delivery fee. Tiers must be sorted
// ascending by MaxDistance (the tier source guarantees this; we do not
// re-sort). A distance that falls in a gap between two tiers is attributed
// to the lower tier. When no tier matches at all the first tier's cost is
// used; that only happens with a misconfigured table, so the caller is told
// via matched=false and is expected to log it.
func priceDelivery(tiers []DeliveryCostTier, distanceKm float64) (costInCents int, matched bool, err error) {
	if len(tiers) == 0 {
		return 0, false, ErrOutOfArea
	}

	maxDistance := tiers[0].MaxDistance
	for _, t := range tiers {
		if t.MaxDistance > maxDistance {
			maxDistance = t.MaxDistance
		}
	}
	if distanceKm > maxDistance {
		return 0, false, ErrOutOfArea
	}

	for i, t := range tiers {
		if distanceKm < t.MinDistance {
			continue
		}
		if distanceKm <= t.MaxDistance {
			return t.CostInCents, true, nil
		}
		if i < len(tiers)-1 && distanceKm < tiers[i+1].MinDistance {
			return t.CostInCents, true, nil
		}
	}

	return tiers[0].CostInCents, false, nil
}
