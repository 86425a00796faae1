package pricing

import (
	"context"
	"sort"

	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/mystore"
)

// TierSource hands out the delivery-cost bands sorted ascending by
// MaxDistance. The pricer depends on that ordering contract.
type TierSource interface {
	ListTiers(c context.Context) ([]DeliveryCostTier, error)
}

type storeTierSource struct {
	tierStore mystore.Store[DeliveryCostTier]
}

func NewTierSource(tierStore mystore.Store[DeliveryCostTier]) TierSource {
	return &storeTierSource{
		tierStore: tierStore,
	}
}

func (s *storeTierSource) ListTiers(c context.Context) ([]DeliveryCostTier, error) {
	tiers, err := s.tierStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MaxDistance < tiers[j].MaxDistance
	})

	return tiers, nil
}

// Seed installs the default tier table when the store is still empty.
func Seed(c context.Context, tierStore mystore.Store[DeliveryCostTier]) error {
	return tierStore.RunInTransaction(c, func(c context.Context) error {
		existing, err := tierStore.List(c)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		for _, tier := range defaultTiers() {
			err = tierStore.Put(c, tier.UID, tier)
			if err != nil {
				return err
			}
		}

		return nil
	})
}
