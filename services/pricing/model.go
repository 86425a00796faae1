package pricing

// DeliveryCostTier maps a band of driving distances to a flat delivery fee.
// Distances are kilometers, cost is in cents. Tiers are reference data:
// loaded per pricing request, never mutated here.
type DeliveryCostTier struct {
	UID         string
	MinDistance float64
	MaxDistance float64
	CostInCents int
}

// Quote is what the storefront shows next to the delivery option.
type Quote struct {
	DistanceInKm float64 `json:"distance"`
	CostInCents  int     `json:"cost"`
}

func defaultTiers() []DeliveryCostTier {
	return []DeliveryCostTier{
		{UID: "tier_local", MinDistance: 0, MaxDistance: 5, CostInCents: 500},
		{UID: "tier_town", MinDistance: 5, MaxDistance: 10, CostInCents: 800},
		{UID: "tier_rural", MinDistance: 10, MaxDistance: 20, CostInCents: 1200},
	}
}
