package cart

import (
	"errors"
	"fmt"
	"time"
)

const maxCardMessageLength = 250

// ErrDeliveryModeConflict is returned when an append would mix delivery and
// pickup items in one cart. The cart holds at most one fulfilment mode.
var ErrDeliveryModeConflict = errors.New("cart already contains items with a different delivery mode")

type Upsell struct {
	Name      string
	UnitPrice int
	Quantity  int
}

type CartItem struct {
	ProductID    string
	Name         string
	Size         string
	UnitPrice    int
	Quantity     int
	Upsells      []Upsell
	IsDelivery   bool
	DeliveryCost int
	PostalCode   string
	CardMessage  string
	DeliveryDate string
}

type Cart struct {
	GuestUID     string
	Items        []CartItem
	DeliveryMode *bool
	CreatedAt    time.Time
	LastModified *time.Time
}

// Total is the single source of truth for what a cart costs. The checkout
// service recomputes it server-side at charge time; client-supplied totals are
// never trusted.
func (cart Cart) Total() int {
	total := 0
	for _, item := range cart.Items {
		total += item.Total()
	}

	return total
}

func (item CartItem) Total() int {
	total := item.UnitPrice
	for _, upsell := range item.Upsells {
		total += upsell.UnitPrice * upsell.Quantity
	}
	if item.IsDelivery {
		total += item.DeliveryCost
	}

	return total
}

func (item CartItem) validate() error {
	if item.ProductID == "" {
		return fmt.Errorf("missing product id")
	}
	if item.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if item.DeliveryCost != 0 && !item.IsDelivery {
		return fmt.Errorf("delivery cost on a pickup item")
	}
	if len(item.CardMessage) > maxCardMessageLength {
		return fmt.Errorf("card message exceeds %d characters", maxCardMessageLength)
	}

	return nil
}

// normalize drops upsells that were dialed down to zero quantity.
func (item CartItem) normalize() CartItem {
	upsells := make([]Upsell, 0, len(item.Upsells))
	for _, upsell := range item.Upsells {
		if upsell.Quantity > 0 {
			upsells = append(upsells, upsell)
		}
	}
	item.Upsells = upsells

	return item
}
