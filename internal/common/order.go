package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// idCounter hands out order ids for the whole process. Ids are never
// reused and are strictly creation-ordered, even when orders are built
// from multiple goroutines.
var idCounter atomic.Uint64

type Order struct {
	ID       uint64      // Book-assigned monotonic id
	Price    float64     // Limit price; carries no meaning for market orders
	Quantity float64     // Remaining quantity, decremented by fills
	Time     time.Time   // Arrival time, tie-breaker at equal price
	Side     Side        // Order side
	Type     OrderType   // Limit or market
	Status   OrderStatus // Lifecycle state, maintained by the book
}

// NewOrder stamps the order with the next process-wide id and its time
// of arrival. We do not care about the accuracy of the timestamp, just
// its relativity to other timestamps.
func NewOrder(price, quantity float64, side Side, orderType OrderType) *Order {
	return &Order{
		ID:       idCounter.Add(1),
		Price:    price,
		Quantity: quantity,
		Time:     time.Now(),
		Side:     side,
		Type:     orderType,
		Status:   Resting,
	}
}

func (order Order) String() string {
	return fmt.Sprintf("Order(id=%d, price=%.4f, qty=%g, side=%s, type=%s, status=%s, %s)",
		order.ID,
		order.Price,
		order.Quantity,
		order.Side,
		order.Type,
		order.Status,
		order.Time.Format(time.RFC3339Nano),
	)
}
