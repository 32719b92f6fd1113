package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade accounts for the two parties who matched. Taker is the incoming
// order that triggered the fill, maker the resting one; the trade always
// executes at the maker's price.
type Trade struct {
	UUID      string
	Taker     *Order
	Maker     *Order
	Quantity  float64
	Price     float64
	Timestamp time.Time
}

func NewTrade(taker, maker *Order, quantity float64) Trade {
	return Trade{
		UUID:      uuid.New().String(),
		Taker:     taker,
		Maker:     maker,
		Quantity:  quantity,
		Price:     maker.Price,
		Timestamp: time.Now(),
	}
}

func (t Trade) String() string {
	return fmt.Sprintf("Trade(%s: taker=%d, maker=%d, qty=%g, price=%.4f, %s)",
		t.UUID,
		t.Taker.ID,
		t.Maker.ID,
		t.Quantity,
		t.Price,
		t.Timestamp.Format(time.RFC3339),
	)
}
