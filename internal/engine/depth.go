package engine

import (
	"github.com/tidwall/btree"

	"skoll/internal/common"
)

// PriceLevel aggregates the resting liquidity at one price.
type PriceLevel struct {
	Price    float64
	Quantity float64
	Orders   int
}

type priceLevels = btree.BTreeG[*PriceLevel]

// depthView keeps a per-side aggregate of the book, sorted best price
// first. It is maintained incrementally on every insert, fill and
// removal so depth snapshots never walk the order sequences.
type depthView struct {
	levels *priceLevels
}

func newDepthView(side common.Side) depthView {
	if side == common.Buy {
		// Sorted greatest first.
		return depthView{levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price > b.Price
		})}
	}
	// Sorted least first.
	return depthView{levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price
	})}
}

func (d depthView) add(order *common.Order) {
	// Levels comparator only accounts for price, so a bare price is
	// enough for the search.
	level, ok := d.levels.GetMut(&PriceLevel{Price: order.Price})
	if ok {
		level.Quantity += order.Quantity
		level.Orders++
		return
	}
	d.levels.Set(&PriceLevel{
		Price:    order.Price,
		Quantity: order.Quantity,
		Orders:   1,
	})
}

// reduce shrinks the liquidity at price by a filled quantity. The order
// count is untouched; drop settles it once the order leaves the book.
func (d depthView) reduce(price, quantity float64) {
	if level, ok := d.levels.GetMut(&PriceLevel{Price: price}); ok {
		level.Quantity -= quantity
	}
}

// drop removes one order's remaining footprint, deleting the level when
// it empties.
func (d depthView) drop(order *common.Order) {
	level, ok := d.levels.GetMut(&PriceLevel{Price: order.Price})
	if !ok {
		return
	}
	level.Quantity -= order.Quantity
	level.Orders--
	if level.Orders <= 0 {
		d.levels.Delete(level)
	}
}

// snapshot copies out the best n levels; n <= 0 means all of them.
func (d depthView) snapshot(n int) []PriceLevel {
	out := make([]PriceLevel, 0, d.levels.Len())
	d.levels.Scan(func(level *PriceLevel) bool {
		out = append(out, *level)
		return n <= 0 || len(out) < n
	})
	return out
}
