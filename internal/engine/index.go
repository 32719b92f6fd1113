package engine

import "skoll/internal/common"

// orderIndex is the unified id lookup spanning both sides of the book.
// It is two plain maps behind one contract: reads try the buy side then
// the sell side; a write for an id already held somewhere updates it in
// place, and a write for a brand-new id lands in the map matching the
// order's side.
type orderIndex struct {
	buy  map[uint64]*common.Order
	sell map[uint64]*common.Order
}

func newOrderIndex() *orderIndex {
	return &orderIndex{
		buy:  make(map[uint64]*common.Order),
		sell: make(map[uint64]*common.Order),
	}
}

func (idx *orderIndex) get(id uint64) (*common.Order, bool) {
	if order, ok := idx.buy[id]; ok {
		return order, true
	}
	if order, ok := idx.sell[id]; ok {
		return order, true
	}
	return nil, false
}

func (idx *orderIndex) put(order *common.Order) {
	if _, ok := idx.buy[order.ID]; ok {
		idx.buy[order.ID] = order
		return
	}
	if _, ok := idx.sell[order.ID]; ok {
		idx.sell[order.ID] = order
		return
	}
	if order.Side == common.Sell {
		idx.sell[order.ID] = order
		return
	}
	idx.buy[order.ID] = order
}

func (idx *orderIndex) delete(id uint64) bool {
	if _, ok := idx.buy[id]; ok {
		delete(idx.buy, id)
		return true
	}
	if _, ok := idx.sell[id]; ok {
		delete(idx.sell, id)
		return true
	}
	return false
}

func (idx *orderIndex) len() int {
	return len(idx.buy) + len(idx.sell)
}

// view copies out one sub-mapping so callers can inspect the index
// without a handle on the live maps.
func (idx *orderIndex) view(side common.Side) map[uint64]*common.Order {
	src := idx.buy
	if side == common.Sell {
		src = idx.sell
	}
	out := make(map[uint64]*common.Order, len(src))
	for id, order := range src {
		out[id] = order
	}
	return out
}
