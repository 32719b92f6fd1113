package engine

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"skoll/internal/common"
)

var (
	ErrNoLiquidity  = errors.New("no liquidity")
	ErrMissingOrder = errors.New("missing order")
	ErrInvalidSide  = errors.New("invalid side")
	ErrInvalidType  = errors.New("invalid order type")
	ErrCorruptBook  = errors.New("book state corrupted")
)

// qtyEpsilon is the threshold below which a remaining quantity counts as
// fully consumed. Fills are float arithmetic, exact zero is not assumed.
const qtyEpsilon = 1e-4

// OrderBook is a single-instrument book under price-time priority. Both
// sides are kept as sorted sequences of live orders, best priority
// first, with a unified id index spanning the two. All mutation goes
// through the methods below; the book itself is not safe for concurrent
// use, callers must serialize (see Engine).
type OrderBook struct {
	bid []*common.Order // sorted by (-price, time)
	ask []*common.Order // sorted by (price, time)

	index *orderIndex

	// Aggregated per-price views of each side, maintained alongside
	// the sequences for depth snapshots.
	bidDepth depthView
	askDepth depthView
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		index:    newOrderIndex(),
		bidDepth: newDepthView(common.Buy),
		askDepth: newDepthView(common.Sell),
	}
}

// bidBefore reports whether a ranks ahead of b on the bid side: higher
// price first, earlier time at equal price.
func bidBefore(a, b *common.Order) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Time.Before(b.Time)
}

// askBefore is the sell-side ordering: lower price first, earlier time
// at equal price.
func askBefore(a, b *common.Order) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Time.Before(b.Time)
}

// Insert places one or more resting orders into the book, each at the
// position that preserves its side's sort key. An unsupported side fails
// that order's insertion; earlier orders of the same call stay placed.
func (book *OrderBook) Insert(orders ...*common.Order) error {
	for _, order := range orders {
		if err := book.insert(order); err != nil {
			return err
		}
	}
	return nil
}

func (book *OrderBook) insert(order *common.Order) error {
	switch order.Side {
	case common.Buy:
		at := sort.Search(len(book.bid), func(i int) bool {
			return !bidBefore(book.bid[i], order)
		})
		book.bid = slices.Insert(book.bid, at, order)
	case common.Sell:
		at := sort.Search(len(book.ask), func(i int) bool {
			return !askBefore(book.ask[i], order)
		})
		book.ask = slices.Insert(book.ask, at, order)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSide, order.Side)
	}
	book.index.put(order)
	book.depth(order.Side).add(order)
	return nil
}

// Get looks the order up by id across both sides.
func (book *OrderBook) Get(id uint64) (*common.Order, error) {
	order, ok := book.index.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrMissingOrder, id)
	}
	return order, nil
}

// Best returns the highest-priority resting order on the given side
// without removing it, or nil when that side is empty.
func (book *OrderBook) Best(side common.Side) (*common.Order, error) {
	seq, err := book.sequence(side)
	if err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, nil
	}
	return seq[0], nil
}

// Remove takes the given order out of its side's sequence and out of
// the index. The order is located by its sort key and id, so removing
// an order deep in the book leaves every other order in place.
func (book *OrderBook) Remove(order *common.Order) error {
	if _, ok := book.index.get(order.ID); !ok {
		return fmt.Errorf("%w: id %d", ErrMissingOrder, order.ID)
	}

	switch order.Side {
	case common.Buy:
		at, ok := locate(book.bid, order, bidBefore)
		if !ok {
			return fmt.Errorf("%w: id %d indexed but not resting", ErrCorruptBook, order.ID)
		}
		book.bid = slices.Delete(book.bid, at, at+1)
	case common.Sell:
		at, ok := locate(book.ask, order, askBefore)
		if !ok {
			return fmt.Errorf("%w: id %d indexed but not resting", ErrCorruptBook, order.ID)
		}
		book.ask = slices.Delete(book.ask, at, at+1)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSide, order.Side)
	}

	book.index.delete(order.ID)
	book.depth(order.Side).drop(order)
	return nil
}

// locate binary-searches to the order's key position, then walks the
// run of equal keys until the id matches.
func locate(seq []*common.Order, order *common.Order, before func(a, b *common.Order) bool) (int, bool) {
	at := sort.Search(len(seq), func(i int) bool {
		return !before(seq[i], order)
	})
	for ; at < len(seq) && !before(order, seq[at]); at++ {
		if seq[at].ID == order.ID {
			return at, true
		}
	}
	return 0, false
}

// ProcessOrder executes an incoming order against the book, dispatched
// by order type. It returns the trades generated, one per resting order
// touched.
func (book *OrderBook) ProcessOrder(order *common.Order) ([]common.Trade, error) {
	switch order.Type {
	case common.LimitOrder:
		return book.processLimit(order)
	case common.MarketOrder:
		return book.processMarket(order)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, order.Type)
	}
}

// processMarket sweeps the opposing side until the order fills. An empty
// opposing side up front rejects the order wholesale with no mutation.
// Exhausting the side mid-sweep keeps the fills already made and reports
// ErrNoLiquidity for the rest: the documented partial-fill-then-no-
// liquidity outcome, not a rollback.
func (book *OrderBook) processMarket(order *common.Order) ([]common.Trade, error) {
	if order.Side != common.Buy && order.Side != common.Sell {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, order.Side)
	}
	opposing := order.Side.Opposite()
	if book.sideLen(opposing) == 0 {
		return nil, ErrNoLiquidity
	}

	var trades []common.Trade
	for order.Quantity > 0 {
		resting, err := book.Best(opposing)
		if err != nil {
			return trades, err
		}
		if resting == nil {
			order.Status = common.PartiallyFilled
			return trades, fmt.Errorf("%w: %g unfilled", ErrNoLiquidity, order.Quantity)
		}
		trade, err := book.fill(order, resting)
		if err != nil {
			return trades, err
		}
		trades = append(trades, trade)
	}
	order.Status = common.Filled
	return trades, nil
}

// processLimit matches the order while its limit price crosses the best
// opposing price, then rests any remainder in the book at its limit.
func (book *OrderBook) processLimit(order *common.Order) ([]common.Trade, error) {
	if order.Side != common.Buy && order.Side != common.Sell {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, order.Side)
	}
	opposing := order.Side.Opposite()

	var trades []common.Trade
	for order.Quantity > 0 {
		resting, err := book.Best(opposing)
		if err != nil {
			return trades, err
		}
		if resting == nil || !crosses(order, resting) {
			break
		}
		trade, err := book.fill(order, resting)
		if err != nil {
			return trades, err
		}
		trades = append(trades, trade)
	}

	if order.Quantity < qtyEpsilon {
		order.Status = common.Filled
		return trades, nil
	}
	// A remainder that already traded rests with the partial-fill
	// marker, same as a resting maker that was partially consumed.
	if len(trades) > 0 {
		order.Status = common.PartiallyFilled
	}
	return trades, book.insert(order)
}

// crosses reports whether a limit taker is willing to trade at the
// resting order's price.
func crosses(taker, resting *common.Order) bool {
	if taker.Side == common.Buy {
		return resting.Price <= taker.Price
	}
	return resting.Price >= taker.Price
}

// fill transfers min(taker, maker) quantity between the two orders. A
// maker left with less than qtyEpsilon is fully consumed and leaves the
// book; a maker with remaining size keeps its position and with it its
// original time priority.
func (book *OrderBook) fill(taker, maker *common.Order) (common.Trade, error) {
	quantity := math.Min(taker.Quantity, maker.Quantity)
	taker.Quantity -= quantity
	maker.Quantity -= quantity
	if taker.Quantity < 0 || maker.Quantity < 0 {
		return common.Trade{}, fmt.Errorf("%w: negative quantity after fill", ErrCorruptBook)
	}

	book.depth(maker.Side).reduce(maker.Price, quantity)

	if maker.Quantity < qtyEpsilon {
		maker.Status = common.Filled
		if err := book.Remove(maker); err != nil {
			return common.Trade{}, err
		}
	} else {
		maker.Status = common.PartiallyFilled
	}

	return common.NewTrade(taker, maker, quantity), nil
}

// --- Read-only views ---------------------------------------------------

// Bids is the bid sequence, best first. Callers must not mutate it.
func (book *OrderBook) Bids() []*common.Order { return book.bid }

// Asks is the ask sequence, best first. Callers must not mutate it.
func (book *OrderBook) Asks() []*common.Order { return book.ask }

// Len is the number of resting orders across both sides.
func (book *OrderBook) Len() int { return book.index.len() }

// SideLen is the number of resting orders on one side.
func (book *OrderBook) SideLen(side common.Side) (int, error) {
	seq, err := book.sequence(side)
	if err != nil {
		return 0, err
	}
	return len(seq), nil
}

// Index copies out one side's id view of the unified index. Mutating
// the returned map does not touch the book.
func (book *OrderBook) Index(side common.Side) (map[uint64]*common.Order, error) {
	switch side {
	case common.Buy, common.Sell:
		return book.index.view(side), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
}

// Depth copies out the best n aggregated price levels of a side; n <= 0
// returns the whole side.
func (book *OrderBook) Depth(side common.Side, n int) ([]PriceLevel, error) {
	switch side {
	case common.Buy, common.Sell:
		return book.depth(side).snapshot(n), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
}

func (book *OrderBook) sequence(side common.Side) ([]*common.Order, error) {
	switch side {
	case common.Buy:
		return book.bid, nil
	case common.Sell:
		return book.ask, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
}

func (book *OrderBook) sideLen(side common.Side) int {
	if side == common.Buy {
		return len(book.bid)
	}
	return len(book.ask)
}

func (book *OrderBook) depth(side common.Side) depthView {
	if side == common.Buy {
		return book.bidDepth
	}
	return book.askDepth
}
