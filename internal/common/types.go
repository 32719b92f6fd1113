package common

type Side int

const (
	Buy Side = iota
	Sell
)

var sideName = map[Side]string{
	Buy:  "BUY",
	Sell: "SELL",
}

func (s Side) String() string {
	if name, ok := sideName[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Opposite is the side a taker on s consumes liquidity from.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type OrderType int

const (
	// Limit orders are an order to buy or sell at a specified price or
	// better. Limit orders may rest on the order book until filled.
	LimitOrder OrderType = iota
	// Market orders are instructions to buy or sell immediately against
	// the best available resting orders, at whatever price they carry.
	MarketOrder
)

var orderTypeName = map[OrderType]string{
	LimitOrder:  "LIMIT",
	MarketOrder: "MARKET",
}

func (t OrderType) String() string {
	if name, ok := orderTypeName[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// OrderStatus tracks an order through its lifecycle:
// Resting -> (PartiallyFilled -> Resting)* -> Filled | Cancelled.
type OrderStatus int

const (
	Resting OrderStatus = iota
	PartiallyFilled
	Filled
	Cancelled
)

var orderStatusName = map[OrderStatus]string{
	Resting:         "RESTING",
	PartiallyFilled: "PARTIALLY_FILLED",
	Filled:          "FILLED",
	Cancelled:       "CANCELLED",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusName[s]; ok {
		return name
	}
	return "UNKNOWN"
}
