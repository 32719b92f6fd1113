package engine

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"skoll/internal/common"
)

var ErrEngineStopped = errors.New("engine stopped")

type commandType int

const (
	cmdPlace commandType = iota
	cmdCancel
	cmdGet
	cmdBest
	cmdDepth
)

// command is one serialized request against the book. The engine sends
// the result back on resp.
type command struct {
	typeOf commandType
	order  *common.Order // cmdPlace
	id     uint64        // cmdCancel, cmdGet
	side   common.Side   // cmdBest, cmdDepth
	levels int           // cmdDepth
	resp   chan result
}

type result struct {
	order  *common.Order
	trades []common.Trade
	depth  []PriceLevel
	err    error
}

// Engine owns one OrderBook and runs all mutation in a single goroutine
// fed by a command channel. That goroutine is the book's required
// mutual exclusion: callers on any goroutine get back-pressured through
// the channel and never touch the book directly.
type Engine struct {
	book *OrderBook
	cmds chan command
	t    *tomb.Tomb
	log  zerolog.Logger
}

func New(buffer int, logger zerolog.Logger) *Engine {
	return &Engine{
		book: NewOrderBook(),
		cmds: make(chan command, buffer),
		log:  logger,
	}
}

// Start spins up the command loop under a tomb tied to ctx. Stop (or
// ctx cancellation) winds it down; commands in flight after that fail
// with ErrEngineStopped.
func (e *Engine) Start(ctx context.Context) {
	e.t, _ = tomb.WithContext(ctx)
	e.t.Go(e.loop)
	e.log.Info().Msg("engine running")
}

// Stop kills the command loop and waits for it to exit.
func (e *Engine) Stop() error {
	e.t.Kill(nil)
	return e.t.Wait()
}

func (e *Engine) loop() error {
	for {
		select {
		case <-e.t.Dying():
			e.log.Info().Msg("engine shutting down")
			return nil
		case cmd := <-e.cmds:
			cmd.resp <- e.handle(cmd)
		}
	}
}

func (e *Engine) handle(cmd command) result {
	switch cmd.typeOf {
	case cmdPlace:
		trades, err := e.book.ProcessOrder(cmd.order)
		if err != nil {
			e.log.Warn().
				Err(err).
				Uint64("id", cmd.order.ID).
				Str("side", cmd.order.Side.String()).
				Str("type", cmd.order.Type.String()).
				Msg("order not fully placed")
		} else {
			e.log.Info().
				Uint64("id", cmd.order.ID).
				Str("side", cmd.order.Side.String()).
				Str("type", cmd.order.Type.String()).
				Float64("price", cmd.order.Price).
				Int("fills", len(trades)).
				Msg("order processed")
		}
		for _, trade := range trades {
			e.log.Info().
				Str("trade", trade.UUID).
				Uint64("taker", trade.Taker.ID).
				Uint64("maker", trade.Maker.ID).
				Float64("qty", trade.Quantity).
				Float64("price", trade.Price).
				Msg("fill")
		}
		return result{order: cmd.order, trades: trades, err: err}

	case cmdCancel:
		order, err := e.book.Get(cmd.id)
		if err != nil {
			return result{err: err}
		}
		if err := e.book.Remove(order); err != nil {
			return result{err: err}
		}
		order.Status = common.Cancelled
		e.log.Info().Uint64("id", order.ID).Msg("order cancelled")
		return result{order: order}

	case cmdGet:
		order, err := e.book.Get(cmd.id)
		return result{order: order, err: err}

	case cmdBest:
		order, err := e.book.Best(cmd.side)
		return result{order: order, err: err}

	case cmdDepth:
		depth, err := e.book.Depth(cmd.side, cmd.levels)
		return result{depth: depth, err: err}
	}
	return result{}
}

// send pushes a command through the loop, giving up cleanly if the
// engine dies before the command is accepted or answered.
func (e *Engine) send(cmd command) result {
	cmd.resp = make(chan result, 1)
	select {
	case e.cmds <- cmd:
	case <-e.t.Dying():
		return result{err: ErrEngineStopped}
	}
	select {
	case res := <-cmd.resp:
		return res
	case <-e.t.Dying():
		return result{err: ErrEngineStopped}
	}
}

// Place executes an incoming order: limit orders cross then rest, market
// orders sweep the opposing side. Returns the trades generated.
func (e *Engine) Place(order *common.Order) ([]common.Trade, error) {
	res := e.send(command{typeOf: cmdPlace, order: order})
	return res.trades, res.err
}

// Cancel removes the resting order with the given id from the book.
func (e *Engine) Cancel(id uint64) (*common.Order, error) {
	res := e.send(command{typeOf: cmdCancel, id: id})
	return res.order, res.err
}

// Get looks up a resting order by id.
func (e *Engine) Get(id uint64) (*common.Order, error) {
	res := e.send(command{typeOf: cmdGet, id: id})
	return res.order, res.err
}

// Best returns the top of book for a side, nil when the side is empty.
func (e *Engine) Best(side common.Side) (*common.Order, error) {
	res := e.send(command{typeOf: cmdBest, side: side})
	return res.order, res.err
}

// Depth snapshots the best n aggregated price levels of a side.
func (e *Engine) Depth(side common.Side, n int) ([]PriceLevel, error) {
	res := e.send(command{typeOf: cmdDepth, side: side, levels: n})
	return res.depth, res.err
}
