package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skoll/internal/common"
	"skoll/internal/engine"
)

func startTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New(16, zerolog.Nop())
	eng.Start(context.Background())
	t.Cleanup(func() { _ = eng.Stop() })
	return eng
}

func TestEngine_PlaceGetCancel(t *testing.T) {
	eng := startTestEngine(t)

	order := limitOrder(100.0, 5, common.Buy)
	trades, err := eng.Place(order)
	require.NoError(t, err)
	assert.Empty(t, trades)

	// The resting order is visible through the loop.
	got, err := eng.Get(order.ID)
	require.NoError(t, err)
	assert.Same(t, order, got)

	best, err := eng.Best(common.Buy)
	require.NoError(t, err)
	assert.Same(t, order, best)

	// Cancel removes it and marks it terminal.
	cancelled, err := eng.Cancel(order.ID)
	require.NoError(t, err)
	assert.Equal(t, common.Cancelled, cancelled.Status)

	_, err = eng.Get(order.ID)
	assert.ErrorIs(t, err, engine.ErrMissingOrder)
}

func TestEngine_MarketAgainstRestingLiquidity(t *testing.T) {
	eng := startTestEngine(t)

	maker := limitOrder(100.0, 5, common.Sell)
	_, err := eng.Place(maker)
	require.NoError(t, err)

	taker := marketOrder(3, common.Buy)
	trades, err := eng.Place(taker)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, 3.0, trades[0].Quantity)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.NotEmpty(t, trades[0].UUID)

	// Rejections surface the book's error unmodified.
	_, err = eng.Place(marketOrder(1, common.Sell))
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
}

func TestEngine_SerializesConcurrentPlacements(t *testing.T) {
	eng := startTestEngine(t)

	// Hammer the loop from many goroutines; every order lands at its
	// own price level so nothing crosses.
	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				price := 1000.0 + float64(w*perWorker+i)
				_, err := eng.Place(limitOrder(price, 1, common.Buy))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	depth, err := eng.Depth(common.Buy, 0)
	require.NoError(t, err)
	assert.Len(t, depth, workers*perWorker)
}

func TestEngine_StoppedEngineRejectsCommands(t *testing.T) {
	eng := engine.New(1, zerolog.Nop())
	eng.Start(context.Background())
	require.NoError(t, eng.Stop())

	_, err := eng.Place(limitOrder(100.0, 1, common.Buy))
	assert.ErrorIs(t, err, engine.ErrEngineStopped)

	_, err = eng.Get(1)
	assert.ErrorIs(t, err, engine.ErrEngineStopped)
}

func TestEngine_ContextCancellationStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	eng := engine.New(1, zerolog.Nop())
	eng.Start(ctx)

	cancel()
	// The tomb inherits the context's cancellation as its death reason.
	assert.ErrorIs(t, eng.Stop(), context.Canceled)

	_, err := eng.Place(limitOrder(100.0, 1, common.Buy))
	assert.ErrorIs(t, err, engine.ErrEngineStopped)
}

func TestEngine_DepthSnapshot(t *testing.T) {
	eng := startTestEngine(t)

	for i := range 3 {
		_, err := eng.Place(limitOrder(100.0+float64(i), 2, common.Sell))
		require.NoError(t, err)
	}

	depth, err := eng.Depth(common.Sell, 2)
	require.NoError(t, err)
	require.Len(t, depth, 2)
	assert.Equal(t, 100.0, depth[0].Price)
	assert.Equal(t, 101.0, depth[1].Price)

	_, err = eng.Depth(common.Side(7), 1)
	assert.ErrorIs(t, err, engine.ErrInvalidSide)
}

func TestEngine_MissingOrderCarriesID(t *testing.T) {
	eng := startTestEngine(t)

	const id = uint64(1 << 41)
	_, err := eng.Cancel(id)
	assert.ErrorIs(t, err, engine.ErrMissingOrder)
	assert.Contains(t, err.Error(), fmt.Sprintf("id %d", id))
}
