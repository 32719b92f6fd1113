package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrder_IDsAreMonotonic(t *testing.T) {
	previous := NewOrder(10.0, 1, Buy, LimitOrder).ID
	for range 100 {
		next := NewOrder(10.0, 1, Buy, LimitOrder).ID
		assert.Greater(t, next, previous)
		previous = next
	}
}

func TestNewOrder_IDsUniqueUnderConcurrency(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[uint64]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id := NewOrder(10.0, 1, Sell, MarketOrder).ID
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestOrder_StringCarriesIdentity(t *testing.T) {
	order := NewOrder(10.25, 3, Sell, LimitOrder)
	s := order.String()
	assert.Contains(t, s, "10.2500")
	assert.Contains(t, s, "SELL")
	assert.Contains(t, s, "LIMIT")
}
