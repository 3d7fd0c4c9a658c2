package sim

import (
	"fmt"
	"sync"
)

// Feed is an in-memory price feed for simulated strategies.
type Feed struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewFeed returns a feed seeded with the given prices.
func NewFeed(prices map[string]float64) *Feed {
	p := make(map[string]float64, len(prices))
	for k, v := range prices {
		p[k] = v
	}
	return &Feed{prices: p}
}

// Price returns the current price for an underlying.
func (f *Feed) Price(underlying string) (float64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.prices[underlying]
	if !ok {
		return 0, fmt.Errorf("no price for %q", underlying)
	}
	return p, nil
}

// Set updates the price for an underlying.
func (f *Feed) Set(underlying string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[underlying] = price
}
