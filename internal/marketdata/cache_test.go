package marketdata

import (
	"context"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(ctx, "k")
	if !ok || got != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expired entry still readable")
	}
	// Lazy eviction removed the entry.
	c.mu.RLock()
	_, present := c.entries["k"]
	c.mu.RUnlock()
	if present {
		t.Error("expired entry not evicted")
	}
}

func TestCachedValuatorHitAndMiss(t *testing.T) {
	ctx := context.Background()
	inner := NewMarketCheckValuator("", "") // no key: deterministic mock
	cached := NewCachedValuator(inner, NewTTLCache(), time.Hour)

	first, err := cached.Value(ctx, "1HGCV1F34NA123456", 28500)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if first.Source != "mock" {
		t.Errorf("first read source = %q, want mock", first.Source)
	}
	if first.MarketAverage <= 0 || first.MarketLow >= first.MarketHigh {
		t.Errorf("implausible valuation: %+v", first)
	}

	second, err := cached.Value(ctx, "1HGCV1F34NA123456", 28500)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if second.Source != "cache" {
		t.Errorf("second read source = %q, want cache", second.Source)
	}
	if second.MarketAverage != first.MarketAverage {
		t.Errorf("cached average = %v, want %v", second.MarketAverage, first.MarketAverage)
	}
}

func TestMockValuationDeterministic(t *testing.T) {
	a := mockValuation("1HGCV1F34NA123456", 28500)
	b := mockValuation("1HGCV1F34NA123456", 28500)
	if a.MarketAverage != b.MarketAverage || a.ComparableSize != b.ComparableSize {
		t.Errorf("mock not stable: %+v vs %+v", a, b)
	}
	if a.Rank < 1 || a.Rank > a.ComparableSize {
		t.Errorf("rank %d out of range 1..%d", a.Rank, a.ComparableSize)
	}
}
