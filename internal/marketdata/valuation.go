package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"time"
)

// Valuation is a market price read for one unit.
type Valuation struct {
	VIN            string    `json:"vin"`
	MarketAverage  float64   `json:"marketAverage"`
	MarketLow      float64   `json:"marketLow"`
	MarketHigh     float64   `json:"marketHigh"`
	Rank           int       `json:"rank"` // position among comparable listings, 1 = cheapest
	ComparableSize int       `json:"comparableSize"`
	RetrievedAt    time.Time `json:"retrievedAt"`
	Source         string    `json:"source"` // "marketcheck", "mock", "cache"
}

// Valuator prices a unit against the market.
type Valuator interface {
	Value(ctx context.Context, vin string, askingPrice float64) (Valuation, error)
}

// MarketCheckValuator queries a MarketCheck-style listings API. With no API
// key configured it falls back to a deterministic mock so the rest of the
// system keeps working in development.
type MarketCheckValuator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewMarketCheckValuator creates a valuator. An empty apiKey enables the mock
// fallback.
func NewMarketCheckValuator(baseURL, apiKey string) *MarketCheckValuator {
	return &MarketCheckValuator{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type marketCheckResponse struct {
	NumFound int `json:"num_found"`
	Stats    struct {
		Price struct {
			Mean float64 `json:"mean"`
			Min  float64 `json:"min"`
			Max  float64 `json:"max"`
		} `json:"price"`
	} `json:"stats"`
}

func (v *MarketCheckValuator) Value(ctx context.Context, vin string, askingPrice float64) (Valuation, error) {
	if v.apiKey == "" {
		return mockValuation(vin, askingPrice), nil
	}

	u := fmt.Sprintf("%s/search/car/active?api_key=%s&vin=%s&stats=price",
		v.baseURL, url.QueryEscape(v.apiKey), url.QueryEscape(vin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Valuation{}, fmt.Errorf("building valuation request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Valuation{}, fmt.Errorf("valuing vin %s: %w", vin, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Valuation{}, fmt.Errorf("valuing vin %s: status %d", vin, resp.StatusCode)
	}

	var body marketCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Valuation{}, fmt.Errorf("parsing valuation response: %w", err)
	}
	if body.NumFound == 0 {
		return mockValuation(vin, askingPrice), nil
	}

	val := Valuation{
		VIN:            vin,
		MarketAverage:  body.Stats.Price.Mean,
		MarketLow:      body.Stats.Price.Min,
		MarketHigh:     body.Stats.Price.Max,
		ComparableSize: body.NumFound,
		RetrievedAt:    time.Now().UTC(),
		Source:         "marketcheck",
	}
	val.Rank = rankAgainst(askingPrice, val.MarketLow, val.MarketHigh, val.ComparableSize)
	return val, nil
}

// mockValuation derives a stable pseudo-market read from the VIN so repeated
// calls for the same unit agree.
func mockValuation(vin string, askingPrice float64) Valuation {
	h := fnv.New32a()
	h.Write([]byte(vin))
	jitter := float64(h.Sum32()%1000)/1000.0 - 0.5 // −0.5 .. +0.5

	base := askingPrice
	if base <= 0 {
		base = 25000
	}
	average := base * (1 + jitter*0.1) // within ±5% of asking
	size := 8 + int(h.Sum32()%20)

	val := Valuation{
		VIN:            vin,
		MarketAverage:  average,
		MarketLow:      average * 0.88,
		MarketHigh:     average * 1.12,
		ComparableSize: size,
		RetrievedAt:    time.Now().UTC(),
		Source:         "mock",
	}
	val.Rank = rankAgainst(askingPrice, val.MarketLow, val.MarketHigh, size)
	return val
}

// rankAgainst places the asking price within the comparable price band.
func rankAgainst(price, low, high float64, size int) int {
	if size <= 1 || high <= low {
		return 1
	}
	pos := (price - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return 1 + int(pos*float64(size-1))
}
