package collector

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"VolScope/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Closes []float64 // used verbatim when set
	End    time.Time // last bar date; defaults to today (UTC)
	Err    error
	Calls  atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyCloses(_ context.Context, symbol string, lookback Lookback) (*model.PriceSeries, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	closes := m.Closes
	if closes == nil {
		closes = generateMockCloses(m.Price, lookback.TradingDays())
	}
	if len(closes) == 0 {
		return nil, noData(m.Name(), symbol, lookback)
	}

	end := m.End
	if end.IsZero() {
		end = time.Now()
	}
	end = truncateDay(end)

	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: end.AddDate(0, 0, i-len(closes)+1), Close: c}
	}
	return &model.PriceSeries{Symbol: symbol, Source: m.Name(), Points: points, FetchedAt: end}, nil
}

// generateMockCloses produces a deterministic wavy series around basePrice.
func generateMockCloses(basePrice float64, count int) []float64 {
	if basePrice <= 0 {
		basePrice = 100
	}
	closes := make([]float64, count)
	for i := 0; i < count; i++ {
		closes[i] = basePrice * (1 + 0.02*math.Sin(float64(i)/3) + float64(i-count/2)*0.001)
	}
	return closes
}
