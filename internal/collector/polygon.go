package collector

import (
	"context"
	"time"

	"VolScope/internal/errors"
	"VolScope/internal/model"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
)

// PolygonFetcher implements Fetcher using Polygon.io daily aggregates.
type PolygonFetcher struct {
	client *polygon.Client
	now    func() time.Time
}

// NewPolygonFetcher creates a fetcher for the given API key.
func NewPolygonFetcher(apiKey string) (*PolygonFetcher, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon: api key is required")
	}
	return &PolygonFetcher{client: polygon.New(apiKey), now: time.Now}, nil
}

func (f *PolygonFetcher) Name() string { return "polygon" }

func (f *PolygonFetcher) FetchDailyCloses(ctx context.Context, symbol string, lookback Lookback) (*model.PriceSeries, error) {
	end := f.now()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(lookback.Start(end)),
		To:         models.Millis(end),
	}.WithLimit(5000)

	iter := f.client.ListAggs(ctx, params)
	points := make([]model.PricePoint, 0, lookback.TradingDays())
	for iter.Next() {
		agg := iter.Item()
		points = append(points, model.PricePoint{
			Date:  truncateDay(time.Time(agg.Timestamp).UTC()),
			Close: agg.Close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, sourceFailed(f.Name(), err)
	}
	if len(points) == 0 {
		return nil, noData(f.Name(), symbol, lookback)
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Source:    f.Name(),
		Points:    normalizeDaily(points),
		FetchedAt: end,
	}, nil
}
