package collector

import (
	"context"
	"time"

	"VolScope/internal/errors"
	"VolScope/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaFetcher implements Fetcher using the Alpaca market data API (IEX feed).
type AlpacaFetcher struct {
	client *marketdata.Client
	now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher. baseURL may be empty to use Alpaca's default data endpoint.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) (*AlpacaFetcher, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "alpaca: api key and secret are required")
	}
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})
	return &AlpacaFetcher{client: client, now: time.Now}, nil
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// FetchDailyCloses requests split-adjusted daily bars over lookback.
// The Alpaca client does not take a context; ctx is only checked before the call.
func (f *AlpacaFetcher) FetchDailyCloses(ctx context.Context, symbol string, lookback Lookback) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, sourceFailed(f.Name(), err)
	}
	end := f.now()
	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      lookback.Start(end),
		End:        end,
		Feed:       marketdata.IEX,
		Adjustment: marketdata.Split,
	})
	if err != nil {
		return nil, sourceFailed(f.Name(), err)
	}
	if len(bars) == 0 {
		return nil, noData(f.Name(), symbol, lookback)
	}

	points := make([]model.PricePoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, model.PricePoint{Date: truncateDay(bar.Timestamp), Close: bar.Close})
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Source:    f.Name(),
		Points:    normalizeDaily(points),
		FetchedAt: end,
	}, nil
}
