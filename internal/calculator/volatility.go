package calculator

import (
	"math"

	"VolScope/internal/errors"
	"VolScope/internal/model"

	"github.com/moznion/go-optional"
)

const (
	// TradingDaysPerYear scales a daily standard deviation to an annual one.
	TradingDaysPerYear = 252
	// DefaultWindow is the trailing window of the rolling HV series.
	DefaultWindow = 30
)

// ValidatePrices rejects series that would make the logarithm undefined or break date ordering.
func ValidatePrices(prices model.PriceSeries) error {
	for i, p := range prices.Points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return errors.Newf(errors.ErrCodeInvalidInput,
				"%s: non-positive or non-finite close %v on %s", prices.Symbol, p.Close, p.Date.Format("2006-01-02"))
		}
		if i > 0 && !p.Date.After(prices.Points[i-1].Date) {
			return errors.Newf(errors.ErrCodeInvalidInput,
				"%s: dates not strictly ascending at %s", prices.Symbol, p.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// ComputeLogReturns returns ln(p[i]/p[i-1]) for every i >= 1, dated at i.
// Fewer than two prices yield an empty series.
func ComputeLogReturns(prices model.PriceSeries) (model.ReturnSeries, error) {
	out := model.ReturnSeries{Symbol: prices.Symbol}
	if err := ValidatePrices(prices); err != nil {
		return out, err
	}
	if len(prices.Points) < 2 {
		return out, nil
	}
	out.Points = make([]model.ReturnPoint, 0, len(prices.Points)-1)
	for i := 1; i < len(prices.Points); i++ {
		out.Points = append(out.Points, model.ReturnPoint{
			Date:      prices.Points[i].Date,
			LogReturn: math.Log(prices.Points[i].Close / prices.Points[i-1].Close),
		})
	}
	return out, nil
}

// ComputeAnnualizedVolatility returns the annualized HV of all returns, in percent.
// Requires at least two returns.
func ComputeAnnualizedVolatility(returns model.ReturnSeries) (float64, error) {
	std, err := SampleStdDev(returns.Values())
	if err != nil {
		return 0, err
	}
	return Annualize(std), nil
}

// ComputeRollingVolatility returns one point per return. Point i holds the annualized HV of
// returns[i-window+1..i] once window returns are available and is None before that.
func ComputeRollingVolatility(returns model.ReturnSeries, window int) ([]model.RollingPoint, error) {
	if window < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidInput, "rolling window must be at least 2, got %d", window)
	}
	values := returns.Values()
	out := make([]model.RollingPoint, len(values))
	for i := range values {
		out[i] = model.RollingPoint{Date: returns.Points[i].Date, HV: optional.None[float64]()}
		if i < window-1 {
			continue
		}
		std, err := SampleStdDev(values[i-window+1 : i+1])
		if err != nil {
			return nil, err
		}
		out[i].HV = optional.Some(Annualize(std))
	}
	return out, nil
}

// Analyze runs the full pipeline. InvalidInput aborts; a short history only
// leaves the affected outputs absent.
func Analyze(prices model.PriceSeries, window int) (*model.Analysis, error) {
	returns, err := ComputeLogReturns(prices)
	if err != nil {
		return nil, err
	}
	rolling, err := ComputeRollingVolatility(returns, window)
	if err != nil {
		return nil, err
	}

	hv := optional.None[float64]()
	v, err := ComputeAnnualizedVolatility(returns)
	switch {
	case err == nil:
		hv = optional.Some(v)
	case !errors.IsInsufficientDataError(err):
		return nil, err
	}

	return &model.Analysis{
		Prices:  prices,
		Returns: returns,
		Profile: model.VolatilityProfile{
			AnnualizedHV: hv,
			Rolling:      rolling,
			Window:       window,
			Observations: len(returns.Points),
		},
	}, nil
}
