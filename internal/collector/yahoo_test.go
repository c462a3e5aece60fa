package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"VolScope/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unix(y int, m time.Month, d, h, min int) int64 {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC).Unix()
}

func yahooServer(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestYahooFetcher_ParsesDailyCloses(t *testing.T) {
	body := fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":"AAPL","gmtoffset":-18000},
		"timestamp":[%d,%d,%d,%d,%d],
		"indicators":{"quote":[{"close":[100.5,null,101.25,102,102.5]}]}}],"error":null}}`,
		unix(2025, 3, 3, 14, 30), unix(2025, 3, 4, 14, 30), unix(2025, 3, 5, 14, 30),
		unix(2025, 3, 6, 14, 30), unix(2025, 3, 6, 20, 0))

	var gotPath, gotRange, gotInterval string
	srv := yahooServer(t, http.StatusOK, body, func(r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		gotInterval = r.URL.Query().Get("interval")
	})

	f := NewYahooFetcher(srv.URL, "")
	s, err := f.FetchDailyCloses(context.Background(), "AAPL", Lookback6Months)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "6mo", gotRange)
	assert.Equal(t, "1d", gotInterval)

	assert.Equal(t, "yahoo", s.Source)
	require.Len(t, s.Points, 3, "null close skipped and same-day bars merged")
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), s.Points[0].Date)
	assert.Equal(t, 100.5, s.Points[0].Close)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), s.Points[1].Date)
	assert.Equal(t, 102.5, s.Points[2].Close, "last bar of the day wins")
}

func TestYahooFetcher_MapsIndexAlias(t *testing.T) {
	body := fmt.Sprintf(`{"chart":{"result":[{"meta":{"gmtoffset":0},"timestamp":[%d],
		"indicators":{"quote":[{"close":[5000]}]}}]}}`, unix(2025, 3, 3, 21, 0))
	var gotPath string
	srv := yahooServer(t, http.StatusOK, body, func(r *http.Request) { gotPath = r.URL.Path })

	_, err := NewYahooFetcher(srv.URL, "").FetchDailyCloses(context.Background(), "SPX", Lookback1Month)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
}

func TestYahooFetcher_NotFound(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	srv := yahooServer(t, http.StatusNotFound, body, nil)

	_, err := NewYahooFetcher(srv.URL, "").FetchDailyCloses(context.Background(), "ZZZZQ", Lookback6Months)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoDataFound), "got %v", err)
}

func TestYahooFetcher_EmptyResult(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`
	srv := yahooServer(t, http.StatusOK, body, nil)

	_, err := NewYahooFetcher(srv.URL, "").FetchDailyCloses(context.Background(), "AAPL", Lookback6Months)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoDataFound), "got %v", err)
}

func TestYahooFetcher_ServerError(t *testing.T) {
	srv := yahooServer(t, http.StatusBadGateway, "<html>bad gateway</html>", nil)

	_, err := NewYahooFetcher(srv.URL, "").FetchDailyCloses(context.Background(), "AAPL", Lookback6Months)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataSourceFailed), "got %v", err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestYahooFetcher_APIError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input - interval=1d is not supported"}}}`
	srv := yahooServer(t, http.StatusBadRequest, body, nil)

	_, err := NewYahooFetcher(srv.URL, "").FetchDailyCloses(context.Background(), "AAPL", Lookback6Months)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataSourceFailed), "got %v", err)
}

func TestYahooFetcher_ContextCancelled(t *testing.T) {
	srv := yahooServer(t, http.StatusOK, `{}`, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewYahooFetcher(srv.URL, "").FetchDailyCloses(ctx, "AAPL", Lookback6Months)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataSourceFailed), "got %v", err)
}
