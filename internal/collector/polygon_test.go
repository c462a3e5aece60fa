package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"VolScope/internal/errors"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteHost sends every request to target, keeping path and query.
type rewriteHost struct{ target *url.URL }

func (rt rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func polygonFetcher(t *testing.T, serverURL string) *PolygonFetcher {
	t.Helper()
	target, err := url.Parse(serverURL)
	require.NoError(t, err)
	client := polygon.NewWithClient("pk-test", &http.Client{Transport: rewriteHost{target: target}})
	return &PolygonFetcher{client: client, now: func() time.Time { return testEnd }}
}

func millis(y int, m time.Month, d, h int) int64 {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC).UnixMilli()
}

func TestPolygonFetcher_ParsesAggregates(t *testing.T) {
	body := fmt.Sprintf(`{"status":"OK","ticker":"MSFT","resultsCount":4,"adjusted":true,"results":[
		{"t":%d,"c":451.5},
		{"t":%d,"c":448},
		{"t":%d,"c":449.25},
		{"t":%d,"c":450.1}
	]}`,
		millis(2025, 6, 26, 4), millis(2025, 6, 24, 4), millis(2025, 6, 25, 4), millis(2025, 6, 25, 20))

	var gotPath, gotAuth string
	srv := yahooServer(t, http.StatusOK, body, func(r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
	})

	s, err := polygonFetcher(t, srv.URL).FetchDailyCloses(context.Background(), "MSFT", Lookback3Months)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/v2/aggs/ticker/MSFT/range/1/day/"), gotPath)
	assert.Equal(t, "Bearer pk-test", gotAuth)

	assert.Equal(t, "polygon", s.Source)
	assert.Equal(t, "MSFT", s.Symbol)
	require.Len(t, s.Points, 3, "same-day aggregates merged")
	assert.Equal(t, time.Date(2025, 6, 24, 0, 0, 0, 0, time.UTC), s.Points[0].Date)
	assert.Equal(t, 448.0, s.Points[0].Close)
	assert.Equal(t, time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC), s.Points[1].Date)
	assert.Equal(t, 450.1, s.Points[1].Close, "last aggregate of the day wins")
	assert.Equal(t, time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), s.Points[2].Date)
	for i := 1; i < len(s.Points); i++ {
		assert.True(t, s.Points[i].Date.After(s.Points[i-1].Date))
	}
}

func TestPolygonFetcher_EmptyIsNoData(t *testing.T) {
	srv := yahooServer(t, http.StatusOK, `{"status":"OK","ticker":"ZZZZ","resultsCount":0,"results":[]}`, nil)

	_, err := polygonFetcher(t, srv.URL).FetchDailyCloses(context.Background(), "ZZZZ", Lookback6Months)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoDataFound), "got %v", err)
}

func TestPolygonFetcher_ServerErrorIsSourceFailure(t *testing.T) {
	srv := yahooServer(t, http.StatusBadGateway, `{"status":"ERROR","request_id":"req-1","error":"upstream"}`, nil)

	_, err := polygonFetcher(t, srv.URL).FetchDailyCloses(context.Background(), "MSFT", Lookback6Months)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDataSourceFailed), "got %v", err)
}
