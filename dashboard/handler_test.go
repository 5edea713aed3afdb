package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-dashboard/client"
	"stock-dashboard/logger"
	"stock-dashboard/models"
	"stock-dashboard/stockview"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFetcher struct {
	ticker func(ctx context.Context, ticker string) ([]models.StockRecord, error)
	latest func(ctx context.Context) ([]models.StockRecord, error)
}

func (f *fakeFetcher) Ticker(ctx context.Context, ticker string) ([]models.StockRecord, error) {
	return f.ticker(ctx, ticker)
}

func (f *fakeFetcher) Latest(ctx context.Context) ([]models.StockRecord, error) {
	return f.latest(ctx)
}

func history() []models.StockRecord {
	return []models.StockRecord{
		{Datetime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Open: 8, High: 10.5, Low: 7.5, Close: 10, Volume: 100, Ticker: "AAPL"},
		{Datetime: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 11, High: 12.5, Low: 10.5, Close: 12, Volume: 200, Ticker: "AAPL"},
	}
}

func newTestRouter(t *testing.T, f client.Fetcher) *gin.Engine {
	t.Helper()
	h := NewHandler(f, stockview.NewSequencer(time.Minute, 0), time.UTC, logger.NewNop())
	r, err := NewRouter(h, logger.NewNop())
	require.NoError(t, err)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func okFetcher() *fakeFetcher {
	return &fakeFetcher{
		ticker: func(ctx context.Context, ticker string) ([]models.StockRecord, error) {
			return history(), nil
		},
		latest: func(ctx context.Context) ([]models.StockRecord, error) {
			return history()[1:], nil
		},
	}
}

func failingFetcher() *fakeFetcher {
	fail := &client.FetchError{Path: "/x", Status: http.StatusInternalServerError}
	return &fakeFetcher{
		ticker: func(ctx context.Context, ticker string) ([]models.StockRecord, error) { return nil, fail },
		latest: func(ctx context.Context) ([]models.StockRecord, error) { return nil, fail },
	}
}

func TestHome(t *testing.T) {
	w := get(newTestRouter(t, okFetcher()), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/stocks"`)
}

func TestLatest(t *testing.T) {
	w := get(newTestRouter(t, okFetcher()), "/stocks")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Stocks list")
	assert.Contains(t, body, `<a href="/stocks/AAPL">AAPL</a>`)
	assert.Contains(t, body, "<td>12.00</td>")
}

func TestFetchFailureRendersMessage(t *testing.T) {
	r := newTestRouter(t, failingFetcher())

	w := get(r, "/stocks")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), msgLatestFailed)

	w = get(r, "/stocks/AAPL")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), msgTickerFailed)
}

func TestFetchFailure_ServerError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Error retrieving data"}`))
	}))
	defer api.Close()

	stocks, err := client.New(api.URL, nil)
	require.NoError(t, err)
	r := newTestRouter(t, stocks)

	w := get(r, "/stocks")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), msgLatestFailed)

	w = get(r, "/stocks/AAPL")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), msgTickerFailed)
	assert.NotContains(t, w.Body.String(), "<tbody")

	w = get(r, "/views/AAPL/chart?view=v&seq=4")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"`+msgTickerFailed+`","seq":4}`, w.Body.String())
}

func TestTickerHistory(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		wantStatus int
		contains   []string
		excludes   []string
	}{
		{
			name:       "full history",
			wantStatus: http.StatusOK,
			contains:   []string{"Stock History for: AAPL", `up">2.00</td>`, `up">1.00</td>`},
		},
		{
			name:       "single day",
			query:      "?start=2024-01-01T00:00&end=2024-01-01T23:59",
			wantStatus: http.StatusOK,
			contains:   []string{`up">2.00</td>`, `"2024-01-01 00:00"`},
			excludes:   []string{`up">1.00</td>`, `"2024-01-02 00:00"`},
		},
		{
			name:       "empty result",
			query:      "?start=2025-01-01T00:00&end=2025-01-02T00:00",
			wantStatus: http.StatusOK,
			contains:   []string{msgNoData},
		},
		{
			name:       "missing end",
			query:      "?start=2024-01-01T00:00",
			wantStatus: http.StatusBadRequest,
			contains:   []string{"Invalid date range"},
		},
		{
			name:       "inverted",
			query:      "?start=2024-01-02T00:00&end=2024-01-01T00:00",
			wantStatus: http.StatusBadRequest,
			contains:   []string{"Invalid date range"},
		},
		{
			name:       "malformed",
			query:      "?start=soon&end=later",
			wantStatus: http.StatusBadRequest,
			contains:   []string{"Invalid date range"},
		},
	}

	r := newTestRouter(t, okFetcher())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, "/stocks/aapl"+tc.query)

			assert.Equal(t, tc.wantStatus, w.Code)
			for _, s := range tc.contains {
				assert.Contains(t, w.Body.String(), s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, w.Body.String(), s)
			}
		})
	}
}

func TestChart(t *testing.T) {
	r := newTestRouter(t, okFetcher())

	q := url.Values{
		"view":  {"v1"},
		"seq":   {"3"},
		"start": {"2024-01-02T00:00"},
		"end":   {"2024-01-02T00:00"},
	}
	w := get(r, "/views/AAPL/chart?"+q.Encode())
	require.Equal(t, http.StatusOK, w.Code)

	var res chartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, uint64(3), res.Seq)
	assert.Equal(t, []string{"2024-01-02 00:00"}, res.Chart.Labels)
	assert.Equal(t, []float64{12}, res.Chart.Series)
	assert.Equal(t, []tableRow{{
		Datetime: "2024-01-02 00:00:00",
		Open:     "11.00",
		High:     "12.50",
		Low:      "10.50",
		Close:    "12.00",
		Volume:   200,
		Diff:     "1.00",
		Up:       true,
	}}, res.Rows)
}

func TestChart_RowsFollowRange(t *testing.T) {
	r := newTestRouter(t, okFetcher())

	testCases := []struct {
		name     string
		query    string
		wantRows int
	}{
		{name: "no bounds", query: "view=v", wantRows: 2},
		{name: "first day", query: "view=v&start=2024-01-01T00:00&end=2024-01-01T23:59", wantRows: 1},
		{name: "both days", query: "view=v&start=2024-01-01&end=2024-01-02", wantRows: 2},
		{name: "no data", query: "view=v&start=2030-01-01&end=2030-01-02", wantRows: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, "/views/AAPL/chart?"+tc.query)
			require.Equal(t, http.StatusOK, w.Code)

			var res chartResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.NotNil(t, res.Rows)
			assert.Len(t, res.Rows, tc.wantRows)
			assert.Len(t, res.Chart.Labels, tc.wantRows)
		})
	}
}

func TestChart_BadRangeClearsRows(t *testing.T) {
	w := get(newTestRouter(t, okFetcher()), "/views/AAPL/chart?view=v&start=2024-01-02&end=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"`+msgBadRange+`","seq":0,"rows":[]}`, w.Body.String())
}

func TestChart_RequiresView(t *testing.T) {
	w := get(newTestRouter(t, okFetcher()), "/views/AAPL/chart")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChart_EmptyResult(t *testing.T) {
	w := get(newTestRouter(t, okFetcher()), "/views/AAPL/chart?view=v&start=2030-01-01&end=2030-02-01")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"seq":0,"chart":{"labels":[],"series":[]},"rows":[],"notice":"`+msgNoData+`"}`, w.Body.String())
}

func TestChart_StaleResponseDiscarded(t *testing.T) {
	entered := make(chan struct{})
	f := &fakeFetcher{
		ticker: func(ctx context.Context, ticker string) ([]models.StockRecord, error) {
			if strings.HasPrefix(ticker, "SLOW") {
				close(entered)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return history(), nil
		},
	}
	r := newTestRouter(t, f)

	slow := make(chan *httptest.ResponseRecorder)
	go func() {
		slow <- get(r, "/views/SLOW/chart?view=page&seq=1")
	}()
	<-entered

	fresh := get(r, "/views/AAPL/chart?view=page&seq=2")
	assert.Equal(t, http.StatusOK, fresh.Code)

	stale := <-slow
	assert.Equal(t, http.StatusConflict, stale.Code)
	assert.Contains(t, stale.Body.String(), "superseded")
}
