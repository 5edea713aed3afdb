package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"stock-dashboard/models"
)

// Source fetches the history of one ticker.
type Source interface {
	History(ctx context.Context, ticker string) ([]models.StockRecord, error)
}

// YahooSource reads the Yahoo Finance chart API.
type YahooSource struct {
	BaseURL  string
	Period   string
	Interval string
	Client   *http.Client
}

func NewYahooSource(baseURL, period, interval string) *YahooSource {
	return &YahooSource{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Period:   period,
		Interval: interval,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
				Splits map[string]struct {
					Date        int64   `json:"date"`
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
				} `json:"splits"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at[T any](xs []*T, i int) (T, bool) {
	var zero T
	if i >= len(xs) || xs[i] == nil {
		return zero, false
	}
	return *xs[i], true
}

// History returns the bars for ticker over the configured period, oldest
// first. Bars with no prices (halts, holidays) are skipped.
func (s *YahooSource) History(ctx context.Context, ticker string) ([]models.StockRecord, error) {
	q := url.Values{}
	q.Set("range", s.Period)
	q.Set("interval", s.Interval)
	q.Set("events", "div,split")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.BaseURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo %s: status %d", ticker, resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return []models.StockRecord{}, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	dividends := make(map[int64]float64, len(result.Events.Dividends))
	for _, d := range result.Events.Dividends {
		dividends[d.Date] = d.Amount
	}
	splits := make(map[int64]float64, len(result.Events.Splits))
	for _, sp := range result.Events.Splits {
		if sp.Denominator != 0 {
			splits[sp.Date] = sp.Numerator / sp.Denominator
		}
	}

	records := make([]models.StockRecord, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		if !okO && !okH && !okL && !okC {
			continue
		}
		v, _ := at(quote.Volume, i)

		records = append(records, models.StockRecord{
			Datetime:    time.Unix(ts, 0).UTC(),
			Open:        o,
			High:        h,
			Low:         l,
			Close:       c,
			Volume:      v,
			Dividends:   dividends[ts],
			StockSplits: splits[ts],
			Ticker:      ticker,
		})
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Datetime.Before(records[j].Datetime) })
	return records, nil
}

// String names the source in logs.
func (s *YahooSource) String() string {
	return fmt.Sprintf("yahoo range=%s interval=%s", s.Period, s.Interval)
}
