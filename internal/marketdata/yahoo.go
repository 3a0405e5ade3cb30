package marketdata

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

	"SignalSentinel/internal/model"
)

// YahooProvider implements Provider using the Yahoo Finance public chart API.
// Keyed by symbol alone; NSE symbols get the .NS suffix.
type YahooProvider struct {
	Client    *http.Client
	SymbolMap map[string]string // overrides for symbols that don't follow the .NS rule
}

// NewYahooProvider creates a Yahoo Finance provider with optional proxy support.
func NewYahooProvider(proxyURL string) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooProvider{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"NIFTY":     "^NSEI",
			"BANKNIFTY": "^NSEBANK",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// RequiresSecurityID reports that this provider is keyed by symbol alone.
func (p *YahooProvider) RequiresSecurityID() bool { return false }

func (p *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	if strings.Contains(symbol, ".") || strings.HasPrefix(symbol, "^") {
		return symbol
	}
	return symbol + ".NS"
}

// yahooChart is the response structure from the Yahoo chart API. Price arrays
// arrive as interface{} because nulls show up on halted bars.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High  []interface{} `json:"high"`
					Low   []interface{} `json:"low"`
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (p *YahooProvider) FetchSession(ctx context.Context, symbol string, _ Hints, date string) (*model.Session, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	// Whole-day window; normalization clamps to the session afterwards.
	period1 := day.Unix()
	period2 := day.AddDate(0, 0, 1).Unix()

	u := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%dm&period1=%d&period2=%d",
		url.PathEscape(p.yahooSymbol(symbol)), model.BarMinutes, period1, period2)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s on %s", symbol, date)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: missing quote block for %s", symbol)
	}
	quote := result.Indicators.Quote[0]
	ticks := make([]model.Tick, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if h == 0 && l == 0 && c == 0 {
			continue // null bar
		}
		ticks = append(ticks, model.Tick{
			Time:  time.Unix(ts, 0).In(model.ISTLocation()),
			High:  h,
			Low:   l,
			Close: c,
		})
	}

	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Time.Before(ticks[j].Time) })
	return &model.Session{Symbol: symbol, Date: date, Ticks: ticks}, nil
}
