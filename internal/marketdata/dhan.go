package marketdata

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// dhanScripMasterURL is the broker's published instrument dump, the source
// for symbol -> security id resolution.
const dhanScripMasterURL = "https://images.dhan.co/api-data/api-scrip-master.csv"

// DhanProvider implements Provider using the Dhan intraday charts API.
// Requests are authenticated per call with the injected credentials and need
// a per-symbol security id from the hints.
type DhanProvider struct {
	BaseURL        string
	ScripMasterURL string
	Creds          Credentials
	Client         *http.Client
}

// NewDhanProvider creates a Dhan client with optional proxy support.
func NewDhanProvider(baseURL string, creds Credentials, proxyURL string) *DhanProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://api.dhan.co"
	}
	return &DhanProvider{
		BaseURL:        baseURL,
		ScripMasterURL: dhanScripMasterURL,
		Creds:          creds,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (p *DhanProvider) Name() string { return "dhan" }

// RequiresSecurityID reports that this provider cannot be queried without a
// per-symbol security id hint.
func (p *DhanProvider) RequiresSecurityID() bool { return true }

// dhanIntradayRequest is the charts/intraday request body.
type dhanIntradayRequest struct {
	SecurityID      string `json:"securityId"`
	ExchangeSegment string `json:"exchangeSegment"`
	Instrument      string `json:"instrument"`
	Interval        string `json:"interval"`
	FromDate        string `json:"fromDate"`
	ToDate          string `json:"toDate"`
}

// dhanIntradayResponse is the column-oriented bar payload.
type dhanIntradayResponse struct {
	Open      []float64 `json:"open"`
	High      []float64 `json:"high"`
	Low       []float64 `json:"low"`
	Close     []float64 `json:"close"`
	Timestamp []int64   `json:"timestamp"`
}

func (p *DhanProvider) FetchSession(ctx context.Context, symbol string, hints Hints, date string) (*model.Session, error) {
	if hints.SecurityID == "" {
		return nil, fmt.Errorf("dhan %s: %w", symbol, ErrNoSecurityID)
	}
	segment := hints.ExchangeSegment
	if segment == "" {
		segment = "NSE_EQ"
	}

	reqBody := dhanIntradayRequest{
		SecurityID:      hints.SecurityID,
		ExchangeSegment: segment,
		Instrument:      "EQUITY",
		Interval:        fmt.Sprintf("%d", model.BarMinutes),
		FromDate:        date,
		ToDate:          date,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("dhan marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v2/charts/intraday", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access-token", p.Creds.AccessToken)
	req.Header.Set("client-id", p.Creds.ClientID)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dhan fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("dhan: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var chart dhanIntradayResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("dhan decode: %w", err)
	}
	if len(chart.Timestamp) == 0 {
		return nil, fmt.Errorf("dhan: empty payload for %s on %s", symbol, date)
	}

	ticks := make([]model.Tick, 0, len(chart.Timestamp))
	for i, ts := range chart.Timestamp {
		if i >= len(chart.High) || i >= len(chart.Low) || i >= len(chart.Close) {
			break
		}
		ticks = append(ticks, model.Tick{
			Time:  time.Unix(ts, 0).In(model.ISTLocation()),
			High:  chart.High[i],
			Low:   chart.Low[i],
			Close: chart.Close[i],
		})
	}
	return &model.Session{Symbol: symbol, Date: date, Ticks: ticks}, nil
}

// FindSecurityID resolves a symbol to its broker security id by scanning the
// published scrip master for the NSE equity row with that trading symbol. The
// dump is large, so rows are streamed rather than loaded whole.
func (p *DhanProvider) FindSecurityID(ctx context.Context, symbol string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ScripMasterURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("dhan scrip master: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dhan scrip master: status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return "", fmt.Errorf("dhan scrip master: read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	exchCol, ok1 := col["SEM_EXM_EXCH_ID"]
	instCol, ok2 := col["SEM_INSTRUMENT_NAME"]
	symCol, ok3 := col["SEM_TRADING_SYMBOL"]
	idCol, ok4 := col["SEM_SMST_SECURITY_ID"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return "", fmt.Errorf("dhan scrip master: unexpected header %v", header)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("dhan scrip master: read row: %w", err)
		}
		if exchCol >= len(row) || instCol >= len(row) || symCol >= len(row) || idCol >= len(row) {
			continue
		}
		if row[exchCol] != "NSE" || row[instCol] != "EQUITY" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[symCol]), symbol) {
			return strings.TrimSpace(row[idCol]), nil
		}
	}
	return "", fmt.Errorf("dhan scrip master: no NSE equity named %q: %w", symbol, ErrNoSecurityID)
}

// Ping verifies credentials against the fund-limit endpoint, the cheapest
// authenticated call the API offers.
func (p *DhanProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v2/fundlimit", nil)
	if err != nil {
		return err
	}
	req.Header.Set("access-token", p.Creds.AccessToken)
	req.Header.Set("client-id", p.Creds.ClientID)

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("dhan ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dhan ping: status %d", resp.StatusCode)
	}
	return nil
}
