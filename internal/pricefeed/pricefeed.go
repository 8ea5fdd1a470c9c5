// Package pricefeed fetches daily price history and quote snapshots from
// Yahoo Finance, optionally through a proxy, and estimates trade quantities
// from cash flows when the statement omits them. No API key is required.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/insightdelivered/depot-statement-analyzer/internal/models"
	"github.com/insightdelivered/depot-statement-analyzer/internal/parser"
)

// Client talks to Yahoo Finance. With ProxyBase set, requests go through a
// relay exposing /yahoo/chart and /yahoo/quote; without it, chart requests
// hit Yahoo directly and quote validation is skipped (the public quote
// endpoint rejects unauthenticated callers).
type Client struct {
	ProxyBase  string
	HTTPClient *http.Client
}

// NewClient returns a client with a sane request timeout.
func NewClient(proxyBase string) *Client {
	return &Client{
		ProxyBase:  strings.TrimRight(proxyBase, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// PricePoint is one daily OHLCV candle.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote is one entry of a quote snapshot response.
type Quote struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	Currency           string  `json:"currency"`
	ShortName          string  `json:"shortName"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) chartURL(symbol, rng, interval string) string {
	if c.ProxyBase != "" {
		params := url.Values{}
		params.Set("symbol", symbol)
		params.Set("range", rng)
		params.Set("interval", interval)
		return c.ProxyBase + "/yahoo/chart?" + params.Encode()
	}
	return fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%s&range=%s",
		url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rng))
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// FetchDaily fetches the daily candle series for a symbol over the given
// range (e.g. "1y", "5y").
func (c *Client) FetchDaily(ctx context.Context, symbol, rng string) ([]PricePoint, error) {
	if rng == "" {
		rng = "1y"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.chartURL(symbol, rng, "1d"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %q returned HTTP %d", symbol, res.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %q", symbol)
	}

	r := body.Chart.Result[0]
	var q struct {
		Open, High, Low, Close, Volume []*float64
	}
	if len(r.Indicators.Quote) > 0 {
		src := r.Indicators.Quote[0]
		q.Open, q.High, q.Low, q.Close, q.Volume = src.Open, src.High, src.Low, src.Close, src.Volume
	}

	deref := func(vals []*float64, i int) float64 {
		if i < len(vals) && vals[i] != nil {
			return *vals[i]
		}
		return 0
	}

	out := make([]PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		out = append(out, PricePoint{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   deref(q.Open, i),
			High:   deref(q.High, i),
			Low:    deref(q.Low, i),
			Close:  deref(q.Close, i),
			Volume: deref(q.Volume, i),
		})
	}
	return out, nil
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []Quote `json:"result"`
	} `json:"quoteResponse"`
}

// FetchQuotes fetches quote snapshots for the given symbols. Every requested
// symbol appears in the result map; symbols Yahoo does not know map to nil.
// Without a proxy the map is all-nil, since direct quote calls are blocked.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) (map[string]*Quote, error) {
	out := make(map[string]*Quote, len(symbols))
	for _, s := range symbols {
		out[s] = nil
	}
	if len(symbols) == 0 || c.ProxyBase == "" {
		return out, nil
	}

	u := c.ProxyBase + "/yahoo/quote?symbols=" + url.QueryEscape(strings.Join(symbols, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request returned HTTP %d", res.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}
	for i := range body.QuoteResponse.Result {
		q := body.QuoteResponse.Result[i]
		if q.Symbol != "" {
			out[q.Symbol] = &body.QuoteResponse.Result[i]
		}
	}
	return out, nil
}

// commonSuffixes are exchange suffixes tried when resolving a bare symbol.
// The empty suffix keeps the stripped base itself as a candidate.
var commonSuffixes = []string{".DE", ".AS", ".PA", ".MI", ".L", ".SW", ".HK", ""}

// DeriveAltSymbols expands a symbol into lookup candidates: the symbol
// itself, a version with a trailing currency code stripped, and both with
// common exchange suffixes. Symbols already carrying a dot suffix are
// returned as-is. Order is deterministic with the original symbol first.
func DeriveAltSymbols(symbol string) []string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	seen := map[string]bool{s: true}
	out := []string{s}
	add := func(cand string) {
		if cand != "" && !seen[cand] {
			seen[cand] = true
			out = append(out, cand)
		}
	}

	if !strings.Contains(s, ".") {
		base := s
		for _, suf := range []string{"EUR", "USD", "GBP"} {
			base = strings.TrimSuffix(base, suf)
		}
		base = strings.Map(func(r rune) rune {
			if r == '-' || r == '_' || r == ' ' {
				return -1
			}
			return r
		}, base)
		if base != s {
			add(base)
		}
		for _, suf := range commonSuffixes {
			if base != "" {
				add(base + suf)
			}
			add(s + suf)
		}
	}
	return out
}

// maxResolveCandidates caps the quote batch when resolving a symbol.
const maxResolveCandidates = 12

// ResolveSymbol finds the first candidate derived from symbol that Yahoo
// recognizes. Returns "" when none validates or validation is unavailable.
func (c *Client) ResolveSymbol(ctx context.Context, symbol string) (string, error) {
	candidates := DeriveAltSymbols(symbol)
	if len(candidates) > maxResolveCandidates {
		candidates = candidates[:maxResolveCandidates]
	}
	quotes, err := c.FetchQuotes(ctx, candidates)
	if err != nil {
		return "", err
	}
	for _, cand := range candidates {
		if quotes[cand] != nil {
			return cand, nil
		}
	}
	return "", nil
}

// isinToYahoo seeds the ISIN-to-symbol mapping for common instruments;
// callers extend it via the mapping argument of EstimateQuantities.
var isinToYahoo = map[string]string{
	"US0378331005": "AAPL",
	"US5949181045": "MSFT",
	"US88160R1014": "TSLA",
	"US02079K3059": "GOOGL",
}

// EstimatedTrade is a trade with a quantity derived from its cash flow.
type EstimatedTrade struct {
	models.TradingTransaction
	Symbol string `json:"symbol,omitempty"`
	// Quantity is |amount| / close price on the trade date, 0 when no
	// price was available.
	Quantity  float64 `json:"quantity"`
	PriceUsed float64 `json:"priceUsed,omitempty"`
}

// EstimateQuantities derives share counts for trades whose statement rows
// carry only euro amounts. mapping overrides the built-in ISIN seed map;
// series holds daily candles per resolved symbol. Trades without a symbol,
// date match or positive close price keep a zero quantity.
func EstimateQuantities(trades []models.TradingTransaction, series map[string][]PricePoint, mapping map[string]string) []EstimatedTrade {
	out := make([]EstimatedTrade, 0, len(trades))
	for _, t := range trades {
		est := EstimatedTrade{TradingTransaction: t}

		symbol := mapping[t.ISIN]
		if symbol == "" {
			symbol = isinToYahoo[t.ISIN]
		}
		est.Symbol = symbol

		if symbol != "" {
			if date, ok := parser.ParseLocalizedDate(t.Date); ok {
				if close := closeOn(series[symbol], date); close > 0 && t.Amount > 0 {
					est.PriceUsed = close
					est.Quantity = math.Abs(t.Amount / close)
				}
			}
		}
		out = append(out, est)
	}
	return out
}

// EstimateFromTrades is the one-call variant used by the CLI: it derives
// symbols for the trades, fetches a year of daily candles per symbol and
// estimates the quantities. Trades whose symbol is unknown or whose price
// history cannot be fetched keep a zero quantity.
func (c *Client) EstimateFromTrades(ctx context.Context, trades []models.TradingTransaction, mapping map[string]string) []EstimatedTrade {
	symbols := make(map[string]bool)
	for _, e := range EstimateQuantities(trades, nil, mapping) {
		if e.Symbol != "" {
			symbols[e.Symbol] = true
		}
	}

	series := make(map[string][]PricePoint, len(symbols))
	for sym := range symbols {
		points, err := c.FetchDaily(ctx, sym, "1y")
		if err != nil {
			continue
		}
		series[sym] = points
	}
	return EstimateQuantities(trades, series, mapping)
}

// closeOn returns the closing price on the given calendar day, or 0 when
// the series has no candle for it.
func closeOn(series []PricePoint, day time.Time) float64 {
	key := day.Format(time.DateOnly)
	idx := sort.Search(len(series), func(i int) bool {
		return series[i].Date.Format(time.DateOnly) >= key
	})
	if idx < len(series) && series[idx].Date.Format(time.DateOnly) == key {
		return series[idx].Close
	}
	return 0
}
