package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lumenboard/lumenboard/internal/logging"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// StockConfig selects the symbols tracked by a stocks source.
type StockConfig struct {
	Config
	Symbols []string `json:"symbols"`
}

// StockSource quotes symbols off the Yahoo Finance chart endpoint. Each
// symbol resolves to a map with price, change and change_percent so a
// layout can bind e.g. stocks.AAPL.price.
type StockSource struct {
	name    string
	cfg     StockConfig
	logger  logging.Logger
	httpc   *http.Client
	baseURL string
}

func NewStockSource(name string, cfg StockConfig, logger logging.Logger) *StockSource {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &StockSource{
		name:    name,
		cfg:     cfg,
		logger:  logger,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		baseURL: yahooChartURL,
	}
}

func (s *StockSource) Name() string { return s.name }
func (s *StockSource) Type() string { return "stocks" }

func (s *StockSource) RefreshSeconds() int { return s.cfg.refreshSeconds() }

// Fetch quotes every configured symbol. A symbol that fails still gets
// an entry carrying its error so layouts can tell "no data yet" from
// "quote failed".
func (s *StockSource) Fetch(ctx context.Context) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s.cfg.Symbols))
	for _, symbol := range s.cfg.Symbols {
		quote, err := s.quote(ctx, symbol)
		if err != nil {
			s.logger.Errorf("datasource", "stocks %s: quote %s: %v", s.name, symbol, err)
			out[symbol] = map[string]interface{}{
				"symbol": symbol,
				"error":  err.Error(),
			}
			continue
		}
		out[symbol] = quote
	}
	return out, nil
}

// chartResponse is the slice of Yahoo's chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *StockSource) quote(ctx context.Context, symbol string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=2d", s.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "lumenboard/1.0")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %s", cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s", symbol)
	}

	meta := cr.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	prev := meta.PreviousClose

	change, changePct := 0.0, 0.0
	if prev > 0 {
		change = price - prev
		changePct = change / prev * 100
	}
	return map[string]interface{}{
		"symbol":         symbol,
		"price":          round2(price),
		"previous_close": round2(prev),
		"change":         round2(change),
		"change_percent": round2(changePct),
	}, nil
}
