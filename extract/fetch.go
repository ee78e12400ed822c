package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/hashicorp/go-retryablehttp"
)

const yahooNotFound = "Not Found"

// YahooClient fetches daily bars from the Yahoo Finance chart API.
type YahooClient struct {
	HTTPClient *retryablehttp.Client
	Logger     *slog.Logger
	BaseURL    string
	UserAgent  string
}

func NewYahooClient(config *config.Config, logger *slog.Logger) *YahooClient {
	client := &YahooClient{
		HTTPClient: retryablehttp.NewClient(),
		Logger:     logger,
		BaseURL:    strings.TrimRight(config.Extract.BaseURL, "/"),
		UserAgent:  config.Extract.UserAgent,
	}

	client.HTTPClient.RetryWaitMin = config.Extract.Backoff.RetryWaitMin
	client.HTTPClient.RetryWaitMax = config.Extract.Backoff.RetryWaitMax
	client.HTTPClient.RetryMax = config.Extract.Backoff.RetryMax
	client.HTTPClient.HTTPClient.Timeout = config.Extract.Timeout
	client.HTTPClient.Logger = logger

	return client
}

func (c *YahooClient) Name() string { return "yahoo" }

// yahooChart mirrors the parts of the v8 chart response that are used.
// Numeric series are pointers because Yahoo reports missing bars as null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				GMTOffset            int    `json:"gmtoffset"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
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
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyHistory fetches the daily bars for ticker in [start, end].
func (c *YahooClient) DailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	chartURL, err := c.chartURL(ticker, start, end)
	if err != nil {
		return nil, err
	}

	body, resp, err := c.get(ctx, chartURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart for ticker %s: %w", ticker, err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	if resp.StatusCode == http.StatusNotFound {
		// Unknown or delisted symbols come back as 404 with a chart error.
		if decodeErr == nil && chart.Chart.Error != nil && chart.Chart.Error.Code != yahooNotFound {
			return nil, fmt.Errorf("yahoo api error for ticker %s: %s", ticker, chart.Chart.Error.Description)
		}
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch chart for ticker %s, status: %s, body: %s", ticker, resp.Status, string(body))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode chart for ticker %s: %w", ticker, decodeErr)
	}

	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == yahooNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo api error for ticker %s: %s", ticker, chart.Chart.Error.Description)
	}

	return parseChart(&chart)
}

func parseChart(chart *yahooChart) ([]Bar, error) {
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}
	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, nil
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("malformed chart: %d timestamps but %d closes", n, len(quote.Close))
	}

	loc := time.UTC
	if result.Meta.GMTOffset != 0 || result.Meta.ExchangeTimezoneName != "" {
		loc = time.FixedZone(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)
	}

	bars := make([]Bar, 0, n)
	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil {
			continue // null bar (holidays, halted sessions)
		}
		bars = append(bars, Bar{
			Time:   time.Unix(ts, 0).In(loc),
			Open:   value(quote.Open[i]),
			High:   value(quote.High[i]),
			Low:    value(quote.Low[i]),
			Close:  *quote.Close[i],
			Volume: int64(math.Round(value(quote.Volume[i]))),
		})
	}

	return bars, nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// chartURL builds the chart request for a daily interval between start and end
func (c *YahooClient) chartURL(ticker string, start, end time.Time) (string, error) {
	parsedURL, err := url.Parse(fmt.Sprintf("%s/v8/finance/chart/%s", c.BaseURL, url.PathEscape(ticker)))
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	query := parsedURL.Query()
	query.Set("interval", "1d")
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("includePrePost", "false")
	parsedURL.RawQuery = query.Encode()

	return parsedURL.String(), nil
}

// get fetches the URL and returns the body and response
func (c *YahooClient) get(ctx context.Context, url string) (body []byte, resp *http.Response, err error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err = c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp, nil
}
