package transform

import (
	"github.com/Ham-Mazz/stock-portfolio-analyzer/extract"
)

const DateFormat = "2006-01-02"

// Columns is the persisted column order.
var Columns = []string{"date", "close", "volume", "ticker"}

// Observation is one normalized daily row.
type Observation struct {
	Date   string
	Close  float64
	Volume int64
	Ticker string
}

// Dataset is an ordered set of observations, grouped by ticker.
type Dataset []Observation

// Normalize reduces provider bars to {date, close, volume} and attaches
// the ticker. The date is the bar's calendar day in the bar's own location.
func Normalize(ticker string, bars []extract.Bar) Dataset {
	ds := make(Dataset, 0, len(bars))
	for _, b := range bars {
		ds = append(ds, Observation{
			Date:   b.Time.Format(DateFormat),
			Close:  b.Close,
			Volume: b.Volume,
			Ticker: ticker,
		})
	}
	return ds
}

// Concat joins per-ticker datasets, preserving their order.
func Concat(parts ...Dataset) Dataset {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Dataset, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Tickers returns the distinct tickers in order of first appearance.
func (ds Dataset) Tickers() []string {
	seen := make(map[string]bool)
	var tickers []string
	for _, o := range ds {
		if !seen[o.Ticker] {
			seen[o.Ticker] = true
			tickers = append(tickers, o.Ticker)
		}
	}
	return tickers
}
