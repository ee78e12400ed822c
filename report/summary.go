// Package report computes per-ticker statistics over stored daily prices.
package report

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/transform"
	"github.com/montanaflynn/stats"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

type TickerSummary struct {
	Ticker    string
	Count     int
	FirstDate string
	LastDate  string
	LastClose float64
	MeanClose float64
	MinClose  float64
	MaxClose  float64

	// Sample standard deviation of simple daily returns. Nil with fewer
	// than two returns.
	DailyVolatility      *float64
	AnnualizedVolatility *float64

	// Mean of the last SMAWindow closes. Nil when there are fewer closes.
	SMA       *float64
	SMAWindow int
}

// Summarize groups ds by ticker, in order of first appearance, and computes a
// TickerSummary for each. Rows within a ticker are ordered by date first.
func Summarize(ds transform.Dataset, smaWindow int) ([]TickerSummary, error) {
	groups := map[string]transform.Dataset{}
	for _, o := range ds {
		groups[o.Ticker] = append(groups[o.Ticker], o)
	}

	summaries := make([]TickerSummary, 0, len(groups))
	for _, ticker := range ds.Tickers() {
		rows := slices.Clone(groups[ticker])
		slices.SortStableFunc(rows, func(a, b transform.Observation) int {
			return cmp.Compare(a.Date, b.Date)
		})

		s, err := summarizeTicker(ticker, rows, smaWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize %s: %w", ticker, err)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func summarizeTicker(ticker string, rows transform.Dataset, smaWindow int) (TickerSummary, error) {
	closes := make(stats.Float64Data, len(rows))
	for i, o := range rows {
		closes[i] = o.Close
	}

	s := TickerSummary{
		Ticker:    ticker,
		Count:     len(rows),
		FirstDate: rows[0].Date,
		LastDate:  rows[len(rows)-1].Date,
		LastClose: closes[len(closes)-1],
		SMAWindow: smaWindow,
	}

	var err error
	if s.MeanClose, err = stats.Mean(closes); err != nil {
		return s, err
	}
	if s.MinClose, err = stats.Min(closes); err != nil {
		return s, err
	}
	if s.MaxClose, err = stats.Max(closes); err != nil {
		return s, err
	}

	returns := DailyReturns(closes)
	if len(returns) >= 2 {
		daily, err := stats.StandardDeviationSample(returns)
		if err != nil {
			return s, err
		}
		annual := daily * math.Sqrt(TradingDaysPerYear)
		s.DailyVolatility = &daily
		s.AnnualizedVolatility = &annual
	}

	if smaWindow > 0 && len(closes) >= smaWindow {
		sma, err := stats.Mean(closes[len(closes)-smaWindow:])
		if err != nil {
			return s, err
		}
		s.SMA = &sma
	}

	return s, nil
}

// DailyReturns returns close[i]/close[i-1] - 1. Pairs with a zero previous
// close are skipped.
func DailyReturns(closes []float64) stats.Float64Data {
	if len(closes) < 2 {
		return nil
	}
	returns := make(stats.Float64Data, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}
