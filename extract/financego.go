package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// chartIter is the subset of *chart.Iter used here.
type chartIter interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// FinanceGoSource fetches daily bars through the piquette/finance-go chart
// client. Bars are reported in UTC.
type FinanceGoSource struct {
	Logger *slog.Logger
	get    func(params *chart.Params) chartIter
}

func NewFinanceGoSource(logger *slog.Logger) *FinanceGoSource {
	return &FinanceGoSource{
		Logger: logger,
		get: func(params *chart.Params) chartIter {
			return chart.Get(params)
		},
	}
}

func (s *FinanceGoSource) Name() string { return "financego" }

func (s *FinanceGoSource) DailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := s.get(params)
	var raw []*finance.ChartBar
	for iter.Next() {
		raw = append(raw, iter.Bar())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("finance-go chart for ticker %s: %w", ticker, err)
	}

	return barsFromChart(raw), nil
}

func barsFromChart(raw []*finance.ChartBar) []Bar {
	bars := make([]Bar, 0, len(raw))
	for _, b := range raw {
		if b == nil || b.Close.IsZero() {
			continue
		}
		closePrice, _ := b.Close.Float64()
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		bars = append(bars, Bar{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: int64(b.Volume),
		})
	}
	return bars
}
