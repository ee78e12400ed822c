package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
)

var ErrUnknownProvider = errors.New("unknown market data provider")

// Bar is one daily observation as returned by a provider.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Source fetches daily bars for a single ticker between start and end.
// An empty slice with a nil error means the provider has no data for the
// ticker.
type Source interface {
	DailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
	Name() string
}

// NewSource builds the provider selected by extract.provider.
func NewSource(cfg *config.Config, logger *slog.Logger) (Source, error) {
	switch strings.ToLower(cfg.Extract.Provider) {
	case "", "yahoo":
		return NewYahooClient(cfg, logger), nil
	case "financego":
		return NewFinanceGoSource(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Extract.Provider)
	}
}
