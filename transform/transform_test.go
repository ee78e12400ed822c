package transform

import (
	"bytes"
	"testing"
	"time"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBars() []extract.Bar {
	nyc := time.FixedZone("America/New_York", -5*3600)
	return []extract.Bar{
		{Time: time.Date(2024, 1, 2, 9, 30, 0, 0, nyc), Close: 185.64, Volume: 82488700},
		{Time: time.Date(2024, 1, 3, 9, 30, 0, 0, nyc), Close: 184.25, Volume: 58414500},
		// 21:00 in New York is already the next day in UTC
		{Time: time.Date(2024, 1, 4, 21, 0, 0, 0, nyc), Close: 181.91, Volume: 71983600},
	}
}

func TestNormalize(t *testing.T) {
	ds := Normalize("AAPL", testBars())

	assert.Equal(t, Dataset{
		{Date: "2024-01-02", Close: 185.64, Volume: 82488700, Ticker: "AAPL"},
		{Date: "2024-01-03", Close: 184.25, Volume: 58414500, Ticker: "AAPL"},
		{Date: "2024-01-04", Close: 181.91, Volume: 71983600, Ticker: "AAPL"},
	}, ds)
}

func TestNormalize_Empty(t *testing.T) {
	ds := Normalize("AAPL", nil)
	assert.Empty(t, ds)
}

func TestConcat(t *testing.T) {
	aapl := Normalize("AAPL", testBars())
	msft := Normalize("MSFT", testBars()[:1])

	tests := []struct {
		name    string
		parts   []Dataset
		wantLen int
		tickers []string
	}{
		{name: "no parts", parts: nil, wantLen: 0, tickers: nil},
		{name: "single part", parts: []Dataset{aapl}, wantLen: 3, tickers: []string{"AAPL"}},
		{name: "keeps input order", parts: []Dataset{msft, aapl}, wantLen: 4, tickers: []string{"MSFT", "AAPL"}},
		{name: "skips empty parts", parts: []Dataset{nil, aapl, {}}, wantLen: 3, tickers: []string{"AAPL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Concat(tt.parts...)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.tickers, got.Tickers())
		})
	}

	combined := Concat(msft, aapl)
	assert.Equal(t, msft[0], combined[0])
	assert.Equal(t, aapl, combined[1:])
}

func TestDataset_CSV(t *testing.T) {
	ds := Dataset{
		{Date: "2024-01-02", Close: 185.64, Volume: 82488700, Ticker: "AAPL"},
		{Date: "2024-01-02", Close: 370, Volume: 0, Ticker: "MSFT"},
	}

	got, err := ds.CSV()
	require.NoError(t, err)
	assert.Equal(t, "date,close,volume,ticker\n2024-01-02,185.64,82488700,AAPL\n2024-01-02,370,0,MSFT\n", string(got))
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "date,close,volume,ticker\n", buf.String())
}
