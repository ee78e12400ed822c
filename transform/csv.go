package transform

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the dataset with a header row in persisted column order.
func WriteCSV(w io.Writer, ds Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(Columns))
	for _, o := range ds {
		record[0] = o.Date
		record[1] = strconv.FormatFloat(o.Close, 'f', -1, 64)
		record[2] = strconv.FormatInt(o.Volume, 10)
		record[3] = o.Ticker

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV data: %w", err)
		}
	}

	// Flush the writer to ensure all data is written
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// CSV renders the dataset as CSV bytes.
func (ds Dataset) CSV() ([]byte, error) {
	var buffer bytes.Buffer
	if err := WriteCSV(&buffer, ds); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
