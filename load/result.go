package load

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"
)

// ResultSet holds query output as text, in column order.
type ResultSet struct {
	Columns []string
	Rows    [][]string
}

func (r ResultSet) Len() int { return len(r.Rows) }

// Empty reports whether the result has no rows.
func (r ResultSet) Empty() bool { return len(r.Rows) == 0 }

// Column returns the values of the named column, or nil if absent.
func (r ResultSet) Column(name string) []string {
	idx := -1
	for i, c := range r.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	values := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		values = append(values, row[idx])
	}
	return values
}

// Head returns the first n rows. n <= 0 returns the result unchanged.
func (r ResultSet) Head(n int) ResultSet {
	if n <= 0 || n >= len(r.Rows) {
		return r
	}
	return ResultSet{Columns: r.Columns, Rows: r.Rows[:n]}
}

// formatColumnValue renders v, using the column's database type where the
// driver value alone is ambiguous.
func formatColumnValue(v any, dbType string) string {
	if b, ok := v.([]byte); ok && strings.EqualFold(dbType, "UUID") {
		if id, err := uuid.FromBytes(b); err == nil {
			return id.String()
		}
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case duckdb.Decimal:
		if x.Value == nil {
			return "NULL"
		}
		return decimal.NewFromBigInt(x.Value, -int32(x.Scale)).StringFixed(int32(x.Scale))
	case duckdb.Interval:
		return formatInterval(x)
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// formatInterval renders only the non-zero parts, e.g. "1 mon 2 days 1h0m0s".
func formatInterval(i duckdb.Interval) string {
	var parts []string
	if i.Months != 0 {
		parts = append(parts, fmt.Sprintf("%d mon", i.Months))
	}
	if i.Days != 0 {
		parts = append(parts, fmt.Sprintf("%d days", i.Days))
	}
	if i.Micros != 0 || len(parts) == 0 {
		parts = append(parts, (time.Duration(i.Micros) * time.Microsecond).String())
	}
	return strings.Join(parts, " ")
}
