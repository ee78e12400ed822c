package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a trailing span of calendar time ending at "now".
type Window struct {
	Years  int
	Months int
	Days   int
	raw    string
}

// ParseWindow parses Yahoo-style ranges: 30d, 2wk, 6mo, 2y.
func ParseWindow(s string) (Window, error) {
	raw := strings.ToLower(strings.TrimSpace(s))

	units := []string{"wk", "mo", "d", "y"}
	for _, unit := range units {
		if !strings.HasSuffix(raw, unit) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(raw, unit))
		if err != nil {
			return Window{}, fmt.Errorf("invalid window %q: %w", s, err)
		}
		if n <= 0 {
			return Window{}, fmt.Errorf("invalid window %q: length must be positive", s)
		}

		w := Window{raw: raw}
		switch unit {
		case "d":
			w.Days = n
		case "wk":
			w.Days = 7 * n
		case "mo":
			w.Months = n
		case "y":
			w.Years = n
		}
		return w, nil
	}

	return Window{}, fmt.Errorf("invalid window %q: expected a suffix of d, wk, mo or y", s)
}

// Start returns the first instant of the window ending at now.
func (w Window) Start(now time.Time) time.Time {
	return now.AddDate(-w.Years, -w.Months, -w.Days)
}

func (w Window) String() string {
	return w.raw
}
