package utils

import "strings"

// NormalizeTickers trims and upper-cases ticker symbols, drops blanks and
// keeps only the first occurrence of a repeated symbol.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SplitTickers splits a comma separated list such as "AAPL,MSFT" and
// normalizes the result.
func SplitTickers(list string) []string {
	return NormalizeTickers(strings.Split(list, ","))
}
