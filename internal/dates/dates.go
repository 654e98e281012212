// Package dates holds the stateless formatting helpers shared by the
// builders: YYMMDD normalization and cents-to-dollars rendering. Every
// function is pure and safe for concurrent use.
package dates

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// PivotYear splits two-digit years: YY >= PivotYear is 19YY, otherwise 20YY.
const PivotYear = 50

// NormalizeYYMMDD converts a 6-digit YYMMDD date to YYYY-MM-DD.
//
// Month and day are copied through as-is; only the century is inferred.
// Anything that is not exactly six digits is rejected.
func NormalizeYYMMDD(yymmdd string) (string, error) {
	if len(yymmdd) != 6 {
		return "", fmt.Errorf("date %q is not in YYMMDD form", yymmdd)
	}
	for _, r := range yymmdd {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("date %q is not in YYMMDD form", yymmdd)
		}
	}

	yy, _ := strconv.Atoi(yymmdd[:2])
	year := 2000 + yy
	if yy >= PivotYear {
		year = 1900 + yy
	}

	return fmt.Sprintf("%04d-%s-%s", year, yymmdd[2:4], yymmdd[4:6]), nil
}

// NormalizeOrToday behaves like NormalizeYYMMDD but falls back to the given
// day (formatted YYYY-MM-DD) when the input is unusable. The boolean reports
// whether the fallback was taken.
func NormalizeOrToday(yymmdd string, today time.Time) (string, bool) {
	if s, err := NormalizeYYMMDD(yymmdd); err == nil {
		return s, false
	}
	return today.Format("2006-01-02"), true
}

// CentsToDollars renders an integer amount of cents with exactly two
// decimal places. The conversion is exact, so no rounding mode applies.
func CentsToDollars(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
