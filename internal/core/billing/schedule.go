package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Schedule errors
var (
	ErrNoTierMatched = errors.New("no fee tier matched")
)

// FeeTier is a fixed date range with a flat monthly fee.
// Tiers are contiguous and non-overlapping; a gap is a configuration
// defect, not a runtime condition.
type FeeTier struct {
	Start time.Time
	End   time.Time
	Fee   decimal.Decimal
}

// feeSchedule is the committee's fee history. The ranges are inclusive
// on both ends and cover every date the system will ever bill for.
var feeSchedule = []FeeTier{
	{date(2001, time.May, 1), date(2007, time.April, 30), decimal.NewFromInt(30)},
	{date(2007, time.May, 1), date(2014, time.April, 30), decimal.NewFromInt(50)},
	{date(2014, time.May, 1), date(2019, time.June, 30), decimal.NewFromInt(100)},
	{date(2019, time.July, 1), date(2024, time.March, 31), decimal.NewFromInt(200)},
	{date(2024, time.April, 1), date(9999, time.December, 31), decimal.NewFromInt(250)},
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ResolveFee returns the monthly fee in effect for the month containing t.
// The input is normalized to the first day of its month before lookup.
func ResolveFee(t time.Time) (decimal.Decimal, error) {
	monthStart := MonthStart(t)
	for _, tier := range feeSchedule {
		if !monthStart.Before(tier.Start) && !monthStart.After(tier.End) {
			return tier.Fee, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %s", ErrNoTierMatched, monthStart.Format("2006-01"))
}

// MonthStart returns the first day of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of t's month in UTC.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// NextMonth returns the first day of the month after t's month.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}
