package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyDue is one month's share of an accrual.
type MonthlyDue struct {
	Month time.Time       `json:"month"`
	Fee   decimal.Decimal `json:"fee"`
}

// DuesResult is the outcome of an accrual over a date range.
type DuesResult struct {
	Total     decimal.Decimal `json:"total"`
	Breakdown []MonthlyDue    `json:"breakdown"`
}

// CalculateDues computes the dues owed from start to end inclusive,
// one fee per elapsed calendar month resolved against the fee schedule.
// Both dates are normalized to the first day of their months; a start
// month after the end month yields a zero result, not an error.
//
// Pure and deterministic. Amounts accumulate with exact decimal
// arithmetic so long tenures do not drift.
func CalculateDues(start, end time.Time) (DuesResult, error) {
	result := DuesResult{Total: decimal.Zero}

	current := MonthStart(start)
	last := MonthStart(end)
	if current.After(last) {
		return result, nil
	}

	for !current.After(last) {
		fee, err := ResolveFee(current)
		if err != nil {
			return DuesResult{Total: decimal.Zero}, err
		}
		result.Breakdown = append(result.Breakdown, MonthlyDue{Month: current, Fee: fee})
		result.Total = result.Total.Add(fee)
		current = current.AddDate(0, 1, 0)
	}

	return result, nil
}
