package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestResolveFee(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want int64
	}{
		{"first tier start", d(2001, time.May, 1), 30},
		{"first tier last month", d(2007, time.April, 30), 30},
		{"second tier start", d(2007, time.May, 1), 50},
		{"second tier mid", d(2010, time.October, 15), 50},
		{"third tier start", d(2014, time.May, 1), 100},
		{"third tier last month", d(2019, time.June, 2), 100},
		{"fourth tier start", d(2019, time.July, 1), 200},
		{"fourth tier last month", d(2024, time.March, 31), 200},
		{"current tier start", d(2024, time.April, 1), 250},
		{"far future", d(2090, time.January, 1), 250},
		{"mid-month normalizes to month start", d(2019, time.July, 20), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := ResolveFee(tt.in)
			require.NoError(t, err)
			assert.True(t, fee.Equal(decimal.NewFromInt(tt.want)),
				"want %d got %s", tt.want, fee)
		})
	}
}

func TestResolveFeeBeforeSchedule(t *testing.T) {
	_, err := ResolveFee(d(2001, time.April, 30))
	require.ErrorIs(t, err, ErrNoTierMatched)
}

func TestCalculateDuesStartAfterEnd(t *testing.T) {
	result, err := CalculateDues(d(2023, time.May, 1), d(2023, time.April, 30))
	require.NoError(t, err)
	assert.True(t, result.Total.IsZero())
	assert.Empty(t, result.Breakdown)
}

func TestCalculateDuesSingleMonth(t *testing.T) {
	result, err := CalculateDues(d(2001, time.May, 1), d(2001, time.May, 1))
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(30)))
	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, d(2001, time.May, 1), result.Breakdown[0].Month)
	assert.True(t, result.Breakdown[0].Fee.Equal(decimal.NewFromInt(30)))
}

func TestCalculateDuesAcrossTierBoundary(t *testing.T) {
	// April 2007 is the last month of the 30 tier; May and June fall
	// under the 50 tier.
	result, err := CalculateDues(d(2007, time.April, 1), d(2007, time.June, 1))
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(130)), "got %s", result.Total)

	require.Len(t, result.Breakdown, 3)
	wantMonths := []time.Time{d(2007, time.April, 1), d(2007, time.May, 1), d(2007, time.June, 1)}
	wantFees := []int64{30, 50, 50}
	for i, due := range result.Breakdown {
		assert.Equal(t, wantMonths[i], due.Month)
		assert.True(t, due.Fee.Equal(decimal.NewFromInt(wantFees[i])))
	}
}

func TestCalculateDuesNormalizesMidMonthDates(t *testing.T) {
	// 15 Jan to 20 Mar counts three whole months.
	result, err := CalculateDues(d(2025, time.January, 15), d(2025, time.March, 20))
	require.NoError(t, err)
	require.Len(t, result.Breakdown, 3)
	assert.True(t, result.Total.Equal(decimal.NewFromInt(750)))
}

func TestCalculateDuesLongTenure(t *testing.T) {
	// Member active since the very first tier month through March 2024:
	// 72 months at 30, 84 at 50, 62 at 100, 57 at 200.
	result, err := CalculateDues(d(2001, time.May, 1), d(2024, time.March, 31))
	require.NoError(t, err)
	want := decimal.NewFromInt(72*30 + 84*50 + 62*100 + 57*200)
	assert.True(t, result.Total.Equal(want), "want %s got %s", want, result.Total)
	assert.Len(t, result.Breakdown, 275)
}

func TestMonthHelpers(t *testing.T) {
	assert.Equal(t, d(2024, time.February, 1), MonthStart(d(2024, time.February, 29)))
	assert.Equal(t, d(2024, time.February, 29), MonthEnd(d(2024, time.February, 10)))
	assert.Equal(t, d(2023, time.February, 28), MonthEnd(d(2023, time.February, 1)))
	assert.Equal(t, d(2024, time.January, 1), NextMonth(d(2023, time.December, 25)))
}
