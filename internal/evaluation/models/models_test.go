package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		name        string
		month       time.Month
		granularity Granularity
		wantIndex   int
	}{
		{"march is first half", time.March, Semiannual, 1},
		{"june is first half", time.June, Semiannual, 1},
		{"july is second half", time.July, Semiannual, 2},
		{"september is second half", time.September, Semiannual, 2},
		{"december is second half", time.December, Semiannual, 2},
		{"march is first quarter", time.March, Quarterly, 1},
		{"april is second quarter", time.April, Quarterly, 2},
		{"september is third quarter", time.September, Quarterly, 3},
		{"october is fourth quarter", time.October, Quarterly, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2024, tt.month, 15, 12, 0, 0, 0, time.UTC)
			period := PeriodOf(at, tt.granularity)
			assert.Equal(t, 2024, period.Year)
			assert.Equal(t, tt.wantIndex, period.Index)
			assert.Equal(t, tt.granularity, period.Granularity)
		})
	}
}

func TestPeriodEquality(t *testing.T) {
	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, time.June, 30, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, PeriodOf(march, Semiannual), PeriodOf(june, Semiannual),
		"instants in the same window resolve to the same period")

	assert.NotEqual(t, PeriodOf(march, Semiannual), PeriodOf(march, Quarterly),
		"granularities never compare equal even for overlapping months")

	differentYear := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, PeriodOf(march, Semiannual), PeriodOf(differentYear, Semiannual))
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, ValidCategory(c))
	}
	assert.False(t, ValidCategory("pizza_quality"))
	assert.False(t, ValidCategory(""))
}
